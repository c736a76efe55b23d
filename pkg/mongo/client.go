package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client owns the Mongo connection used by the document-backed order store.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	cfg      config.MongoConfig
}

// New connects to Mongo, verifies the connection and ensures order indexes.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo database is required")
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	c := &Client{
		client:   client,
		database: client.Database(cfg.Database),
		cfg:      cfg,
	}
	if err := c.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "database", cfg.Database), "mongo connection established")
	}
	return c, nil
}

// Orders returns the orders collection.
func (c *Client) Orders() *mongo.Collection {
	return c.database.Collection(c.ordersCollection())
}

func (c *Client) ordersCollection() string {
	if c.cfg.OrdersColl == "" {
		return "orders"
	}
	return c.cfg.OrdersColl
}

func (c *Client) ensureIndexes(ctx context.Context) error {
	_, err := c.Orders().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating order indexes: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("mongo client not initialized")
	}
	return c.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
