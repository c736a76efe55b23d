package orders

import (
	"context"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// orderCollection is the part of *mongo.Collection the repository uses.
type orderCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// MongoRepository stores orders as documents, one per order.
type MongoRepository struct {
	coll orderCollection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return newMongoRepository(coll, func() time.Time { return time.Now().UTC() })
}

func newMongoRepository(coll orderCollection, now func() time.Time) *MongoRepository {
	return &MongoRepository{coll: coll, now: now}
}

func (r *MongoRepository) Create(ctx context.Context, order *models.Order) error {
	prepareInsert(order, r.now())
	_, err := r.coll.InsertOne(ctx, order)
	return err
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(newestFirst())
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	rows := []models.Order{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, db.NormalizeNotFound(err)
	}
	return &order, nil
}

// Update replaces the document only while its version still matches.
func (r *MongoRepository) Update(ctx context.Context, id string, expectedVersion int, patch Patch) (*models.Order, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Version != expectedVersion {
		return nil, db.ErrStaleVersion
	}
	applyPatch(order, patch, r.now())

	res, err := r.coll.ReplaceOne(ctx, versionFilter(id, expectedVersion), order)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, db.ErrStaleVersion
	}
	return order, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

func prepareInsert(order *models.Order, now time.Time) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Version == 0 {
		order.Version = 1
	}
	order.CreatedAt = now
	order.UpdatedAt = now
}

func newestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

func versionFilter(id string, version int) bson.M {
	return bson.M{"_id": id, "version": version}
}
