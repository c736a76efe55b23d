package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/ezoostore/storefront-backend/pkg/migrate"
	"github.com/ezoostore/storefront-backend/pkg/mongo"
)

const usage = "up|down|status|version|create|validate"

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: "+usage)
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// create and validate only touch the filesystem.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("missing -name")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if err := migrateRelational(ctx, cfg, dbClient, opts); err != nil {
		return err
	}
	logg.Info(ctx, "relational schema migrated")

	// Orders in mongo only need their indexes; mongo.New creates them.
	if opts.cmd == "up" && cfg.Store.UsesMongo() {
		mongoClient, err := mongo.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return err
		}
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return mongoClient.Close(closeCtx)
	}
	return nil
}

func migrateRelational(ctx context.Context, cfg *config.Config, dbClient *db.Client, opts options) error {
	if cfg.DB.IsSQLite() {
		if opts.cmd != "up" {
			return fmt.Errorf("sqlite databases only support -cmd=up")
		}
		return migrate.AutoMigrate(ctx, dbClient.DB())
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	default:
		return fmt.Errorf("unknown command (want %s)", usage)
	}
}
