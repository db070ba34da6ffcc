// Package bootstrap opens the storage backend selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/ports"
	"github.com/yamdb/reviewhub/internal/infrastructure/config"
	"github.com/yamdb/reviewhub/internal/infrastructure/db/mongo"
	"github.com/yamdb/reviewhub/internal/infrastructure/db/postgres"
	"github.com/yamdb/reviewhub/internal/infrastructure/http/handlers"
)

// Store is an opened backend together with its readiness check and the
// function that releases it.
type Store struct {
	ports.Store
	Check handlers.Check
	Close func(ctx context.Context) error
}

// OpenStore connects to the configured backend and prepares its schema:
// indexes for mongo, migrations for postgres.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &Store{
			Store: mongo.NewStore(client, db),
			Check: handlers.Check{
				Name: "mongo",
				Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			},
			Close: client.Disconnect,
		}, nil

	case config.StorePostgres:
		db, err := postgres.Connect(ctx, postgres.Config{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
		}, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		log.Info().Msg("postgres store ready")
		return &Store{
			Store: postgres.NewStore(db),
			Check: handlers.Check{Name: "postgres", Ping: sqlDB.PingContext},
			Close: func(context.Context) error { return sqlDB.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
