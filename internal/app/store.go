package app

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/repository/relational"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Store bundles the repositories of the configured backend.
type Store struct {
	Users    repository.UserRepository
	Workouts repository.WorkoutRepository

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// OpenStore connects to the backend named by cfg.Driver.
func OpenStore(cfg config.DatabaseConfig, log logrus.FieldLogger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := relational.Open(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
		}
		return &Store{
			Users:    relational.NewUserRepository(db),
			Workouts: relational.NewWorkoutRepository(db),
			migrate: func(ctx context.Context) error {
				return relational.Migrate(ctx, db)
			},
			close: func(context.Context) error {
				return relational.Close(db)
			},
		}, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		db := client.Database(cfg.Name)
		return &Store{
			Users:    mongo.NewMongoUserRepository(db),
			Workouts: mongo.NewMongoWorkoutRepository(db),
			migrate: func(ctx context.Context) error {
				return mongo.EnsureIndexes(ctx, db)
			},
			close: func(ctx context.Context) error {
				return mongo.DisconnectDB(ctx, client)
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or upgrades the schema (tables or indexes).
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
