package main

import (
	"context"
	"fmt"

	"github.com/geocoder89/fitlog/internal/config"
	"github.com/geocoder89/fitlog/internal/db"
	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/geocoder89/fitlog/internal/observability"
	"github.com/geocoder89/fitlog/internal/repo/memory"
	"github.com/geocoder89/fitlog/internal/repo/mongodb"
	"github.com/geocoder89/fitlog/internal/repo/postgres"
	"github.com/geocoder89/fitlog/internal/security"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
)

type stores struct {
	users    user.Store
	workouts workout.Store
	ping     func(ctx context.Context) error
	close    func(ctx context.Context)
}

// openStores connects the backend picked by DB_DRIVER and prepares its schema.
func openStores(ctx context.Context, cfg config.Config, hasher *security.Hasher, prom *observability.Prom) (stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		var pool *pgxpool.Pool
		err := db.Retry(ctx, "postgres", cfg.DBConnectAttempts, func(ctx context.Context) error {
			var err error
			pool, err = db.NewPool(ctx, cfg.DBURL, 10)
			return err
		})
		if err != nil {
			return stores{}, err
		}

		gdb, err := postgres.Open(pool, cfg.Env == "dev")
		if err != nil {
			pool.Close()
			return stores{}, err
		}

		if err := postgres.Migrate(gdb); err != nil {
			pool.Close()
			return stores{}, err
		}

		return stores{
			users:    postgres.NewUsersRepo(gdb, hasher, prom),
			workouts: postgres.NewWorkoutsRepo(gdb, prom),
			ping:     pool.Ping,
			close:    func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMongo:
		var client *mongo.Client
		err := db.Retry(ctx, "mongo", cfg.DBConnectAttempts, func(ctx context.Context) error {
			var err error
			client, err = mongodb.Connect(ctx, cfg.MongoURI)
			return err
		})
		if err != nil {
			return stores{}, err
		}

		database := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return stores{}, err
		}

		return stores{
			users:    mongodb.NewUsersRepo(database, hasher, prom),
			workouts: mongodb.NewWorkoutsRepo(database, prom),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	case config.DriverMemory:
		return stores{
			users:    memory.NewUsersRepo(hasher),
			workouts: memory.NewWorkoutsRepo(),
			ping:     func(context.Context) error { return nil },
			close:    func(context.Context) {},
		}, nil
	}

	return stores{}, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
}
