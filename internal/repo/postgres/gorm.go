package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open wraps an existing pgx pool in a gorm handle, so the API and the ORM
// share one set of connections.
func Open(pool *pgxpool.Pool, verbose bool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)

	level := logger.Silent
	if verbose {
		level = logger.Warn
	}

	db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return db, nil
}

// Migrate syncs the schema with the row models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRow{}, &workoutRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
