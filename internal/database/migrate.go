package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies all pending goose migrations from dir. goose wants a
// *sql.DB, so the pool's config is rewrapped through the stdlib driver.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	db := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
