package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// EnsureSchema aplica las migraciones pendientes. Es idempotente y seguro ante arranques
// concurrentes (golang-migrate toma un advisory lock mientras migra).
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w: %w", domain.ErrStorageUnavailable, err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("ensure schema: abrir migraciones: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("ensure schema: %w: %w", domain.ErrStorageUnavailable, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}
	// El driver retiene una conexión del pool hasta Close.
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ensure schema: %w: %w", domain.ErrStorageUnavailable, err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("ensure schema: leer versión: %w", err)
	}
	if dirty {
		return fmt.Errorf("ensure schema: versión %d marcada como dirty: %w", version, domain.ErrInvariantViolation)
	}
	log.Info().Uint("version", version).Msg("esquema listo")
	return nil
}
