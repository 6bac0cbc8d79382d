package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/jestelle/slash-podcast/internal/config"
)

// Manager owns the episode store connection.
type Manager struct {
	DB *sqlx.DB
}

// Connect establishes the sqlx connection based on configuration. sqlite
// is the embedded default; postgres is available for shared deployments.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	// sqlx driver name mapping: allow "postgres" in config but use the
	// compiled pgx stdlib driver which registers under "pgx".
	driverName := cfg.Driver
	if driverName == "postgres" {
		driverName = "pgx"
	}

	conn, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	mgr := &Manager{DB: conn}
	if cfg.AutoMigrate {
		if err := mgr.migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if logger != nil {
			logger.Info("episode schema ready", zap.String("driver", cfg.Driver))
		}
	}
	return mgr, nil
}

func (m *Manager) migrate(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS episodes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		source_kind TEXT NOT NULL,
		source_ref TEXT NOT NULL,
		status TEXT NOT NULL,
		transcript TEXT NOT NULL DEFAULT '',
		audio_path TEXT NOT NULL DEFAULT '',
		characters INTEGER NOT NULL DEFAULT 0,
		error_detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := m.DB.ExecContext(ctx, schema); err != nil {
		return err
	}
	index := `CREATE INDEX IF NOT EXISTS idx_episodes_created_at ON episodes (created_at)`
	_, err := m.DB.ExecContext(ctx, index)
	return err
}

// Ping reports store health.
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil || m.DB == nil {
		return fmt.Errorf("db not connected")
	}
	return m.DB.PingContext(ctx)
}

// Close closes the DB handle.
func (m *Manager) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}
