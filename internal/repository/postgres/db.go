package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"adpnorm/internal/config"
)

const connectTimeout = 10 * time.Second

// NewDB opens the job database pool and verifies it answers within
// connectTimeout.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	if cfg.MaxLifetimeMins > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.MaxLifetimeMins) * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	log.Printf("postgres.NewDB: connected to %s:%d/%s (max open %d)", cfg.Host, cfg.Port, cfg.Name, cfg.MaxOpen)
	return db, nil
}
