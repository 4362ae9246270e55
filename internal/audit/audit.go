package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry describes how one request was answered. Request text and the returned
// record are deliberately absent.
type Entry struct {
	ID       uuid.UUID
	Route    string
	Strategy string
	Attempts int
	Fallback bool
	Model    string
	Latency  time.Duration
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `CREATE TABLE IF NOT EXISTS repair_outcomes (
	id UUID PRIMARY KEY,
	route TEXT NOT NULL,
	strategy TEXT NOT NULL,
	attempts INTEGER NOT NULL,
	fallback BOOLEAN NOT NULL,
	model TEXT NOT NULL,
	latency_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertEntry = `INSERT INTO repair_outcomes (id, route, strategy, attempts, fallback, model, latency_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Postgres stores entries in the repair_outcomes table.
type Postgres struct {
	pool *pgxpool.Pool
	db   execer
}

// Connect opens a pool, checks it and makes sure the table exists.
func Connect(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	store := &Postgres{pool: pool, db: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create repair_outcomes: %w", err)
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := p.db.Exec(ctx, insertEntry,
		entry.ID,
		entry.Route,
		entry.Strategy,
		entry.Attempts,
		entry.Fallback,
		entry.Model,
		entry.Latency.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert repair outcome: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if p.pool == nil {
		return fmt.Errorf("database pool is not open")
	}
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
