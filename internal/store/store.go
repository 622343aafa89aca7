// Package store implements the persistence layer on SQLite (libSQL),
// including the transactional transitions the game engine requires.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	db *sql.DB

	// rdb backs the leaderboard cache; nil disables caching.
	rdb   *redis.Client
	lbTTL time.Duration
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// WithLeaderboardCache enables redis-backed caching of leaderboard reads.
func (s *Store) WithLeaderboardCache(rdb *redis.Client, ttl time.Duration) *Store {
	s.rdb = rdb
	s.lbTTL = ttl
	return s
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// querier is the subset of *sql.DB / *sql.Conn the read helpers need.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// withImmediate runs fn inside a BEGIN IMMEDIATE transaction on a single
// connection. Immediate mode takes the write lock up front, so a
// read-compute-write sequence can never interleave with another writer:
// concurrent callers serialize on the database's own locking (bounded by
// the busy timeout) instead of racing on stale reads.
func (s *Store) withImmediate(ctx context.Context, fn func(q querier) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(conn); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
