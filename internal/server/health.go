package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthResponse maps dependency name to its check status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

func handleHealth(logger *slog.Logger, db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	checks := map[string]func(context.Context) error{
		"sqlite": db.PingContext,
		"redis": func(ctx context.Context) error {
			if rdb == nil {
				return errors.New("redis client not configured")
			}
			return rdb.Ping(ctx).Err()
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := HealthResponse{}
		status := http.StatusOK

		for name, check := range checks {
			state := "ok"
			if err := check(ctx); err != nil {
				logger.Error("health check failed", "name", name, "error", err)
				state = "error"
				status = http.StatusServiceUnavailable
			}
			resp[name] = struct {
				Status string `json:"status"`
			}{Status: state}
		}

		writeJSON(w, status, resp)
	}
}
