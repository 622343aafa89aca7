package server

import (
	"net/http"
	"testing"
)

func TestHealthWithoutRedis(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with no redis client, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[HealthResponse](t, w)
	if resp["sqlite"].Status != "ok" {
		t.Errorf("sqlite status = %q, want ok", resp["sqlite"].Status)
	}
	if resp["redis"].Status != "error" {
		t.Errorf("redis status = %q, want error", resp["redis"].Status)
	}
}
