package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/cluehunt/internal/database"
	"github.com/playperu/cluehunt/internal/game"
	"github.com/playperu/cluehunt/internal/migrations"
	"github.com/playperu/cluehunt/internal/payments"
	"github.com/playperu/cluehunt/internal/store"
)

// newTestRouter wires the full API against a file-backed temp database.
// Redis is absent, so the leaderboard runs uncached and /healthz is off
// limits in tests.
func newTestRouter(t *testing.T, pay *payments.Client) (*chi.Mux, *store.Store) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	st := store.New(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	addRoutes(r, Deps{
		Logger: logger,
		DB:     db,
		Store:  st,
		Game:   game.NewService(st),
		Pay:    pay,
	})
	return r, st
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func registerPlayer(t *testing.T, r http.Handler, email string) AuthResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email: email, Password: "secret123", Name: "Player",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[AuthResponse](t, w)
}

func adminToken(t *testing.T, st *store.Store) string {
	t.Helper()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	u, err := st.CreateUser(ctx, "admin@test.local", "Admin", string(hash), store.RoleAdmin)
	userID := u.ID
	if errors.Is(err, store.ErrEmailTaken) {
		// The admin already exists in this test's database; reuse it.
		userID, _, err = st.Credentials(ctx, "admin@test.local")
	}
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	token, err := st.CreateSession(ctx, userID)
	if err != nil {
		t.Fatalf("create admin session: %v", err)
	}
	return token
}

// setupEvent authors an event with a riddle clue followed by a scan clue.
func setupEvent(t *testing.T, r http.Handler, st *store.Store) (eventID string, clueIDs []string) {
	t.Helper()
	admin := adminToken(t, st)

	w := doJSON(t, r, http.MethodPost, "/api/admin/events", admin, CreateEventRequest{Name: "City Hunt"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	eventID = decode[CreateEventResponse](t, w).ID

	w = doJSON(t, r, http.MethodPost, "/api/admin/events/"+eventID+"/clues", admin, CreateCluesRequest{
		Clues: []AdminClue{
			{
				Title:          "Plaza Mayor",
				Type:           game.TypeRiddle,
				RiddleQuestion: "Capital of Peru?",
				RiddleAnswer:   "lima",
				XPReward:       50,
				CoinReward:     10,
			},
			{Title: "Mercado Central", Type: game.TypeScan},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create clues: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return eventID, decode[CreateCluesResponse](t, w).ClueIDs
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	auth := registerPlayer(t, r, "maria@test.local")
	if auth.Token == "" || auth.UserID == "" {
		t.Fatalf("register returned empty token or user id: %+v", auth)
	}

	// Duplicate email.
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email: "maria@test.local", Password: "other", Name: "Other",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "maria@test.local", Password: "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[AuthResponse](t, w); got.UserID != auth.UserID {
		t.Errorf("login user id %q, want %q", got.UserID, auth.UserID)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "maria@test.local", Password: "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: expected 401, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/me", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bogus token, got %d", w.Code)
	}
}

func TestAdminRequiresRole(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	auth := registerPlayer(t, r, "player@test.local")

	w := doJSON(t, r, http.MethodPost, "/api/admin/events", auth.Token, CreateEventRequest{Name: "Nope"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for player on admin route, got %d", w.Code)
	}
}

func TestGameFlow(t *testing.T) {
	r, st := newTestRouter(t, nil)
	eventID, clueIDs := setupEvent(t, r, st)
	auth := registerPlayer(t, r, "jugador@test.local")

	// Start the game.
	w := doJSON(t, r, http.MethodPost, "/api/game/start", auth.Token, StartGameRequest{EventID: eventID})
	if w.Code != http.StatusOK {
		t.Fatalf("start game: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Clue view: riddle visible on the open clue, hidden on the locked one.
	w = doJSON(t, r, http.MethodGet, "/api/game/events/"+eventID+"/clues", auth.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clue view: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	clues := decode[[]ClueInfo](t, w)
	if len(clues) != 2 {
		t.Fatalf("expected 2 clues, got %d", len(clues))
	}
	if clues[0].IsLocked || clues[0].RiddleQuestion == "" {
		t.Errorf("open clue should be unlocked with its question: %+v", clues[0])
	}
	if !clues[1].IsLocked || clues[1].RiddleQuestion != "" {
		t.Errorf("second clue should be locked with no question: %+v", clues[1])
	}

	// Wrong answer.
	w = doJSON(t, r, http.MethodPost, "/api/game/complete", auth.Token, CompleteClueRequest{
		ClueID: clueIDs[0], Answer: "cusco",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("wrong answer: expected 422, got %d", w.Code)
	}

	// Right answer.
	w = doJSON(t, r, http.MethodPost, "/api/game/complete", auth.Token, CompleteClueRequest{
		ClueID: clueIDs[0], Answer: " LIMA ",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[CompleteClueResponse](t, w)
	if !resp.FirstTime || resp.NextClueID != clueIDs[1] {
		t.Errorf("completion response: %+v", resp)
	}
	if resp.Profile.TotalXP != 50 || resp.Profile.Coins != 10 {
		t.Errorf("profile after reward: xp %d coins %d", resp.Profile.TotalXP, resp.Profile.Coins)
	}

	// Repeating the completion grants nothing more.
	w = doJSON(t, r, http.MethodPost, "/api/game/complete", auth.Token, CompleteClueRequest{
		ClueID: clueIDs[0], Answer: "lima",
	})
	resp = decode[CompleteClueResponse](t, w)
	if resp.FirstTime || resp.Profile.TotalXP != 50 {
		t.Errorf("repeat completion: %+v", resp)
	}

	// Skip the last clue: chain exhausted, still no reward.
	w = doJSON(t, r, http.MethodPost, "/api/game/skip", auth.Token, SkipClueRequest{ClueID: clueIDs[1]})
	if w.Code != http.StatusOK {
		t.Fatalf("skip: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = decode[CompleteClueResponse](t, w)
	if !resp.EventComplete {
		t.Error("skipping the final clue should complete the event")
	}
	if resp.Profile.TotalXP != 50 {
		t.Errorf("skip granted xp: %d", resp.Profile.TotalXP)
	}

	// Profile endpoint agrees.
	w = doJSON(t, r, http.MethodGet, "/api/me", auth.Token, nil)
	me := decode[ProfileInfo](t, w)
	if me.TotalXP != 50 || me.Coins != 10 {
		t.Errorf("/api/me: xp %d coins %d", me.TotalXP, me.Coins)
	}
}

func TestSabotageAndFreezeGuard(t *testing.T) {
	r, st := newTestRouter(t, nil)
	_, clueIDs := setupEvent(t, r, st)

	actor := registerPlayer(t, r, "saboteur@test.local")
	rival := registerPlayer(t, r, "rival@test.local")

	if _, err := st.UpdateProfile(context.Background(), actor.UserID, func(p *game.Profile) error {
		p.Coins = 60
		return nil
	}); err != nil {
		t.Fatalf("fund actor: %v", err)
	}

	// Too small a wallet for a second strike later.
	w := doJSON(t, r, http.MethodPost, "/api/game/sabotage", actor.Token, SabotageRequest{RivalID: rival.UserID})
	if w.Code != http.StatusOK {
		t.Fatalf("sabotage: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	sab := decode[SabotageResponse](t, w)
	if sab.RivalID != rival.UserID || sab.FrozenUntil == "" {
		t.Errorf("sabotage response: %+v", sab)
	}

	// The frozen rival cannot complete or skip.
	w = doJSON(t, r, http.MethodPost, "/api/game/complete", rival.Token, CompleteClueRequest{
		ClueID: clueIDs[0], Answer: "lima",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("frozen complete: expected 409, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/game/skip", rival.Token, SkipClueRequest{ClueID: clueIDs[0]})
	if w.Code != http.StatusConflict {
		t.Errorf("frozen skip: expected 409, got %d", w.Code)
	}

	// The actor can still play; freezing is one-directional.
	w = doJSON(t, r, http.MethodPost, "/api/game/complete", actor.Token, CompleteClueRequest{
		ClueID: clueIDs[0], Answer: "lima",
	})
	if w.Code != http.StatusOK {
		t.Errorf("actor complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 10 coins left after the sabotage plus the clue reward.
	w = doJSON(t, r, http.MethodPost, "/api/game/sabotage", actor.Token, SabotageRequest{RivalID: rival.UserID})
	if w.Code != http.StatusConflict {
		t.Errorf("broke sabotage: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/game/sabotage", actor.Token, SabotageRequest{RivalID: actor.UserID})
	if w.Code != http.StatusBadRequest {
		t.Errorf("self sabotage: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/game/sabotage", actor.Token, SabotageRequest{RivalID: "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown rival: expected 404, got %d", w.Code)
	}
}

func TestJoinRequestApproval(t *testing.T) {
	r, st := newTestRouter(t, nil)
	eventID, _ := setupEvent(t, r, st)
	admin := adminToken(t, st)
	auth := registerPlayer(t, r, "aspirant@test.local")

	w := doJSON(t, r, http.MethodPost, "/api/game/requests", auth.Token, JoinRequestRequest{EventID: eventID})
	if w.Code != http.StatusCreated {
		t.Fatalf("join request: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	jr := decode[JoinRequestResponse](t, w)
	if jr.Status != "pending" {
		t.Errorf("request status %q, want pending", jr.Status)
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/requests/"+jr.RequestID+"/approve", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Second approval of the same request is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/admin/requests/"+jr.RequestID+"/approve", admin, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("repeat approve: expected 409, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/requests/nope/approve", admin, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown request: expected 404, got %d", w.Code)
	}
}

func TestLeaderboard(t *testing.T) {
	r, st := newTestRouter(t, nil)
	eventID, clueIDs := setupEvent(t, r, st)

	first := registerPlayer(t, r, "first@test.local")
	second := registerPlayer(t, r, "second@test.local")

	for _, a := range []AuthResponse{first, second} {
		w := doJSON(t, r, http.MethodPost, "/api/game/start", a.Token, StartGameRequest{EventID: eventID})
		if w.Code != http.StatusOK {
			t.Fatalf("start game: %d: %s", w.Code, w.Body.String())
		}
	}

	// Only the first player scores.
	w := doJSON(t, r, http.MethodPost, "/api/game/complete", first.Token, CompleteClueRequest{
		ClueID: clueIDs[0], Answer: "lima",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/game/events/"+eventID+"/leaderboard", first.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	entries := decode[[]store.LeaderboardEntry](t, w)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != first.UserID {
		t.Errorf("leader = %s, want %s", entries[0].ID, first.UserID)
	}
	if entries[0].TotalXP != 50 || entries[1].TotalXP != 0 {
		t.Errorf("xp order: %d then %d", entries[0].TotalXP, entries[1].TotalXP)
	}
}
