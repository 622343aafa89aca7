package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playperu/cluehunt/internal/game"
	"github.com/playperu/cluehunt/internal/store"
)

func fundPlayer(t *testing.T, st *store.Store, userID string, coins int) {
	t.Helper()
	_, err := st.UpdateProfile(context.Background(), userID, func(p *game.Profile) error {
		p.Coins = coins
		return nil
	})
	if err != nil {
		t.Fatalf("fund player: %v", err)
	}
}

func TestSabotage(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := game.NewService(st, game.WithClock(func() time.Time { return base }))
	ctx := context.Background()

	actorID := newPlayer(t, st, "actor@test.local")
	targetID := newPlayer(t, st, "target@test.local")
	fundPlayer(t, st, actorID, 100)

	until, err := svc.Sabotage(ctx, actorID, targetID)
	if err != nil {
		t.Fatalf("sabotage: %v", err)
	}
	if want := base.Add(5 * time.Minute); !until.Equal(want) {
		t.Errorf("frozen until %v, want %v", until, want)
	}

	actor, err := st.Profile(ctx, actorID)
	if err != nil {
		t.Fatalf("actor profile: %v", err)
	}
	if actor.Coins != 50 {
		t.Errorf("actor coins = %d, want 50", actor.Coins)
	}

	target, err := st.Profile(ctx, targetID)
	if err != nil {
		t.Fatalf("target profile: %v", err)
	}
	if target.Status != game.StatusFrozen {
		t.Errorf("target status = %q, want frozen", target.Status)
	}
	if !target.Frozen(base) {
		t.Error("target should be frozen at sabotage time")
	}
	if target.Frozen(base.Add(6 * time.Minute)) {
		t.Error("freeze should expire after the window")
	}
}

func TestSabotageInsufficientFunds(t *testing.T) {
	st := newTestStore(t)
	svc := game.NewService(st)
	ctx := context.Background()

	actorID := newPlayer(t, st, "poor@test.local")
	targetID := newPlayer(t, st, "victim@test.local")
	fundPlayer(t, st, actorID, 40)

	_, err := svc.Sabotage(ctx, actorID, targetID)
	if !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	actor, err := st.Profile(ctx, actorID)
	if err != nil {
		t.Fatalf("actor profile: %v", err)
	}
	if actor.Coins != 40 {
		t.Errorf("failed sabotage debited coins: %d, want 40", actor.Coins)
	}

	target, err := st.Profile(ctx, targetID)
	if err != nil {
		t.Fatalf("target profile: %v", err)
	}
	if target.Status != game.StatusNormal {
		t.Errorf("failed sabotage froze the target: %q", target.Status)
	}
}

func TestSabotageSelf(t *testing.T) {
	st := newTestStore(t)
	svc := game.NewService(st)

	actorID := newPlayer(t, st, "self@test.local")
	fundPlayer(t, st, actorID, 100)

	_, err := svc.Sabotage(context.Background(), actorID, actorID)
	if !errors.Is(err, game.ErrSelfSabotage) {
		t.Fatalf("expected ErrSelfSabotage, got %v", err)
	}
}

func TestSabotageUnknownTarget(t *testing.T) {
	st := newTestStore(t)
	svc := game.NewService(st)
	ctx := context.Background()

	actorID := newPlayer(t, st, "lonely@test.local")
	fundPlayer(t, st, actorID, 100)

	_, err := svc.Sabotage(ctx, actorID, "no-such-user")
	if !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	actor, err := st.Profile(ctx, actorID)
	if err != nil {
		t.Fatalf("actor profile: %v", err)
	}
	if actor.Coins != 100 {
		t.Errorf("rolled-back sabotage debited coins: %d, want 100", actor.Coins)
	}
}

func TestSabotageOverwritesFreeze(t *testing.T) {
	st := newTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := game.NewService(st, game.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	actorID := newPlayer(t, st, "rival1@test.local")
	otherID := newPlayer(t, st, "rival2@test.local")
	targetID := newPlayer(t, st, "frozen@test.local")
	fundPlayer(t, st, actorID, 100)
	fundPlayer(t, st, otherID, 100)

	first, err := svc.Sabotage(ctx, actorID, targetID)
	if err != nil {
		t.Fatalf("first sabotage: %v", err)
	}

	// A second sabotage two minutes later replaces the window instead of
	// stacking on top of it.
	now = now.Add(2 * time.Minute)
	second, err := svc.Sabotage(ctx, otherID, targetID)
	if err != nil {
		t.Fatalf("second sabotage: %v", err)
	}

	if want := first.Add(2 * time.Minute); !second.Equal(want) {
		t.Errorf("second freeze until %v, want %v", second, want)
	}

	target, err := st.Profile(ctx, targetID)
	if err != nil {
		t.Fatalf("target profile: %v", err)
	}
	if target.FrozenUntil == nil || !target.FrozenUntil.Equal(second) {
		t.Errorf("stored freeze %v, want %v", target.FrozenUntil, second)
	}
}
