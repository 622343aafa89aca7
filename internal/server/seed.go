package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/cluehunt/internal/store"
)

// SeedDemo creates an admin account and a demo event with a short clue chain
// if no events exist yet. Idempotent: does nothing on a populated database.
func SeedDemo(ctx context.Context, logger *slog.Logger, st *store.Store) error {
	events, err := st.CountEvents(ctx)
	if err != nil {
		return err
	}
	if events > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := st.CreateUser(ctx, "admin@cluehunt.local", "Admin", string(hash), store.RoleAdmin); err != nil {
		return err
	}

	eventID, err := st.CreateEvent(ctx, "Demo Hunt")
	if err != nil {
		return err
	}

	_, err = st.CreateClues(ctx, eventID, []store.NewClue{
		{
			Title:          "The Fountain",
			Description:    "Find the oldest fountain in the plaza.",
			Type:           "riddle",
			RiddleQuestion: "I have a mouth but never speak, I run but never walk. What am I?",
			RiddleAnswer:   "a river",
			XPReward:       50,
			CoinReward:     10,
		},
		{
			Title:       "Hidden Mural",
			Description: "Scan the code next to the mural on Market Street.",
			Type:        "qrScan",
			XPReward:    75,
			CoinReward:  15,
		},
		{
			Title:       "Final Puzzle",
			Description: "Solve the sliding puzzle to finish the hunt.",
			Type:        "minigame",
			PuzzleType:  "sliding",
			XPReward:    100,
			CoinReward:  25,
		},
	})
	if err != nil {
		return err
	}

	logger.Info("demo event seeded", "eventId", eventID)
	return nil
}
