package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/playperu/cluehunt/internal/game"
)

type SabotageRequest struct {
	RivalID string `json:"rivalId"`
}

type SabotageResponse struct {
	RivalID     string `json:"rivalId"`
	FrozenUntil string `json:"frozenUntil"`
}

func handleSabotage(svc *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SabotageRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.RivalID == "" {
			writeError(w, http.StatusBadRequest, "rivalId is required")
			return
		}

		until, err := svc.Sabotage(r.Context(), userFrom(r).ID, req.RivalID)
		switch {
		case errors.Is(err, game.ErrSelfSabotage):
			writeError(w, http.StatusBadRequest, "cannot sabotage yourself")
			return
		case errors.Is(err, game.ErrInsufficientFunds):
			writeError(w, http.StatusConflict,
				fmt.Sprintf("sabotage costs %d coins", svc.SabotageCost()))
			return
		case errors.Is(err, game.ErrNotFound):
			writeError(w, http.StatusNotFound, "rival not found")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		frozenUntil := until.UTC().Format(time.RFC3339)
		broker.Publish(req.RivalID, SSEEvent{
			Type:        "sabotaged",
			FrozenUntil: frozenUntil,
		})

		writeJSON(w, http.StatusOK, SabotageResponse{
			RivalID:     req.RivalID,
			FrozenUntil: frozenUntil,
		})
	}
}
