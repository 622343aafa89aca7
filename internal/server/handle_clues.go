package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/cluehunt/internal/game"
	"github.com/playperu/cluehunt/internal/store"
)

// ClueInfo is one clue annotated with the caller's progress. The riddle
// question ships only once the clue is unlocked; the answer never does.
type ClueInfo struct {
	ID             string `json:"id"`
	EventID        string `json:"eventId"`
	SequenceIndex  int    `json:"sequenceIndex"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Type           string `json:"type"`
	PuzzleType     string `json:"puzzleType,omitempty"`
	RiddleQuestion string `json:"riddleQuestion,omitempty"`
	XPReward       int    `json:"xpReward"`
	CoinReward     int    `json:"coinReward"`
	IsCompleted    bool   `json:"isCompleted"`
	IsLocked       bool   `json:"isLocked"`
}

func clueInfo(cs game.ClueStatus) ClueInfo {
	info := ClueInfo{
		ID:            cs.ID,
		EventID:       cs.EventID,
		SequenceIndex: cs.SequenceIndex,
		Title:         cs.Title,
		Description:   cs.Description,
		Type:          cs.Type,
		PuzzleType:    cs.PuzzleType,
		XPReward:      cs.XPReward,
		CoinReward:    cs.CoinReward,
		IsCompleted:   cs.Completed,
		IsLocked:      cs.Locked,
	}
	if !cs.Locked {
		info.RiddleQuestion = cs.RiddleQuestion
	}
	return info
}

func handleClueView(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.ClueView(r.Context(), userFrom(r).ID, chi.URLParam(r, "eventID"))
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		clues := make([]ClueInfo, 0, len(view))
		for _, cs := range view {
			clues = append(clues, clueInfo(cs))
		}
		writeJSON(w, http.StatusOK, clues)
	}
}

type StartGameRequest struct {
	EventID string `json:"eventId"`
}

func handleStartGame(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.EventID == "" {
			writeError(w, http.StatusBadRequest, "eventId is required")
			return
		}

		err := st.StartGame(r.Context(), userFrom(r).ID, req.EventID)
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found or has no clues")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "game started"})
	}
}

type JoinRequestRequest struct {
	EventID string `json:"eventId"`
}

type JoinRequestResponse struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}

func handleJoinRequest(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequestRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.EventID == "" {
			writeError(w, http.StatusBadRequest, "eventId is required")
			return
		}

		id, err := st.CreateGameRequest(r.Context(), userFrom(r).ID, req.EventID)
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, JoinRequestResponse{RequestID: id, Status: "pending"})
	}
}
