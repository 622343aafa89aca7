package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/cluehunt/internal/game"
	"github.com/playperu/cluehunt/internal/store"
)

type CreateEventRequest struct {
	Name string `json:"name"`
}

type CreateEventResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func handleCreateEvent(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEventRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		id, err := st.CreateEvent(r.Context(), req.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, CreateEventResponse{ID: id, Name: req.Name})
	}
}

// AdminClue is one clue in a batch authoring request.
type AdminClue struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	PuzzleType     string `json:"puzzleType"`
	RiddleQuestion string `json:"riddleQuestion"`
	RiddleAnswer   string `json:"riddleAnswer"`
	XPReward       int    `json:"xpReward"`
	CoinReward     int    `json:"coinReward"`
}

type CreateCluesRequest struct {
	Clues []AdminClue `json:"clues"`
}

type CreateCluesResponse struct {
	ClueIDs []string `json:"clueIds"`
}

func handleCreateClues(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateCluesRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Clues) == 0 {
			writeError(w, http.StatusBadRequest, "clues array is required")
			return
		}

		clues := make([]store.NewClue, 0, len(req.Clues))
		for _, c := range req.Clues {
			nc := store.NewClue{
				Title:          c.Title,
				Description:    c.Description,
				Type:           c.Type,
				PuzzleType:     c.PuzzleType,
				RiddleQuestion: c.RiddleQuestion,
				RiddleAnswer:   c.RiddleAnswer,
				XPReward:       c.XPReward,
				CoinReward:     c.CoinReward,
			}
			if nc.Type == "" {
				nc.Type = game.TypeMinigame
			}
			if nc.XPReward == 0 {
				nc.XPReward = 50
			}
			if nc.CoinReward == 0 {
				nc.CoinReward = 10
			}
			clues = append(clues, nc)
		}

		ids, err := st.CreateClues(r.Context(), chi.URLParam(r, "eventID"), clues)
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, CreateCluesResponse{ClueIDs: ids})
	}
}

func handleApproveRequest(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := st.ApproveRequest(r.Context(), chi.URLParam(r, "requestID"))
		switch {
		case errors.Is(err, game.ErrNotFound):
			writeError(w, http.StatusNotFound, "request not found")
			return
		case errors.Is(err, store.ErrRequestHandled):
			writeError(w, http.StatusConflict, "request already handled")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
