package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/playperu/cluehunt/internal/game"
	"github.com/playperu/cluehunt/internal/store"
)

type CompleteClueRequest struct {
	ClueID string `json:"clueId"`
	Answer string `json:"answer,omitempty"`
}

type SkipClueRequest struct {
	ClueID string `json:"clueId"`
}

// CompleteClueResponse is returned by both complete and skip.
type CompleteClueResponse struct {
	Completed     bool        `json:"completed"`
	FirstTime     bool        `json:"firstTime"`
	NextClueID    string      `json:"nextClueId,omitempty"`
	NextClueTitle string      `json:"nextClueTitle,omitempty"`
	EventComplete bool        `json:"eventComplete"`
	Profile       ProfileInfo `json:"profile"`
}

// checkNotFrozen enforces the freeze window at the façade boundary: the
// sabotage service only sets the status, consumers decide what it blocks.
func checkNotFrozen(w http.ResponseWriter, r *http.Request, st *store.Store) bool {
	p, err := st.Profile(r.Context(), userFrom(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if p.Frozen(time.Now()) {
		writeError(w, http.StatusConflict, "profile is frozen")
		return false
	}
	return true
}

func completionResponse(res game.CompletionResult) CompleteClueResponse {
	resp := CompleteClueResponse{
		Completed:     true,
		FirstTime:     res.First,
		EventComplete: res.Next == nil,
		Profile:       profileInfo(res.Profile),
	}
	if res.Next != nil {
		resp.NextClueID = res.Next.ID
		resp.NextClueTitle = res.Next.Title
	}
	return resp
}

func handleCompleteClue(svc *game.Service, st *store.Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CompleteClueRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ClueID == "" {
			writeError(w, http.StatusBadRequest, "clueId is required")
			return
		}

		if !checkNotFrozen(w, r, st) {
			return
		}

		userID := userFrom(r).ID
		res, err := svc.CompleteClue(r.Context(), userID, req.ClueID, req.Answer)
		switch {
		case errors.Is(err, game.ErrNotFound):
			writeError(w, http.StatusNotFound, "clue not found")
			return
		case errors.Is(err, game.ErrIncorrectAnswer):
			writeError(w, http.StatusUnprocessableEntity, "incorrect answer")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if res.First {
			broker.Publish(userID, SSEEvent{
				Type:   "clue_completed",
				ClueID: req.ClueID,
				XP:     res.Profile.TotalXP,
				Coins:  res.Profile.Coins,
				Level:  res.Profile.Level,
			})
			if res.Next != nil {
				broker.Publish(userID, SSEEvent{
					Type:      "clue_unlocked",
					ClueID:    res.Next.ID,
					ClueTitle: res.Next.Title,
				})
			}
		}

		writeJSON(w, http.StatusOK, completionResponse(res))
	}
}

func handleSkipClue(svc *game.Service, st *store.Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SkipClueRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ClueID == "" {
			writeError(w, http.StatusBadRequest, "clueId is required")
			return
		}

		if !checkNotFrozen(w, r, st) {
			return
		}

		userID := userFrom(r).ID
		res, err := svc.SkipClue(r.Context(), userID, req.ClueID)
		switch {
		case errors.Is(err, game.ErrNotFound):
			writeError(w, http.StatusNotFound, "clue not found")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if res.First && res.Next != nil {
			broker.Publish(userID, SSEEvent{
				Type:      "clue_unlocked",
				ClueID:    res.Next.ID,
				ClueTitle: res.Next.Title,
			})
		}

		writeJSON(w, http.StatusOK, completionResponse(res))
	}
}
