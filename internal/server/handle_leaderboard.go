package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/cluehunt/internal/store"
)

func handleLeaderboard(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := st.Leaderboard(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
