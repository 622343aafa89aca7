package server

import (
	"net/http"
	"time"

	"github.com/playperu/cluehunt/internal/game"
	"github.com/playperu/cluehunt/internal/store"
)

// ProfileInfo is the display view of a player's game state.
type ProfileInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatarUrl"`
	Experience  int    `json:"experience"`
	TotalXP     int    `json:"totalXP"`
	Level       int    `json:"level"`
	Profession  string `json:"profession"`
	Coins       int    `json:"coins"`
	Status      string `json:"status"`
	FrozenUntil string `json:"frozenUntil,omitempty"`
}

func profileInfo(p game.Profile) ProfileInfo {
	info := ProfileInfo{
		ID:         p.ID,
		AvatarURL:  p.AvatarURL,
		Experience: p.Experience,
		TotalXP:    p.TotalXP,
		Level:      p.Level,
		Profession: p.Profession,
		Coins:      p.Coins,
		Status:     p.Status,
	}
	if p.FrozenUntil != nil {
		info.FrozenUntil = p.FrozenUntil.UTC().Format(time.RFC3339)
	}
	return info
}

func handleMe(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := st.ProfileView(r.Context(), userFrom(r).ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		info := profileInfo(v.Profile)
		info.Name = v.Name
		info.Email = v.Email
		writeJSON(w, http.StatusOK, info)
	}
}
