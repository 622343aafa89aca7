package store

import (
	"context"
	"encoding/json"
)

// LeaderboardEntry mirrors the player payload the mobile client expects.
type LeaderboardEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Level     int    `json:"level"`
	TotalXP   int    `json:"totalXP"`
	Score     int    `json:"score"`
}

// Leaderboard returns the event's participants ordered by total XP, then by
// completed-clue count. The ranking itself is a plain read-only query;
// results are cached in redis for a short TTL when a client is configured.
func (s *Store) Leaderboard(ctx context.Context, eventID string) ([]LeaderboardEntry, error) {
	key := "leaderboard:" + eventID
	if s.rdb != nil {
		// Cache miss or unavailable cache both fall through to the database.
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached []LeaderboardEntry
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, p.avatar_url, p.level, p.total_xp,
			(SELECT COUNT(*)
			 FROM user_clue_progress ucp
			 JOIN clues c ON c.id = ucp.clue_id
			 WHERE ucp.user_id = u.id AND c.event_id = gp.event_id AND ucp.is_completed = 1)
		FROM game_players gp
		JOIN users u ON u.id = gp.user_id
		JOIN profiles p ON p.id = u.id
		WHERE gp.event_id = ?
		ORDER BY p.total_xp DESC, u.name
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.AvatarURL, &e.Level, &e.TotalXP, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(entries); err == nil {
			s.rdb.Set(ctx, key, data, s.lbTTL)
		}
	}
	return entries, nil
}
