package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/playperu/cluehunt/internal/game"
)

var ErrRequestHandled = errors.New("request already handled")

func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

func (s *Store) CreateEvent(ctx context.Context, name string) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, name) VALUES (?, ?)`, id, name)
	return id, err
}

// NewClue is a clue authoring request; sequence indexes are assigned by
// insertion order after the event's existing clues.
type NewClue struct {
	Title          string
	Description    string
	Type           string
	PuzzleType     string
	RiddleQuestion string
	RiddleAnswer   string
	XPReward       int
	CoinReward     int
}

// CreateClues appends a batch of clues to the event in one transaction and
// returns their ids.
func (s *Store) CreateClues(ctx context.Context, eventID string, clues []NewClue) ([]string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(clues))
	err = s.withImmediate(ctx, func(q querier) error {
		var next int
		if err := q.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sequence_index) + 1, 0) FROM clues WHERE event_id = ?
		`, eventID).Scan(&next); err != nil {
			return err
		}

		for i, c := range clues {
			id := newID()
			if _, err := q.ExecContext(ctx, `
				INSERT INTO clues (id, event_id, sequence_index, title, description, type,
					puzzle_type, riddle_question, riddle_answer, xp_reward, coin_reward)
				VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)
			`, id, eventID, next+i, c.Title, c.Description, c.Type,
				c.PuzzleType, c.RiddleQuestion, c.RiddleAnswer, c.XPReward, c.CoinReward); err != nil {
				return fmt.Errorf("inserting clue %d: %w", i, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateGameRequest records a player's request to join an event.
func (s *Store) CreateGameRequest(ctx context.Context, userID, eventID string) (string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return "", game.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	id := newID()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_requests (id, user_id, event_id) VALUES (?, ?, ?)
	`, id, userID, eventID)
	return id, err
}

// ApproveRequest flips a pending request to approved and creates the game
// player with its starting lives, in one transaction. Approving a request
// twice fails with ErrRequestHandled instead of minting a second player.
func (s *Store) ApproveRequest(ctx context.Context, requestID string) error {
	return s.withImmediate(ctx, func(q querier) error {
		var userID, eventID string
		err := q.QueryRowContext(ctx, `
			SELECT user_id, event_id FROM game_requests WHERE id = ?
		`, requestID).Scan(&userID, &eventID)
		if errors.Is(err, sql.ErrNoRows) {
			return game.ErrNotFound
		}
		if err != nil {
			return err
		}

		r, err := q.ExecContext(ctx, `
			UPDATE game_requests SET status = 'approved'
			WHERE id = ? AND status = 'pending'
		`, requestID)
		if err != nil {
			return err
		}
		if n, _ := r.RowsAffected(); n == 0 {
			return ErrRequestHandled
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO game_players (id, user_id, event_id, lives)
			VALUES (?, ?, ?, 3)
			ON CONFLICT(user_id, event_id) DO NOTHING
		`, newID(), userID, eventID)
		return err
	})
}

// StartGame enrolls the user in the event and materializes the unlocked
// progress row for the opening clue. Idempotent.
func (s *Store) StartGame(ctx context.Context, userID, eventID string) error {
	return s.withImmediate(ctx, func(q querier) error {
		var firstClueID string
		err := q.QueryRowContext(ctx, `
			SELECT id FROM clues WHERE event_id = ? ORDER BY sequence_index LIMIT 1
		`, eventID).Scan(&firstClueID)
		if errors.Is(err, sql.ErrNoRows) {
			return game.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO game_players (id, user_id, event_id)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id, event_id) DO NOTHING
		`, newID(), userID, eventID); err != nil {
			return err
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO user_clue_progress (user_id, clue_id, is_locked, is_completed)
			VALUES (?, ?, 0, 0)
			ON CONFLICT(user_id, clue_id) DO UPDATE SET is_locked = 0
		`, userID, firstClueID)
		return err
	})
}
