package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/playperu/cluehunt/internal/game"
)

const clueColumns = `id, event_id, sequence_index, title, description, type,
	COALESCE(puzzle_type, ''), riddle_question, riddle_answer, xp_reward, coin_reward`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClue(row rowScanner) (game.Clue, error) {
	var c game.Clue
	err := row.Scan(&c.ID, &c.EventID, &c.SequenceIndex, &c.Title, &c.Description,
		&c.Type, &c.PuzzleType, &c.RiddleQuestion, &c.RiddleAnswer,
		&c.XPReward, &c.CoinReward)
	return c, err
}

func (s *Store) Clue(ctx context.Context, clueID string) (game.Clue, error) {
	c, err := scanClue(s.db.QueryRowContext(ctx,
		`SELECT `+clueColumns+` FROM clues WHERE id = ?`, clueID))
	if errors.Is(err, sql.ErrNoRows) {
		return game.Clue{}, game.ErrNotFound
	}
	return c, err
}

func (s *Store) CluesForEvent(ctx context.Context, eventID string) ([]game.Clue, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clueColumns+` FROM clues WHERE event_id = ? ORDER BY sequence_index`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clues []game.Clue
	for rows.Next() {
		c, err := scanClue(rows)
		if err != nil {
			return nil, err
		}
		clues = append(clues, c)
	}
	return clues, rows.Err()
}

func (s *Store) ProgressForUser(ctx context.Context, userID string) ([]game.Progress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, clue_id, is_locked, is_completed, completed_at
		FROM user_clue_progress WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Progress returns one user's progress row for a clue, ErrNotFound when no
// row exists yet (the default locked-unless-opening state).
func (s *Store) Progress(ctx context.Context, userID, clueID string) (game.Progress, error) {
	p, err := scanProgress(s.db.QueryRowContext(ctx, `
		SELECT user_id, clue_id, is_locked, is_completed, completed_at
		FROM user_clue_progress WHERE user_id = ? AND clue_id = ?
	`, userID, clueID))
	if errors.Is(err, sql.ErrNoRows) {
		return game.Progress{}, game.ErrNotFound
	}
	return p, err
}

// UpsertProgress atomically inserts or merges a single progress row. The
// conflict update never re-locks a completed row and never clears an
// earlier completion or its timestamp.
func (s *Store) UpsertProgress(ctx context.Context, p game.Progress) error {
	var completedAt any
	if p.CompletedAt != nil {
		completedAt = formatTime(*p.CompletedAt)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_clue_progress (user_id, clue_id, is_locked, is_completed, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, clue_id) DO UPDATE SET
			is_locked    = (excluded.is_locked AND user_clue_progress.is_completed = 0),
			is_completed = MAX(user_clue_progress.is_completed, excluded.is_completed),
			completed_at = COALESCE(user_clue_progress.completed_at, excluded.completed_at)
	`, p.UserID, p.ClueID, boolInt(p.Locked), boolInt(p.Completed), completedAt)
	return err
}

func scanProgress(row rowScanner) (game.Progress, error) {
	var p game.Progress
	var completedAt sql.NullString
	if err := row.Scan(&p.UserID, &p.ClueID, &p.Locked, &p.Completed, &completedAt); err != nil {
		return p, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return p, fmt.Errorf("parsing completed_at: %w", err)
		}
		p.CompletedAt = &t
	}
	return p, nil
}

func (s *Store) Profile(ctx context.Context, userID string) (game.Profile, error) {
	return s.profile(ctx, s.db, userID)
}

const profileColumns = `id, avatar_url, experience, total_xp, level, profession, coins, status, frozen_until`

func (s *Store) profile(ctx context.Context, q querier, userID string) (game.Profile, error) {
	var p game.Profile
	var frozenUntil sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, userID,
	).Scan(&p.ID, &p.AvatarURL, &p.Experience, &p.TotalXP, &p.Level,
		&p.Profession, &p.Coins, &p.Status, &frozenUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return p, game.ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if frozenUntil.Valid {
		t, err := parseTime(frozenUntil.String)
		if err != nil {
			return p, fmt.Errorf("parsing frozen_until: %w", err)
		}
		p.FrozenUntil = &t
	}
	return p, nil
}

func (s *Store) writeProfile(ctx context.Context, q querier, p game.Profile) error {
	var frozenUntil any
	if p.FrozenUntil != nil {
		frozenUntil = formatTime(*p.FrozenUntil)
	}
	_, err := q.ExecContext(ctx, `
		UPDATE profiles
		SET avatar_url = ?, experience = ?, total_xp = ?, level = ?,
			profession = ?, coins = ?, status = ?, frozen_until = ?
		WHERE id = ?
	`, p.AvatarURL, p.Experience, p.TotalXP, p.Level,
		p.Profession, p.Coins, p.Status, frozenUntil, p.ID)
	return err
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, fn func(*game.Profile) error) (game.Profile, error) {
	var p game.Profile
	err := s.withImmediate(ctx, func(q querier) error {
		var err error
		p, err = s.profile(ctx, q, userID)
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
		return s.writeProfile(ctx, q, p)
	})
	return p, err
}

func (s *Store) ApplyCompletion(ctx context.Context, userID string, clue game.Clue, at time.Time, grant bool) (game.CompletionResult, error) {
	var res game.CompletionResult
	err := s.withImmediate(ctx, func(q querier) error {
		// One-shot guard: the conflict update only fires while the row is
		// not yet completed, so exactly one concurrent caller sees a
		// changed row and becomes the reward grantor.
		r, err := q.ExecContext(ctx, `
			INSERT INTO user_clue_progress (user_id, clue_id, is_locked, is_completed, completed_at)
			VALUES (?, ?, 0, 1, ?)
			ON CONFLICT(user_id, clue_id) DO UPDATE
			SET is_locked = 0, is_completed = 1, completed_at = excluded.completed_at
			WHERE user_clue_progress.is_completed = 0
		`, userID, clue.ID, formatTime(at))
		if err != nil {
			return fmt.Errorf("marking completed: %w", err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return err
		}
		res.First = n > 0

		// Unlock the next clue in the chain, if any.
		next, err := scanClue(q.QueryRowContext(ctx, `
			SELECT `+clueColumns+` FROM clues
			WHERE event_id = ? AND sequence_index > ?
			ORDER BY sequence_index LIMIT 1
		`, clue.EventID, clue.SequenceIndex))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Chain exhausted.
		case err != nil:
			return fmt.Errorf("finding next clue: %w", err)
		default:
			res.Next = &next
			if _, err := q.ExecContext(ctx, `
				INSERT INTO user_clue_progress (user_id, clue_id, is_locked, is_completed)
				VALUES (?, ?, 0, 0)
				ON CONFLICT(user_id, clue_id) DO UPDATE SET is_locked = 0
			`, userID, next.ID); err != nil {
				return fmt.Errorf("unlocking next clue: %w", err)
			}
		}

		p, err := s.profile(ctx, q, userID)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		if grant && res.First {
			game.ApplyReward(&p, clue.XPReward, clue.CoinReward)
			if err := s.writeProfile(ctx, q, p); err != nil {
				return fmt.Errorf("persisting reward: %w", err)
			}
		}
		res.Profile = p
		return nil
	})
	if err != nil {
		return game.CompletionResult{}, err
	}
	return res, nil
}

func (s *Store) Sabotage(ctx context.Context, actorID, targetID string, cost int, until time.Time) error {
	return s.withImmediate(ctx, func(q querier) error {
		var coins int
		err := q.QueryRowContext(ctx,
			`SELECT coins FROM profiles WHERE id = ?`, actorID).Scan(&coins)
		if errors.Is(err, sql.ErrNoRows) {
			return game.ErrNotFound
		}
		if err != nil {
			return err
		}
		if coins < cost {
			return game.ErrInsufficientFunds
		}

		if _, err := q.ExecContext(ctx,
			`UPDATE profiles SET coins = coins - ? WHERE id = ?`, cost, actorID); err != nil {
			return fmt.Errorf("debiting actor: %w", err)
		}

		// A fresh freeze overwrites any prior window.
		r, err := q.ExecContext(ctx, `
			UPDATE profiles SET status = ?, frozen_until = ? WHERE id = ?
		`, game.StatusFrozen, formatTime(until), targetID)
		if err != nil {
			return fmt.Errorf("freezing target: %w", err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return game.ErrNotFound
		}
		return nil
	})
}
