package game

import (
	"context"
	"time"
)

// Store is the data-access contract the engine runs against. Every method
// that reads a value and writes something derived from it must execute as
// one atomic transaction: two concurrent completions of the same clue must
// grant exactly one reward, and two concurrent sabotage attempts must never
// drive a coin balance negative.
type Store interface {
	// Clue returns a clue by id, ErrNotFound when absent.
	Clue(ctx context.Context, clueID string) (Clue, error)

	// CluesForEvent returns the event's clues ordered by sequence index.
	// ErrNotFound when the event does not exist.
	CluesForEvent(ctx context.Context, eventID string) ([]Clue, error)

	// ProgressForUser returns all progress rows for the user. Absent rows
	// mean the default state (locked unless sequence index 0).
	ProgressForUser(ctx context.Context, userID string) ([]Progress, error)

	// Profile returns the user's profile, ErrNotFound when absent.
	Profile(ctx context.Context, userID string) (Profile, error)

	// UpdateProfile applies fn to the user's profile inside one immediate
	// transaction, so the read and the derived write can never interleave
	// with another writer. The updated profile is returned.
	UpdateProfile(ctx context.Context, userID string, fn func(*Profile) error) (Profile, error)

	// ApplyCompletion runs the whole completion transition in one
	// transaction: flip the progress row to completed (guarded so only the
	// first call wins), unlock the next clue in the event, and apply the
	// clue's reward to the profile via ApplyReward when grant is set and
	// this call was the first.
	ApplyCompletion(ctx context.Context, userID string, clue Clue, at time.Time, grant bool) (CompletionResult, error)

	// Sabotage debits cost coins from the actor and freezes the target
	// until the given time, in one transaction. ErrInsufficientFunds when
	// the actor cannot pay, ErrNotFound when either profile is missing; in
	// both cases nothing is persisted.
	Sabotage(ctx context.Context, actorID, targetID string, cost int, until time.Time) error
}
