// Package game implements the progression and reward engine: the per-user
// clue unlock/completion state machine, the reward ledger that converts
// completed clues into experience, levels, professions, and coins, and the
// sabotage action that freezes a rival's profile.
//
// The package owns no persistence. All shared state lives behind the Store
// contract; implementations must make the multi-step transitions atomic.
package game

import (
	"errors"
	"time"
)

// Sentinel errors. Handlers translate these into HTTP statuses.
var (
	ErrNotFound          = errors.New("not found")
	ErrIncorrectAnswer   = errors.New("incorrect answer")
	ErrInsufficientFunds = errors.New("not enough coins")
	ErrSelfSabotage      = errors.New("cannot sabotage yourself")
)

// Profile status values.
const (
	StatusNormal = "normal"
	StatusFrozen = "frozen"
)

// Clue types.
const (
	TypeRiddle   = "riddle"
	TypeScan     = "qrScan"
	TypeMinigame = "minigame"
)

// Clue is one step in an event's ordered puzzle sequence. Clues are
// immutable once authored.
type Clue struct {
	ID             string
	EventID        string
	SequenceIndex  int
	Title          string
	Description    string
	Type           string
	PuzzleType     string
	RiddleQuestion string
	RiddleAnswer   string
	XPReward       int
	CoinReward     int
}

// HasAnswer reports whether completing the clue requires an answer check.
func (c Clue) HasAnswer() bool { return c.RiddleAnswer != "" }

// Progress is the per-user, per-clue lock/completion record. No row for a
// clue means locked, except at sequence index 0 which is implicitly
// unlocked for everyone.
type Progress struct {
	UserID      string
	ClueID      string
	Locked      bool
	Completed   bool
	CompletedAt *time.Time
}

// Profile is the per-user persistent game state. Experience is progress
// within the current level; TotalXP is cumulative and never decreases.
type Profile struct {
	ID          string
	AvatarURL   string
	Experience  int
	TotalXP     int
	Level       int
	Profession  string
	Coins       int
	Status      string
	FrozenUntil *time.Time
}

// Frozen reports whether the profile's freeze window covers t.
func (p Profile) Frozen(t time.Time) bool {
	return p.Status == StatusFrozen && p.FrozenUntil != nil && p.FrozenUntil.After(t)
}

// ClueStatus annotates a clue with one user's progress for display.
type ClueStatus struct {
	Clue
	Completed bool
	Locked    bool
}

// CompletionResult describes the outcome of a completion transition.
type CompletionResult struct {
	// First is true when this call flipped the clue from not-completed to
	// completed. Rewards are granted only on that transition.
	First bool
	// Next is the clue unlocked by this completion, nil when the event's
	// chain is exhausted.
	Next *Clue
	// Profile is the caller's profile after any reward.
	Profile Profile
}
