package game

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Defaults for sabotage tuning; overridable per instance.
const (
	DefaultSabotageCost   = 50
	DefaultFreezeDuration = 5 * time.Minute
)

// Service is the progression and reward engine. It is stateless apart from
// its configuration; concurrent calls for the same or different users are
// safe because every mutation happens inside a store transaction.
type Service struct {
	store  Store
	now    func() time.Time
	cost   int
	freeze time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithSabotageCost sets the coin cost of a sabotage.
func WithSabotageCost(coins int) Option {
	return func(s *Service) { s.cost = coins }
}

// WithFreezeDuration sets how long a sabotaged profile stays frozen.
func WithFreezeDuration(d time.Duration) Option {
	return func(s *Service) { s.freeze = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		cost:   DefaultSabotageCost,
		freeze: DefaultFreezeDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompleteClue validates the submitted answer against the clue, marks the
// clue completed for the user, unlocks the next clue in the event, and
// grants the clue's reward. Completion is one-shot: repeating the call for
// an already-completed clue is a safe no-op and grants nothing.
func (s *Service) CompleteClue(ctx context.Context, userID, clueID, answer string) (CompletionResult, error) {
	clue, err := s.store.Clue(ctx, clueID)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("loading clue: %w", err)
	}

	if clue.HasAnswer() && answer != "" && !answerMatches(clue.RiddleAnswer, answer) {
		return CompletionResult{}, ErrIncorrectAnswer
	}

	res, err := s.store.ApplyCompletion(ctx, userID, clue, s.now(), true)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("applying completion: %w", err)
	}
	return res, nil
}

// SkipClue marks the clue completed and unlocks the next one exactly like
// CompleteClue, but checks no answer and grants no reward.
func (s *Service) SkipClue(ctx context.Context, userID, clueID string) (CompletionResult, error) {
	clue, err := s.store.Clue(ctx, clueID)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("loading clue: %w", err)
	}

	res, err := s.store.ApplyCompletion(ctx, userID, clue, s.now(), false)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("applying skip: %w", err)
	}
	return res, nil
}

// ClueView returns every clue of the event in sequence order annotated with
// the user's completion and lock state. With no progress row, a clue is
// locked unless it opens the sequence. Pure read.
func (s *Service) ClueView(ctx context.Context, userID, eventID string) ([]ClueStatus, error) {
	clues, err := s.store.CluesForEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading clues: %w", err)
	}

	rows, err := s.store.ProgressForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading progress: %w", err)
	}
	byClue := make(map[string]Progress, len(rows))
	for _, p := range rows {
		byClue[p.ClueID] = p
	}

	view := make([]ClueStatus, 0, len(clues))
	for _, c := range clues {
		cs := ClueStatus{Clue: c, Locked: c.SequenceIndex != 0}
		if p, ok := byClue[c.ID]; ok {
			cs.Completed = p.Completed
			cs.Locked = p.Locked
		}
		view = append(view, cs)
	}
	return view, nil
}

// Sabotage debits the sabotage cost from the actor and freezes the target
// profile for the freeze duration. A new freeze overwrites any prior
// window rather than extending it.
func (s *Service) Sabotage(ctx context.Context, actorID, targetID string) (time.Time, error) {
	if actorID == targetID {
		return time.Time{}, ErrSelfSabotage
	}

	until := s.now().Add(s.freeze)
	if err := s.store.Sabotage(ctx, actorID, targetID, s.cost, until); err != nil {
		return time.Time{}, err
	}
	return until, nil
}

// SabotageCost reports the configured coin cost, for display.
func (s *Service) SabotageCost() int { return s.cost }

func answerMatches(expected, submitted string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(submitted))
}
