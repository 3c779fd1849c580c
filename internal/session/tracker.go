package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dianoite/quiz-analytics/internal/challenge"
	"github.com/dianoite/quiz-analytics/internal/scoring"
)

// Tracker appends interaction events to sessions and derives per-challenge
// timing from start/complete pairs.
type Tracker struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates an event tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger: logger.With().Str("component", "event_tracker").Logger(),
		now:    time.Now,
	}
}

// LogChallengeStart records a challenge_start interaction, bumps the
// session's attempted counter, and seeds the attempt counter at zero. The
// seed is deliberately not an increment: IncrementAttempts owns the 1-based
// numbering.
func (t *Tracker) LogChallengeStart(s *Session, ch challenge.Challenge) {
	now := t.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Interactions = append(s.Interactions, Interaction{
		ID:            uuid.NewString(),
		Type:          TypeChallengeStart,
		Timestamp:     now,
		ChallengeID:   ch.ID(),
		ChallengeType: ch.Type(),
		AnimalID:      ch.AnimalID(),
		startedAt:     now,
	})
	s.ChallengesAttempted++

	if _, ok := s.attempts[ch.ID()]; !ok {
		s.attempts[ch.ID()] = 0
	}
}

// LogChallengeComplete records a completion. When a matching unmatched start
// exists the elapsed time becomes a ChallengeTiming record carrying the
// attempt count and score; without one the duration is zero and no timing is
// recorded, but the completion interaction is still appended. Returns the
// derived duration in seconds.
func (t *Tracker) LogChallengeComplete(s *Session, challengeID string, isCorrect bool, result scoring.Result) float64 {
	now := t.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var duration float64
	if start := findUnmatchedStart(s.Interactions, challengeID); start != nil {
		start.matched = true
		duration = now.Sub(start.startedAt).Seconds()

		attempts, ok := s.attempts[challengeID]
		if !ok {
			attempts = 1
		}

		s.ChallengeTimes = append(s.ChallengeTimes, ChallengeTiming{
			ChallengeID:   challengeID,
			ChallengeType: start.ChallengeType,
			Duration:      duration,
			IsCorrect:     isCorrect,
			Attempts:      attempts,
			Score:         result.Score,
			Performance:   result.Performance,
		})
	} else {
		t.logger.Debug().
			Str("session_id", s.ID).
			Str("challenge_id", challengeID).
			Msg("completion without matching start")
	}

	correct := isCorrect
	s.Interactions = append(s.Interactions, Interaction{
		ID:          uuid.NewString(),
		Type:        TypeChallengeComplete,
		Timestamp:   now,
		ChallengeID: challengeID,
		IsCorrect:   &correct,
		Score:       result.Score,
		Performance: result.Performance,
	})

	return duration
}

// ChallengeDuration peeks at the elapsed time since the most recent
// unmatched start for a challenge, without consuming the start event.
func (t *Tracker) ChallengeDuration(s *Session, challengeID string) (float64, bool) {
	now := t.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := findUnmatchedStart(s.Interactions, challengeID)
	if start == nil {
		return 0, false
	}
	return now.Sub(start.startedAt).Seconds(), true
}

// LogInteraction appends a free-form event. Counters are untouched.
func (t *Tracker) LogInteraction(s *Session, eventType string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Interactions = append(s.Interactions, Interaction{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: t.now(),
		Data:      data,
	})
}

// IncrementAttempts bumps the attempt counter for a challenge and returns
// the new count. The first call on a seeded counter yields 1.
func (t *Tracker) IncrementAttempts(s *Session, challengeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[challengeID]++
	return s.attempts[challengeID]
}

// findUnmatchedStart scans backwards for the most recent challenge_start for
// the given id that no completion has consumed yet.
func findUnmatchedStart(interactions []Interaction, challengeID string) *Interaction {
	for i := len(interactions) - 1; i >= 0; i-- {
		in := &interactions[i]
		if in.Type == TypeChallengeStart && in.ChallengeID == challengeID && !in.matched {
			return in
		}
	}
	return nil
}
