package session

import (
	"sync"
	"time"

	"github.com/dianoite/quiz-analytics/internal/scoring"
)

// Interaction types written by the tracker. Free-form event names from the
// client pass through untouched.
const (
	TypeChallengeStart    = "challenge_start"
	TypeChallengeComplete = "challenge_complete"
)

// Interaction is one logged event inside a session. The sequence is
// append-only and the insertion order is significant: completions match the
// most recent unmatched start by scanning backwards.
type Interaction struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChallengeID   string                 `json:"challenge_id,omitempty"`
	ChallengeType string                 `json:"challenge_type,omitempty"`
	AnimalID      int                    `json:"animal_id,omitempty"`
	IsCorrect     *bool                  `json:"is_correct,omitempty"`
	Score         int                    `json:"score,omitempty"`
	Performance   string                 `json:"performance,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`

	// startedAt is the wall-clock instant captured on challenge_start;
	// matched flips once a completion consumes this start.
	startedAt time.Time
	matched   bool
}

// ChallengeTiming is the derived record for one completed challenge that had
// a matching start event.
type ChallengeTiming struct {
	ChallengeID   string  `json:"challenge_id"`
	ChallengeType string  `json:"challenge_type"`
	Duration      float64 `json:"duration"`
	IsCorrect     bool    `json:"is_correct"`
	Attempts      int     `json:"attempts"`
	Score         int     `json:"score"`
	Performance   string  `json:"performance"`
}

// Session is one continuous play period for one user. All mutable state is
// guarded by mu; callers serialize completions for the same challenge.
type Session struct {
	mu sync.Mutex

	ID                  string            `json:"session_id"`
	UserID              string            `json:"user_id"`
	StartTime           time.Time         `json:"start_time"`
	EndTime             *time.Time        `json:"end_time"`
	Duration            float64           `json:"duration"`
	Active              bool              `json:"active"`
	ChallengesAttempted int               `json:"challenges_attempted"`
	Interactions        []Interaction     `json:"interactions"`
	ChallengeTimes      []ChallengeTiming `json:"challenge_times"`
	Scores              []scoring.Result  `json:"scores"`
	TotalScore          int               `json:"total_score"`
	CurrentStreak       int               `json:"current_streak"`

	attempts map[string]int
}

// Attempts returns the attempt counter for a challenge, defaulting to 1 when
// the challenge was never seeded.
func (s *Session) Attempts(challengeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.attempts[challengeID]; ok {
		return n
	}
	return 1
}

// AddScore appends a score result and folds it into the running total.
func (s *Session) AddScore(result scoring.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scores = append(s.Scores, result)
	s.TotalScore += result.Score
}

// ApplyStreak extends the in-session correct streak or resets it, returning
// the new value.
func (s *Session) ApplyStreak(isCorrect bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isCorrect {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 0
	}
	return s.CurrentStreak
}

// View returns a consistent copy of the session state for summaries and
// serialization. Slices are copied so readers never race the tracker.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:                  s.ID,
		UserID:              s.UserID,
		StartTime:           s.StartTime,
		Duration:            s.Duration,
		Active:              s.Active,
		ChallengesAttempted: s.ChallengesAttempted,
		TotalScore:          s.TotalScore,
		CurrentStreak:       s.CurrentStreak,
		Interactions:        append([]Interaction(nil), s.Interactions...),
		ChallengeTimes:      append([]ChallengeTiming(nil), s.ChallengeTimes...),
		Scores:              append([]scoring.Result(nil), s.Scores...),
	}
	if s.EndTime != nil {
		end := *s.EndTime
		v.EndTime = &end
	}
	return v
}

// View is an immutable snapshot of a session.
type View struct {
	ID                  string            `json:"session_id"`
	UserID              string            `json:"user_id"`
	StartTime           time.Time         `json:"start_time"`
	EndTime             *time.Time        `json:"end_time"`
	Duration            float64           `json:"duration"`
	Active              bool              `json:"active"`
	ChallengesAttempted int               `json:"challenges_attempted"`
	Interactions        []Interaction     `json:"interactions"`
	ChallengeTimes      []ChallengeTiming `json:"challenge_times"`
	Scores              []scoring.Result  `json:"scores"`
	TotalScore          int               `json:"total_score"`
	CurrentStreak       int               `json:"current_streak"`
}
