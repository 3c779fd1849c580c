package stats

import (
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dianoite/quiz-analytics/internal/session"
)

// UserStats are the lifetime aggregates for one user. Records are created
// lazily on first reference and live for the process lifetime.
type UserStats struct {
	UserID            string   `json:"user_id"`
	TotalSessions     int      `json:"total_sessions"`
	TotalPlayTime     float64  `json:"total_play_time"`
	TotalChallenges   int      `json:"total_challenges"`
	TotalInteractions int      `json:"total_interactions"`
	ConsecutiveDays   int      `json:"consecutive_days"`
	LastPlayDate      string   `json:"last_play_date,omitempty"`
	PlayDates         []string `json:"play_dates"`
	TotalScore        int      `json:"total_score"`
	BestStreak        int      `json:"best_streak"`
	AvgScore          float64  `json:"avg_score"`
}

// Aggregator owns the per-user statistics map. Every mutation runs under the
// user's entry lock so concurrent completions for the same user never lose
// updates.
type Aggregator struct {
	mu     sync.Mutex
	users  map[string]*userEntry
	logger zerolog.Logger
}

type userEntry struct {
	mu    sync.Mutex
	stats UserStats
}

// NewAggregator creates an empty statistics aggregator.
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		users:  make(map[string]*userEntry),
		logger: logger.With().Str("component", "stats_aggregator").Logger(),
	}
}

func (a *Aggregator) entry(userID string) *userEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.users[userID]
	if !ok {
		e = &userEntry{stats: UserStats{UserID: userID}}
		a.users[userID] = e
	}
	return e
}

// UpdateUser runs fn against the user's stats under the entry lock,
// initializing the record if needed. The read-modify-write sequence inside
// fn is atomic per user.
func (a *Aggregator) UpdateUser(userID string, fn func(*UserStats)) {
	e := a.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.stats)
}

// EnsureUser initializes a stats record without mutating it.
func (a *Aggregator) EnsureUser(userID string) {
	a.entry(userID)
}

// IncrementSessions bumps the lifetime session counter.
func (a *Aggregator) IncrementSessions(userID string) {
	a.UpdateUser(userID, func(st *UserStats) { st.TotalSessions++ })
}

// IncrementChallenges bumps the lifetime challenge counter.
func (a *Aggregator) IncrementChallenges(userID string) {
	a.UpdateUser(userID, func(st *UserStats) { st.TotalChallenges++ })
}

// IncrementInteractions bumps the lifetime interaction counter.
func (a *Aggregator) IncrementInteractions(userID string) {
	a.UpdateUser(userID, func(st *UserStats) { st.TotalInteractions++ })
}

// AddPlayTime accumulates an ended session's duration, in seconds.
func (a *Aggregator) AddPlayTime(userID string, seconds float64) {
	a.UpdateUser(userID, func(st *UserStats) { st.TotalPlayTime += seconds })
}

// UpdateScoreStats folds a finished session's score into the lifetime
// totals: total score, best streak, and the challenge-weighted average
// (guarded against a zero challenge count).
func (a *Aggregator) UpdateScoreStats(userID string, sessionScore, sessionStreak int) {
	a.UpdateUser(userID, func(st *UserStats) {
		st.TotalScore += sessionScore
		if sessionStreak > st.BestStreak {
			st.BestStreak = sessionStreak
		}
		if st.TotalChallenges > 0 {
			st.AvgScore = float64(st.TotalScore) / float64(st.TotalChallenges)
		}
	})
}

// FinalizeSession folds an ended session into the lifetime aggregates in
// one atomic step: play time, total score, best streak, and the recomputed
// average.
func (a *Aggregator) FinalizeSession(userID string, duration float64, sessionScore, sessionStreak int) {
	a.UpdateUser(userID, func(st *UserStats) {
		st.TotalPlayTime += duration
		st.TotalScore += sessionScore
		if sessionStreak > st.BestStreak {
			st.BestStreak = sessionStreak
		}
		if st.TotalChallenges > 0 {
			st.AvgScore = float64(st.TotalScore) / float64(st.TotalChallenges)
		}
	})
}

// Snapshot returns a copy of the user's stats and whether the user exists.
// Snapshot never creates a record.
func (a *Aggregator) Snapshot(userID string) (UserStats, bool) {
	a.mu.Lock()
	e, ok := a.users[userID]
	a.mu.Unlock()
	if !ok {
		return UserStats{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.stats
	st.PlayDates = append([]string(nil), e.stats.PlayDates...)
	return st, true
}

// SessionSummary derives the reporting view of one session: average
// challenge duration, interaction counts grouped by type, and the raw
// session fields.
func (a *Aggregator) SessionSummary(v session.View) SessionSummary {
	var avgChallengeTime float64
	if len(v.ChallengeTimes) > 0 {
		var total float64
		for _, ct := range v.ChallengeTimes {
			total += ct.Duration
		}
		avgChallengeTime = round2(total / float64(len(v.ChallengeTimes)))
	}

	breakdown := make(map[string]int)
	for _, in := range v.Interactions {
		breakdown[in.Type]++
	}

	return SessionSummary{
		SessionID:            v.ID,
		UserID:               v.UserID,
		Duration:             v.Duration,
		ChallengesAttempted:  v.ChallengesAttempted,
		TotalInteractions:    len(v.Interactions),
		InteractionBreakdown: breakdown,
		AvgChallengeTime:     avgChallengeTime,
		ChallengeTimes:       v.ChallengeTimes,
		StartTime:            v.StartTime,
		EndTime:              v.EndTime,
		Active:               v.Active,
		TotalScore:           v.TotalScore,
		CurrentStreak:        v.CurrentStreak,
		Scores:               v.Scores,
	}
}

// UserReport folds the lifetime stats with per-session summaries. Unknown
// users get a zero-valued report, not an error.
func (a *Aggregator) UserReport(userID string, sessions []SessionSummary) UserReport {
	st, ok := a.Snapshot(userID)
	if !ok {
		return UserReport{UserID: userID, Sessions: []SessionSummary{}}
	}

	var avgSessionTime float64
	if st.TotalSessions > 0 {
		avgSessionTime = st.TotalPlayTime / float64(st.TotalSessions)
	}

	if sessions == nil {
		sessions = []SessionSummary{}
	}

	return UserReport{
		UserID:            userID,
		TotalSessions:     st.TotalSessions,
		TotalPlayTime:     st.TotalPlayTime,
		AvgSessionTime:    avgSessionTime,
		TotalChallenges:   st.TotalChallenges,
		TotalInteractions: st.TotalInteractions,
		ConsecutiveDays:   st.ConsecutiveDays,
		TotalScore:        st.TotalScore,
		AvgScore:          round2(st.AvgScore),
		BestStreak:        st.BestStreak,
		Sessions:          sessions,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
