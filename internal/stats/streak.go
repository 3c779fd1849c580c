package stats

import (
	"time"

	"github.com/dianoite/quiz-analytics/internal/session"
)

const dateLayout = "2006-01-02"

// StreakManager tracks consecutive-day play streaks on user stats and
// correct-answer streaks inside sessions.
type StreakManager struct {
	now func() time.Time
}

// NewStreakManager creates a streak manager using wall-clock dates.
func NewStreakManager() *StreakManager {
	return &StreakManager{now: time.Now}
}

// UpdateConsecutiveDays records today as a play date and recomputes the
// day streak: first play and gaps over one day reset to 1, a one-day gap
// extends the run, playing again on the same day changes nothing. The
// caller must hold the user's stats entry (see Aggregator.UpdateUser).
func (m *StreakManager) UpdateConsecutiveDays(st *UserStats) {
	today := m.now().Format(dateLayout)

	if !containsDate(st.PlayDates, today) {
		st.PlayDates = append(st.PlayDates, today)
	}

	switch {
	case st.LastPlayDate == "":
		st.ConsecutiveDays = 1
	default:
		gap := daysBetween(st.LastPlayDate, today)
		if gap == 1 {
			st.ConsecutiveDays++
		} else if gap > 1 {
			st.ConsecutiveDays = 1
		}
		// gap == 0: already played today, streak unchanged
	}

	st.LastPlayDate = today
}

// UpdateSessionStreak extends the in-session correct streak or resets it on
// a wrong answer, returning the new value.
func (m *StreakManager) UpdateSessionStreak(s *session.Session, isCorrect bool) int {
	return s.ApplyStreak(isCorrect)
}

// CheckBestStreak raises the lifetime best streak when the current one
// beats it, reporting whether a new record was set. The caller must hold
// the user's stats entry.
func (m *StreakManager) CheckBestStreak(st *UserStats, currentStreak int) bool {
	if currentStreak > st.BestStreak {
		st.BestStreak = currentStreak
		return true
	}
	return false
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

func daysBetween(from, to string) int {
	a, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0
	}
	b, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
