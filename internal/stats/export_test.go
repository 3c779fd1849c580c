package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExportUnknownUserYieldsEmptyMetrics(t *testing.T) {
	e := NewExporter("")
	e.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }

	view := e.Export("ghost", nil)

	assert.Equal(t, "ghost", view.StudentID)
	assert.Equal(t, DefaultActivityID, view.ActivityID)
	assert.NotNil(t, view.SessionMetrics)
	assert.Empty(t, view.SessionMetrics)
	assert.Equal(t, 2026, view.Timestamp.Year())
}

func TestExportMetrics(t *testing.T) {
	e := NewExporter("custom-activity")

	st := &UserStats{
		UserID:            "alice",
		TotalSessions:     2,
		TotalPlayTime:     240,
		TotalChallenges:   8,
		TotalInteractions: 20,
		ConsecutiveDays:   3,
		TotalScore:        560,
		BestStreak:        5,
		AvgScore:          70.333,
	}

	view := e.Export("alice", st)

	assert.Equal(t, "custom-activity", view.ActivityID)
	assert.Equal(t, 2, view.SessionMetrics["totalSessions"])
	assert.Equal(t, 240.0, view.SessionMetrics["totalPlayTime"])
	assert.Equal(t, 8, view.SessionMetrics["totalChallenges"])
	assert.Equal(t, 20, view.SessionMetrics["totalInteractions"])
	assert.Equal(t, 3, view.SessionMetrics["consecutiveDays"])
	assert.Equal(t, 120.0, view.SessionMetrics["avgSessionTime"])
	assert.Equal(t, 560, view.SessionMetrics["totalScore"])
	assert.Equal(t, 70.33, view.SessionMetrics["avgScore"])
	assert.Equal(t, 5, view.SessionMetrics["bestStreak"])
}
