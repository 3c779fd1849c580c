package stats

import "time"

// DefaultActivityID identifies this activity to the analytics platform.
const DefaultActivityID = "dia-noite-animals"

// Exporter renders user stats in the Inven!RA-compatible export shape.
type Exporter struct {
	activityID string
	now        func() time.Time
}

// NewExporter creates an exporter. An empty activity id selects the default.
func NewExporter(activityID string) *Exporter {
	if activityID == "" {
		activityID = DefaultActivityID
	}
	return &Exporter{activityID: activityID, now: time.Now}
}

// ExportView is the analytics payload for one student.
type ExportView struct {
	StudentID      string                 `json:"studentId"`
	ActivityID     string                 `json:"activityId"`
	SessionMetrics map[string]interface{} `json:"sessionMetrics"`
	Timestamp      time.Time              `json:"timestamp"`
}

// Export formats a user's aggregates. A user with no recorded stats yields
// empty metrics, never an error.
func (e *Exporter) Export(userID string, st *UserStats) ExportView {
	view := ExportView{
		StudentID:      userID,
		ActivityID:     e.activityID,
		SessionMetrics: map[string]interface{}{},
		Timestamp:      e.now(),
	}
	if st == nil {
		return view
	}

	var avgSessionTime float64
	if st.TotalSessions > 0 {
		avgSessionTime = st.TotalPlayTime / float64(st.TotalSessions)
	}

	view.SessionMetrics = map[string]interface{}{
		"totalSessions":     st.TotalSessions,
		"totalPlayTime":     st.TotalPlayTime,
		"totalChallenges":   st.TotalChallenges,
		"totalInteractions": st.TotalInteractions,
		"consecutiveDays":   st.ConsecutiveDays,
		"avgSessionTime":    avgSessionTime,
		"totalScore":        st.TotalScore,
		"avgScore":          round2(st.AvgScore),
		"bestStreak":        st.BestStreak,
	}
	return view
}
