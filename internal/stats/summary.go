package stats

import (
	"time"

	"github.com/dianoite/quiz-analytics/internal/scoring"
	"github.com/dianoite/quiz-analytics/internal/session"
)

// SessionSummary is the reporting view of one session.
type SessionSummary struct {
	SessionID            string                    `json:"session_id"`
	UserID               string                    `json:"user_id"`
	Duration             float64                   `json:"duration"`
	ChallengesAttempted  int                       `json:"challenges_attempted"`
	TotalInteractions    int                       `json:"total_interactions"`
	InteractionBreakdown map[string]int            `json:"interaction_breakdown"`
	AvgChallengeTime     float64                   `json:"avg_challenge_time"`
	ChallengeTimes       []session.ChallengeTiming `json:"challenge_times"`
	StartTime            time.Time                 `json:"start_time"`
	EndTime              *time.Time                `json:"end_time"`
	Active               bool                      `json:"active"`
	TotalScore           int                       `json:"total_score"`
	CurrentStreak        int                       `json:"current_streak"`
	Scores               []scoring.Result          `json:"scores"`
}

// UserReport folds lifetime aggregates with per-session summaries.
type UserReport struct {
	UserID            string           `json:"user_id"`
	TotalSessions     int              `json:"total_sessions"`
	TotalPlayTime     float64          `json:"total_play_time"`
	AvgSessionTime    float64          `json:"avg_session_time"`
	TotalChallenges   int              `json:"total_challenges"`
	TotalInteractions int              `json:"total_interactions"`
	ConsecutiveDays   int              `json:"consecutive_days"`
	TotalScore        int              `json:"total_score"`
	AvgScore          float64          `json:"avg_score"`
	BestStreak        int              `json:"best_streak"`
	Sessions          []SessionSummary `json:"sessions"`
}
