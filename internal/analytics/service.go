package analytics

import (
	"github.com/rs/zerolog"

	"github.com/dianoite/quiz-analytics/internal/challenge"
	"github.com/dianoite/quiz-analytics/internal/metrics"
	"github.com/dianoite/quiz-analytics/internal/scoring"
	"github.com/dianoite/quiz-analytics/internal/session"
	"github.com/dianoite/quiz-analytics/internal/stats"
)

// Publisher fans session events out to live observers. Publishing is
// best-effort and must never block or fail the tracking path.
type Publisher interface {
	PublishSessionEvent(sessionID, eventType string, payload interface{})
}

// Event type names emitted on the session feed.
const (
	EventSessionStarted     = "session_started"
	EventChallengeStarted   = "challenge_started"
	EventChallengeCompleted = "challenge_completed"
	EventInteraction        = "interaction"
	EventSessionEnded       = "session_ended"
)

// ServiceOptions configures the analytics service.
type ServiceOptions struct {
	// DefaultTimeLimit, in seconds, applies to scoring contexts whose
	// completion request carried no explicit limit.
	DefaultTimeLimit float64
}

// Service is the session analytics facade: it orchestrates the session
// store, event tracker, score calculator, streak manager, and statistics
// aggregator behind one surface. Calls for the same session are serialized
// by the caller; different sessions and users may run concurrently.
type Service struct {
	store      *session.Store
	tracker    *session.Tracker
	calculator *scoring.Calculator
	stats      *stats.Aggregator
	streaks    *stats.StreakManager
	exporter   *stats.Exporter
	publisher  Publisher
	metrics    *metrics.Metrics

	defaultTimeLimit float64
	logger           zerolog.Logger
}

// NewService wires the analytics facade. publisher and m may be nil.
func NewService(
	store *session.Store,
	tracker *session.Tracker,
	calculator *scoring.Calculator,
	aggregator *stats.Aggregator,
	streaks *stats.StreakManager,
	exporter *stats.Exporter,
	publisher Publisher,
	m *metrics.Metrics,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	limit := opts.DefaultTimeLimit
	if limit <= 0 {
		limit = 30
	}
	return &Service{
		store:            store,
		tracker:          tracker,
		calculator:       calculator,
		stats:            aggregator,
		streaks:          streaks,
		exporter:         exporter,
		publisher:        publisher,
		metrics:          m,
		defaultTimeLimit: limit,
		logger:           logger.With().Str("component", "session_analytics").Logger(),
	}
}

// Calculator exposes the score calculator, e.g. to swap strategies at
// runtime. Swaps never recompute stored results.
func (s *Service) Calculator() *scoring.Calculator { return s.calculator }

// StartSession opens a session for a user, updating the lifetime session
// count and the consecutive-day streak.
func (s *Service) StartSession(userID, sessionID string) session.View {
	sess := s.store.Create(userID, sessionID)

	s.stats.UpdateUser(userID, func(st *stats.UserStats) {
		st.TotalSessions++
		s.streaks.UpdateConsecutiveDays(st)
	})

	if s.metrics != nil {
		s.metrics.SessionsStarted.Inc()
	}

	view := sess.View()
	s.publish(view.ID, EventSessionStarted, view)

	s.logger.Info().
		Str("session_id", view.ID).
		Str("user_id", userID).
		Msg("session started")
	return view
}

// LogChallengeStart records the start of a challenge inside a session.
func (s *Service) LogChallengeStart(sessionID string, ch challenge.Challenge) (session.View, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return session.View{}, err
	}

	s.tracker.LogChallengeStart(sess, ch)

	s.stats.UpdateUser(sess.UserID, func(st *stats.UserStats) {
		st.TotalChallenges++
		st.TotalInteractions++
	})

	if s.metrics != nil {
		s.metrics.ChallengesStarted.Inc()
		s.metrics.Interactions.Inc()
	}

	view := sess.View()
	s.publish(sessionID, EventChallengeStarted, map[string]interface{}{
		"challenge_id":   ch.ID(),
		"challenge_type": ch.Type(),
		"animal_id":      ch.AnimalID(),
	})
	return view, nil
}

// CompletionRequest carries the completion inputs. TimeTaken and TimeLimit
// are optional; a missing TimeTaken falls back to the elapsed time since
// the matching start event.
type CompletionRequest struct {
	ChallengeID string
	IsCorrect   bool
	TimeTaken   *float64
	TimeLimit   *float64
	Difficulty  int
}

// CompletionResult is the outcome of one completed challenge.
type CompletionResult struct {
	Result            scoring.Result `json:"result"`
	Duration          float64        `json:"duration"`
	Streak            int            `json:"streak"`
	NewBestStreak     bool           `json:"new_best_streak"`
	SessionTotalScore int            `json:"session_total_score"`
}

// CompleteChallenge scores and records a completion: it updates the
// in-session streak, assembles the scoring context, produces the score
// result, derives the challenge timing, and folds the outcome into the
// session and the user's lifetime stats.
func (s *Service) CompleteChallenge(sessionID string, req CompletionRequest) (CompletionResult, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return CompletionResult{}, err
	}

	// The streak is extended before scoring so streak-based strategies see
	// the run including this answer.
	streak := s.streaks.UpdateSessionStreak(sess, req.IsCorrect)

	timeTaken := 0.0
	if req.TimeTaken != nil {
		timeTaken = *req.TimeTaken
	} else if d, ok := s.tracker.ChallengeDuration(sess, req.ChallengeID); ok {
		timeTaken = d
	}

	timeLimit := s.defaultTimeLimit
	if req.TimeLimit != nil && *req.TimeLimit > 0 {
		timeLimit = *req.TimeLimit
	}

	scoringCtx := scoring.Context{
		TimeTaken:  timeTaken,
		TimeLimit:  timeLimit,
		IsCorrect:  req.IsCorrect,
		Attempts:   sess.Attempts(req.ChallengeID),
		Difficulty: req.Difficulty,
		Streak:     streak,
	}
	result := s.calculator.DetailedResult(scoringCtx)

	duration := s.tracker.LogChallengeComplete(sess, req.ChallengeID, req.IsCorrect, result)
	sess.AddScore(result)

	var newRecord bool
	s.stats.UpdateUser(sess.UserID, func(st *stats.UserStats) {
		st.TotalInteractions++
		newRecord = s.streaks.CheckBestStreak(st, streak)
	})

	if s.metrics != nil {
		s.metrics.Interactions.Inc()
		s.metrics.RecordCompletion(req.IsCorrect, result.Score, duration)
	}

	outcome := CompletionResult{
		Result:            result,
		Duration:          duration,
		Streak:            streak,
		NewBestStreak:     newRecord,
		SessionTotalScore: sess.View().TotalScore,
	}
	s.publish(sessionID, EventChallengeCompleted, outcome)

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("challenge_id", req.ChallengeID).
		Bool("is_correct", req.IsCorrect).
		Int("score", result.Score).
		Msg("challenge completed")
	return outcome, nil
}

// IncrementAttempts bumps the attempt counter for a challenge within a
// session and returns the new count.
func (s *Service) IncrementAttempts(sessionID, challengeID string) (int, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return 0, err
	}
	return s.tracker.IncrementAttempts(sess, challengeID), nil
}

// LogInteraction records a free-form event in a session.
func (s *Service) LogInteraction(sessionID, eventType string, data map[string]interface{}) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	s.tracker.LogInteraction(sess, eventType, data)
	s.stats.IncrementInteractions(sess.UserID)

	if s.metrics != nil {
		s.metrics.Interactions.Inc()
	}

	s.publish(sessionID, EventInteraction, map[string]interface{}{
		"event_type": eventType,
		"data":       data,
	})
	return nil
}

// EndSession closes a session and finalizes the user's aggregates. Ending
// an already-inactive session returns the same summary without
// double-counting play time or score totals.
func (s *Service) EndSession(sessionID string) (stats.SessionSummary, error) {
	sess, ended, err := s.store.End(sessionID)
	if err != nil {
		return stats.SessionSummary{}, err
	}

	view := sess.View()
	if ended {
		s.stats.FinalizeSession(view.UserID, view.Duration, view.TotalScore, view.CurrentStreak)

		if s.metrics != nil {
			s.metrics.SessionsEnded.Inc()
		}
	}

	summary := s.stats.SessionSummary(view)
	if ended {
		s.publish(sessionID, EventSessionEnded, summary)
		s.logger.Info().
			Str("session_id", sessionID).
			Float64("duration", view.Duration).
			Int("total_score", view.TotalScore).
			Msg("session ended")
	}
	return summary, nil
}

// SessionSummary derives the reporting view of one session at any point in
// its lifecycle.
func (s *Service) SessionSummary(sessionID string) (stats.SessionSummary, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return stats.SessionSummary{}, err
	}
	return s.stats.SessionSummary(sess.View()), nil
}

// UserReport folds a user's lifetime stats with all of their session
// summaries. Unknown users get a zero-valued report.
func (s *Service) UserReport(userID string) stats.UserReport {
	var summaries []stats.SessionSummary
	for _, id := range s.store.UserSessions(userID) {
		sess, err := s.store.Get(id)
		if err != nil {
			continue
		}
		summaries = append(summaries, s.stats.SessionSummary(sess.View()))
	}
	return s.stats.UserReport(userID, summaries)
}

// UserStats returns a copy of a user's raw aggregates.
func (s *Service) UserStats(userID string) (stats.UserStats, bool) {
	return s.stats.Snapshot(userID)
}

// ExportAnalytics renders the Inven!RA-compatible export for a student.
// Students with no recorded stats export empty metrics.
func (s *Service) ExportAnalytics(userID string) stats.ExportView {
	if st, ok := s.stats.Snapshot(userID); ok {
		return s.exporter.Export(userID, &st)
	}
	return s.exporter.Export(userID, nil)
}

// IsSessionActive reports whether a session exists and is still open.
func (s *Service) IsSessionActive(sessionID string) bool {
	return s.store.IsActive(sessionID)
}

// ListUserSessions returns the ids of every session a user has started.
func (s *Service) ListUserSessions(userID string) []string {
	return s.store.UserSessions(userID)
}

func (s *Service) publish(sessionID, eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishSessionEvent(sessionID, eventType, payload)
}
