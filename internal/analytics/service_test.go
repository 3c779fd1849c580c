package analytics

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dianoite/quiz-analytics/internal/challenge"
	"github.com/dianoite/quiz-analytics/internal/scoring"
	"github.com/dianoite/quiz-analytics/internal/session"
	"github.com/dianoite/quiz-analytics/internal/stats"
)

type capturedEvent struct {
	SessionID string
	Type      string
}

type stubPublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *stubPublisher) PublishSessionEvent(sessionID, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{SessionID: sessionID, Type: eventType})
}

func (p *stubPublisher) Events() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}

func (p *stubPublisher) CountOf(eventType string) int {
	var n int
	for _, e := range p.Events() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func newTestService(strategy scoring.Strategy, publisher Publisher) *Service {
	logger := zerolog.Nop()
	return NewService(
		session.NewStore(logger),
		session.NewTracker(logger),
		scoring.NewCalculator(strategy),
		stats.NewAggregator(logger),
		stats.NewStreakManager(),
		stats.NewExporter(""),
		publisher,
		nil,
		ServiceOptions{DefaultTimeLimit: 30},
		logger,
	)
}

func testChallenge(id string) *challenge.Static {
	return &challenge.Static{
		ChallengeID:   id,
		ChallengeType: "guess_period",
		Animal:        2,
		Level:         3,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestFullSessionFlow(t *testing.T) {
	publisher := &stubPublisher{}
	svc := newTestService(scoring.TimeBased{}, publisher)

	view := svc.StartSession("alice", "")
	assert.True(t, view.Active)
	assert.Equal(t, "alice", view.UserID)
	assert.True(t, svc.IsSessionActive(view.ID))

	_, err := svc.LogChallengeStart(view.ID, testChallenge("ch-1"))
	assert.NoError(t, err)

	outcome, err := svc.CompleteChallenge(view.ID, CompletionRequest{
		ChallengeID: "ch-1",
		IsCorrect:   true,
		TimeTaken:   floatPtr(5),
	})
	assert.NoError(t, err)
	assert.Equal(t, 100, outcome.Result.Score)
	assert.Equal(t, scoring.PerformanceExcellent, outcome.Result.Performance)
	assert.Equal(t, 1, outcome.Streak)
	assert.Equal(t, 100, outcome.SessionTotalScore)

	_, err = svc.LogChallengeStart(view.ID, testChallenge("ch-2"))
	assert.NoError(t, err)

	outcome, err = svc.CompleteChallenge(view.ID, CompletionRequest{
		ChallengeID: "ch-2",
		IsCorrect:   true,
		TimeTaken:   floatPtr(20),
	})
	assert.NoError(t, err)
	assert.Equal(t, 50, outcome.Result.Score)
	assert.Equal(t, 2, outcome.Streak)
	assert.Equal(t, 150, outcome.SessionTotalScore)

	summary, err := svc.EndSession(view.ID)
	assert.NoError(t, err)
	assert.False(t, summary.Active)
	assert.Equal(t, 150, summary.TotalScore)
	assert.Equal(t, 2, summary.ChallengesAttempted)
	assert.False(t, svc.IsSessionActive(view.ID))

	// Session total equals the sum of individual results.
	var sum int
	for _, r := range summary.Scores {
		sum += r.Score
	}
	assert.Equal(t, summary.TotalScore, sum)

	st, ok := svc.UserStats("alice")
	assert.True(t, ok)
	assert.Equal(t, 1, st.TotalSessions)
	assert.Equal(t, 2, st.TotalChallenges)
	assert.Equal(t, 4, st.TotalInteractions) // 2 starts + 2 completions
	assert.Equal(t, 150, st.TotalScore)
	assert.Equal(t, 2, st.BestStreak)
	assert.Equal(t, 75.0, st.AvgScore)

	events := publisher.Events()
	assert.Equal(t, EventSessionStarted, events[0].Type)
	assert.Equal(t, EventSessionEnded, events[len(events)-1].Type)
}

func TestStreakFeedsIntoScoring(t *testing.T) {
	svc := newTestService(scoring.StreakBased{}, nil)

	view := svc.StartSession("alice", "")

	// First correct answer: streak 1, base 50.
	outcome, err := svc.CompleteChallenge(view.ID, CompletionRequest{ChallengeID: "ch-1", IsCorrect: true})
	assert.NoError(t, err)
	assert.Equal(t, 50, outcome.Result.Score)

	// Second: streak reaches 2 before scoring, so the bonus applies.
	outcome, err = svc.CompleteChallenge(view.ID, CompletionRequest{ChallengeID: "ch-2", IsCorrect: true})
	assert.NoError(t, err)
	assert.Equal(t, 2, outcome.Streak)
	assert.Equal(t, 60, outcome.Result.Score)

	// Wrong answer resets the run.
	outcome, err = svc.CompleteChallenge(view.ID, CompletionRequest{ChallengeID: "ch-3", IsCorrect: false})
	assert.NoError(t, err)
	assert.Equal(t, 0, outcome.Streak)
	assert.Equal(t, 0, outcome.Result.Score)
}

func TestCompleteChallengeUsesTrackedDuration(t *testing.T) {
	svc := newTestService(scoring.TimeBased{}, nil)

	view := svc.StartSession("alice", "")
	_, err := svc.LogChallengeStart(view.ID, testChallenge("ch-1"))
	assert.NoError(t, err)

	// No explicit time_taken: elapsed since the start event is near zero, so
	// the fastest tier applies.
	outcome, err := svc.CompleteChallenge(view.ID, CompletionRequest{ChallengeID: "ch-1", IsCorrect: true})
	assert.NoError(t, err)
	assert.Equal(t, 100, outcome.Result.Score)
	assert.GreaterOrEqual(t, outcome.Duration, 0.0)
}

func TestCompleteChallengeCustomTimeLimit(t *testing.T) {
	svc := newTestService(scoring.TimeBased{}, nil)

	view := svc.StartSession("alice", "")

	// 5s of 10s is half the limit: second tier.
	outcome, err := svc.CompleteChallenge(view.ID, CompletionRequest{
		ChallengeID: "ch-1",
		IsCorrect:   true,
		TimeTaken:   floatPtr(5),
		TimeLimit:   floatPtr(10),
	})
	assert.NoError(t, err)
	assert.Equal(t, 75, outcome.Result.Score)
	assert.Equal(t, 10.0, outcome.Result.Context.TimeLimit)
}

func TestIncrementAttemptsAffectsScoring(t *testing.T) {
	svc := newTestService(scoring.AccuracyBased{}, nil)

	view := svc.StartSession("alice", "")
	_, err := svc.LogChallengeStart(view.ID, testChallenge("ch-1"))
	assert.NoError(t, err)

	n, err := svc.IncrementAttempts(view.ID, "ch-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = svc.IncrementAttempts(view.ID, "ch-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	outcome, err := svc.CompleteChallenge(view.ID, CompletionRequest{ChallengeID: "ch-1", IsCorrect: true})
	assert.NoError(t, err)
	assert.Equal(t, 60, outcome.Result.Score)
	assert.Equal(t, 2, outcome.Result.Context.Attempts)
}

func TestUnknownSessionErrors(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.LogChallengeStart("missing", testChallenge("ch-1"))
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = svc.CompleteChallenge("missing", CompletionRequest{ChallengeID: "ch-1", IsCorrect: true})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = svc.IncrementAttempts("missing", "ch-1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	err = svc.LogInteraction("missing", "animal_clicked", nil)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = svc.EndSession("missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = svc.SessionSummary("missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestEndSessionIsIdempotent(t *testing.T) {
	publisher := &stubPublisher{}
	svc := newTestService(nil, publisher)

	view := svc.StartSession("alice", "")
	_, err := svc.CompleteChallenge(view.ID, CompletionRequest{ChallengeID: "ch-1", IsCorrect: true, TimeTaken: floatPtr(5)})
	assert.NoError(t, err)

	first, err := svc.EndSession(view.ID)
	assert.NoError(t, err)
	st, _ := svc.UserStats("alice")
	playTime := st.TotalPlayTime
	totalScore := st.TotalScore

	second, err := svc.EndSession(view.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.Duration, second.Duration)
	assert.Equal(t, first.TotalScore, second.TotalScore)

	// Aggregates are not double-counted and no second ended event is sent.
	st, _ = svc.UserStats("alice")
	assert.Equal(t, playTime, st.TotalPlayTime)
	assert.Equal(t, totalScore, st.TotalScore)
	assert.Equal(t, 1, publisher.CountOf(EventSessionEnded))
}

func TestUserReportAcrossSessions(t *testing.T) {
	svc := newTestService(scoring.TimeBased{}, nil)

	first := svc.StartSession("alice", "")
	_, err := svc.CompleteChallenge(first.ID, CompletionRequest{ChallengeID: "ch-1", IsCorrect: true, TimeTaken: floatPtr(5)})
	assert.NoError(t, err)
	_, err = svc.EndSession(first.ID)
	assert.NoError(t, err)

	second := svc.StartSession("alice", "session-two")
	_, err = svc.CompleteChallenge(second.ID, CompletionRequest{ChallengeID: "ch-2", IsCorrect: true, TimeTaken: floatPtr(20)})
	assert.NoError(t, err)

	report := svc.UserReport("alice")
	assert.Equal(t, 2, report.TotalSessions)
	assert.Len(t, report.Sessions, 2)
	assert.Equal(t, 2, report.TotalInteractions)

	assert.Equal(t, []string{first.ID, "session-two"}, svc.ListUserSessions("alice"))
}

func TestExportAnalytics(t *testing.T) {
	svc := newTestService(scoring.TimeBased{}, nil)

	empty := svc.ExportAnalytics("ghost")
	assert.Equal(t, "ghost", empty.StudentID)
	assert.Empty(t, empty.SessionMetrics)

	view := svc.StartSession("alice", "")
	_, err := svc.CompleteChallenge(view.ID, CompletionRequest{ChallengeID: "ch-1", IsCorrect: true, TimeTaken: floatPtr(5)})
	assert.NoError(t, err)
	_, err = svc.EndSession(view.ID)
	assert.NoError(t, err)

	export := svc.ExportAnalytics("alice")
	assert.Equal(t, stats.DefaultActivityID, export.ActivityID)
	assert.Equal(t, 1, export.SessionMetrics["totalSessions"])
	assert.Equal(t, 100, export.SessionMetrics["totalScore"])
}

func TestConcurrentCompletionsLoseNoInteractions(t *testing.T) {
	svc := newTestService(scoring.TimeBased{}, nil)

	// One user completing challenges across many sessions in parallel.
	const n = 50
	sessionIDs := make([]string, n)
	for i := 0; i < n; i++ {
		sessionIDs[i] = fmt.Sprintf("sess-%d", i)
		svc.StartSession("alice", sessionIDs[i])
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.CompleteChallenge(sessionIDs[i], CompletionRequest{
				ChallengeID: fmt.Sprintf("ch-%d", i),
				IsCorrect:   true,
				TimeTaken:   floatPtr(5),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	st, _ := svc.UserStats("alice")
	assert.Equal(t, n, st.TotalInteractions)
	assert.Equal(t, n, st.TotalSessions)
}

func TestConcurrentCompletionsSameSession(t *testing.T) {
	svc := newTestService(scoring.TimeBased{}, nil)

	view := svc.StartSession("alice", "")

	const n = 40
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.CompleteChallenge(view.ID, CompletionRequest{
				ChallengeID: fmt.Sprintf("ch-%d", i),
				IsCorrect:   true,
				TimeTaken:   floatPtr(5),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	summary, err := svc.SessionSummary(view.ID)
	assert.NoError(t, err)
	assert.Equal(t, n, summary.TotalInteractions)
	assert.Equal(t, n*100, summary.TotalScore)
}
