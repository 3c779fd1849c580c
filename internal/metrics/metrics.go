package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the prometheus collectors for session tracking.
type Metrics struct {
	SessionsStarted     prometheus.Counter
	SessionsEnded       prometheus.Counter
	ChallengesStarted   prometheus.Counter
	ChallengesCompleted *prometheus.CounterVec
	Interactions        prometheus.Counter
	ChallengeScores     prometheus.Histogram
	ChallengeDuration   prometheus.Histogram
}

// New creates and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "sessions",
			Name:      "started_total",
			Help:      "Number of sessions started.",
		}),
		SessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "sessions",
			Name:      "ended_total",
			Help:      "Number of sessions ended.",
		}),
		ChallengesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "challenges",
			Name:      "started_total",
			Help:      "Number of challenges started inside sessions.",
		}),
		ChallengesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "challenges",
			Name:      "completed_total",
			Help:      "Number of challenges completed, by outcome.",
		}, []string{"outcome"}),
		Interactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "sessions",
			Name:      "interactions_total",
			Help:      "Number of interactions logged across all sessions.",
		}),
		ChallengeScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quiz",
			Subsystem: "challenges",
			Name:      "score",
			Help:      "Distribution of per-challenge scores.",
			Buckets:   []float64{0, 25, 50, 60, 70, 80, 90, 100},
		}),
		ChallengeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quiz",
			Subsystem: "challenges",
			Name:      "duration_seconds",
			Help:      "Time spent per challenge, start to completion.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	reg.MustRegister(
		m.SessionsStarted,
		m.SessionsEnded,
		m.ChallengesStarted,
		m.ChallengesCompleted,
		m.Interactions,
		m.ChallengeScores,
		m.ChallengeDuration,
	)
	return m
}

// RecordCompletion updates the completion counters for one answered challenge.
func (m *Metrics) RecordCompletion(isCorrect bool, score int, durationSeconds float64) {
	outcome := "incorrect"
	if isCorrect {
		outcome = "correct"
	}
	m.ChallengesCompleted.WithLabelValues(outcome).Inc()
	m.ChallengeScores.Observe(float64(score))
	if durationSeconds > 0 {
		m.ChallengeDuration.Observe(durationSeconds)
	}
}
