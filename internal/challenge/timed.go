package challenge

import (
	"errors"
	"math"
	"sync"
	"time"
)

var (
	// ErrTimerNotStarted is returned by timer operations that need a start
	// instant before one was recorded.
	ErrTimerNotStarted = errors.New("timer not started")
	// ErrInvalidTimeLimit is returned when a timed challenge is built with a
	// non-positive limit.
	ErrInvalidTimeLimit = errors.New("time limit must be positive")
)

// Timer performance labels. The regular excellent/good/fair set is shared
// with scoring; timeout and slow only exist for timing.
const (
	TimeNotStarted = "not_started"
	TimeTimeout    = "timeout"
	TimeExcellent  = "excellent"
	TimeGood       = "good"
	TimeFair       = "fair"
	TimeSlow       = "slow"
)

// Timed decorates a challenge with an elapsed-time measurement and a time
// limit. The wrapped interface is preserved: untimed operations forward to
// the inner challenge, answer checks additionally stop the clock and void
// late answers.
type Timed struct {
	Challenge

	limit time.Duration

	mu        sync.Mutex
	startedAt time.Time
	stoppedAt time.Time
}

// NewTimed wraps a challenge with a time limit.
func NewTimed(inner Challenge, limit time.Duration) (*Timed, error) {
	if limit <= 0 {
		return nil, ErrInvalidTimeLimit
	}
	return &Timed{Challenge: inner, limit: limit}, nil
}

// Limit returns the configured time limit.
func (t *Timed) Limit() time.Duration { return t.limit }

// Start records the start instant. Restarting simply resets the clock and
// clears any previous stop instant.
func (t *Timed) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Now()
	t.stoppedAt = time.Time{}
}

// Stop records the end instant and returns the elapsed time.
func (t *Timed) Stop() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startedAt.IsZero() {
		return 0, ErrTimerNotStarted
	}
	t.stoppedAt = time.Now()
	return t.stoppedAt.Sub(t.startedAt), nil
}

// Elapsed returns stop-start if stopped, else the running time so far.
func (t *Timed) Elapsed() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Timed) elapsedLocked() (time.Duration, error) {
	if t.startedAt.IsZero() {
		return 0, ErrTimerNotStarted
	}
	if !t.stoppedAt.IsZero() {
		return t.stoppedAt.Sub(t.startedAt), nil
	}
	return time.Since(t.startedAt), nil
}

// Remaining returns how much of the limit is left, never negative.
func (t *Timed) Remaining() (time.Duration, error) {
	elapsed, err := t.Elapsed()
	if err != nil {
		return 0, err
	}
	remaining := t.limit - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Expired reports whether the elapsed time reached the limit.
func (t *Timed) Expired() (bool, error) {
	elapsed, err := t.Elapsed()
	if err != nil {
		return false, err
	}
	return elapsed >= t.limit, nil
}

// Running reports whether the timer was started and not yet stopped.
func (t *Timed) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.startedAt.IsZero() && t.stoppedAt.IsZero()
}

// Reset clears both instants so the challenge can be retried.
func (t *Timed) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Time{}
	t.stoppedAt = time.Time{}
}

// TimeBonus computes the speed bonus from the measured elapsed time.
func (t *Timed) TimeBonus() (int, error) {
	elapsed, err := t.Elapsed()
	if err != nil {
		return 0, err
	}
	return t.TimeBonusFor(elapsed), nil
}

// TimeBonusFor computes the speed bonus for an explicit time taken: 100 for
// finishing within a quarter of the limit, 50 within half, 25 within three
// quarters, otherwise 0. At or past the limit there is no bonus.
func (t *Timed) TimeBonusFor(taken time.Duration) int {
	if taken >= t.limit {
		return 0
	}
	used := float64(taken) / float64(t.limit)
	switch {
	case used <= 0.25:
		return 100
	case used <= 0.50:
		return 50
	case used <= 0.75:
		return 25
	default:
		return 0
	}
}

// PerformanceLevel labels the timing so far. Unlike the other timer
// operations this never fails: an unstarted timer reports not_started.
func (t *Timed) PerformanceLevel() string {
	elapsed, err := t.Elapsed()
	if err != nil {
		return TimeNotStarted
	}

	used := float64(elapsed) / float64(t.limit)
	switch {
	case used > 1.0:
		return TimeTimeout
	case used <= 0.25:
		return TimeExcellent
	case used <= 0.50:
		return TimeGood
	case used <= 0.75:
		return TimeFair
	default:
		return TimeSlow
	}
}

// CheckAnswer stops a running timer and validates the answer through the
// wrapped challenge. A late answer is never correct, whatever its content.
func (t *Timed) CheckAnswer(answer string) bool {
	if t.Running() {
		if _, err := t.Stop(); err != nil {
			return false
		}
	}

	if expired, err := t.Expired(); err == nil && expired {
		return false
	}

	return t.Challenge.CheckAnswer(answer)
}

// Snapshot extends the wrapped snapshot with timing state.
func (t *Timed) Snapshot() map[string]interface{} {
	data := t.Challenge.Snapshot()
	data["timed"] = true
	data["time_limit"] = t.limit.Seconds()

	elapsed, err := t.Elapsed()
	if err != nil {
		return data
	}

	data["elapsed_time"] = round2(elapsed.Seconds())
	if remaining, err := t.Remaining(); err == nil {
		data["time_remaining"] = round2(remaining.Seconds())
	}
	if expired, err := t.Expired(); err == nil {
		data["is_expired"] = expired
	}
	data["time_performance"] = t.PerformanceLevel()

	t.mu.Lock()
	stopped := !t.stoppedAt.IsZero()
	t.mu.Unlock()
	if stopped {
		data["time_bonus"] = t.TimeBonusFor(elapsed)
	}
	return data
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
