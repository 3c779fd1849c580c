package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func staticChallenge() *Static {
	return &Static{
		ChallengeID:   "ch-1",
		ChallengeType: "guess_period",
		Animal:        3,
		Level:         2,
		Prompt:        "Is the owl active during the day or at night?",
		Choices:       []string{"day", "night"},
		CorrectAnswer: "night",
	}
}

func TestNewTimedRejectsNonPositiveLimit(t *testing.T) {
	_, err := NewTimed(staticChallenge(), 0)
	assert.ErrorIs(t, err, ErrInvalidTimeLimit)

	_, err = NewTimed(staticChallenge(), -time.Second)
	assert.ErrorIs(t, err, ErrInvalidTimeLimit)
}

func TestTimedOperationsBeforeStart(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), 30*time.Second)
	assert.NoError(t, err)

	_, err = timed.Stop()
	assert.ErrorIs(t, err, ErrTimerNotStarted)
	_, err = timed.Elapsed()
	assert.ErrorIs(t, err, ErrTimerNotStarted)
	_, err = timed.Remaining()
	assert.ErrorIs(t, err, ErrTimerNotStarted)
	_, err = timed.Expired()
	assert.ErrorIs(t, err, ErrTimerNotStarted)
	_, err = timed.TimeBonus()
	assert.ErrorIs(t, err, ErrTimerNotStarted)

	assert.False(t, timed.Running())
	assert.Equal(t, TimeNotStarted, timed.PerformanceLevel())
}

func TestTimedStartStopLifecycle(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), time.Hour)
	assert.NoError(t, err)

	timed.Start()
	assert.True(t, timed.Running())

	elapsed, err := timed.Stop()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	assert.False(t, timed.Running())

	// Elapsed is frozen once stopped.
	again, err := timed.Elapsed()
	assert.NoError(t, err)
	assert.Equal(t, elapsed, again)

	remaining, err := timed.Remaining()
	assert.NoError(t, err)
	assert.LessOrEqual(t, remaining, time.Hour)

	expired, err := timed.Expired()
	assert.NoError(t, err)
	assert.False(t, expired)
}

func TestTimedReset(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), time.Minute)
	assert.NoError(t, err)

	timed.Start()
	_, err = timed.Stop()
	assert.NoError(t, err)

	timed.Reset()
	assert.False(t, timed.Running())
	_, err = timed.Elapsed()
	assert.ErrorIs(t, err, ErrTimerNotStarted)
}

func TestTimedBonusCuts(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), 60*time.Second)
	assert.NoError(t, err)

	cases := []struct {
		taken time.Duration
		want  int
	}{
		{0, 100},
		{15 * time.Second, 100},
		{16 * time.Second, 50},
		{30 * time.Second, 50},
		{45 * time.Second, 25},
		{46 * time.Second, 0},
		{60 * time.Second, 0},
		{90 * time.Second, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, timed.TimeBonusFor(tc.taken), "taken %s", tc.taken)
	}
}

func TestTimedPerformanceWhileRunning(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), time.Hour)
	assert.NoError(t, err)

	timed.Start()
	assert.Equal(t, TimeExcellent, timed.PerformanceLevel())
}

func TestTimedPerformanceTimeout(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), time.Nanosecond)
	assert.NoError(t, err)

	timed.Start()
	time.Sleep(time.Millisecond)
	assert.Equal(t, TimeTimeout, timed.PerformanceLevel())
}

func TestTimedCheckAnswerStopsClock(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), time.Hour)
	assert.NoError(t, err)

	timed.Start()
	assert.True(t, timed.CheckAnswer("night"))
	assert.False(t, timed.Running())
	assert.False(t, timed.CheckAnswer("day"))
}

func TestTimedCheckAnswerVoidsLateAnswer(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), time.Nanosecond)
	assert.NoError(t, err)

	timed.Start()
	time.Sleep(time.Millisecond)

	// Correct content, but past the limit.
	assert.False(t, timed.CheckAnswer("night"))
}

func TestTimedSnapshot(t *testing.T) {
	timed, err := NewTimed(staticChallenge(), 30*time.Second)
	assert.NoError(t, err)

	snap := timed.Snapshot()
	assert.Equal(t, true, snap["timed"])
	assert.Equal(t, 30.0, snap["time_limit"])
	assert.NotContains(t, snap, "elapsed_time")

	timed.Start()
	_, err = timed.Stop()
	assert.NoError(t, err)

	snap = timed.Snapshot()
	assert.Contains(t, snap, "elapsed_time")
	assert.Contains(t, snap, "time_remaining")
	assert.Contains(t, snap, "is_expired")
	assert.Contains(t, snap, "time_performance")
	assert.Contains(t, snap, "time_bonus")
	assert.Equal(t, "ch-1", snap["challenge_id"])
}

func TestStaticCheckAnswer(t *testing.T) {
	ch := staticChallenge()
	assert.True(t, ch.CheckAnswer("night"))
	assert.False(t, ch.CheckAnswer("day"))
	assert.False(t, ch.CheckAnswer(""))
}
