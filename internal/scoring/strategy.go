package scoring

import "errors"

// Performance level labels derived from a numeric score.
const (
	PerformanceExcellent = "excellent"
	PerformanceGood      = "good"
	PerformanceFair      = "fair"
	PerformancePoor      = "poor"
)

// Strategy name constants.
const (
	StrategyTimeBased       = "time_based"
	StrategyAccuracyBased   = "accuracy_based"
	StrategyStreakBased     = "streak_based"
	StrategyDifficultyBased = "difficulty_based"
	StrategyComposite       = "composite"
)

var (
	// ErrInvalidWeights is returned when composite weights do not sum to 1.0.
	ErrInvalidWeights = errors.New("composite weights must sum to 1.0")
	// ErrUnknownStrategy is returned when a strategy name is not recognized.
	ErrUnknownStrategy = errors.New("unknown scoring strategy")
)

// Context carries the inputs a strategy may consult. Missing numeric fields
// fall back to defaults (time limit 30s, 1 attempt, difficulty 3) the same
// way on every strategy.
type Context struct {
	TimeTaken  float64 `json:"time_taken"`
	TimeLimit  float64 `json:"time_limit"`
	IsCorrect  bool    `json:"is_correct"`
	Attempts   int     `json:"attempts"`
	Difficulty int     `json:"difficulty"`
	Streak     int     `json:"streak"`
}

const (
	defaultTimeLimit  = 30.0
	defaultAttempts   = 1
	defaultDifficulty = 3
)

func (c Context) withDefaults() Context {
	if c.TimeLimit == 0 {
		c.TimeLimit = defaultTimeLimit
	}
	if c.Attempts == 0 {
		c.Attempts = defaultAttempts
	}
	if c.Difficulty == 0 {
		c.Difficulty = defaultDifficulty
	}
	return c
}

// Strategy is a single scoring algorithm. Implementations are pure: no shared
// state, no side effects, output in [0, 100].
type Strategy interface {
	Score(ctx Context) int
	Name() string
}

// PerformanceLeveler lets a strategy override the default score-to-label
// mapping.
type PerformanceLeveler interface {
	PerformanceLevel(score int) string
}

// PerformanceLevel maps a score to the shared default label set.
func PerformanceLevel(score int) string {
	switch {
	case score >= 90:
		return PerformanceExcellent
	case score >= 70:
		return PerformanceGood
	case score >= 50:
		return PerformanceFair
	default:
		return PerformancePoor
	}
}

// Result is the record produced for one scored completion. Breakdown is only
// present when the active strategy was a composite.
type Result struct {
	Score       int        `json:"score"`
	Performance string     `json:"performance"`
	Strategy    string     `json:"strategy"`
	Context     Context    `json:"context"`
	Breakdown   *Breakdown `json:"breakdown,omitempty"`
}

// Breakdown details how a composite total was assembled, components in
// construction order.
type Breakdown struct {
	TotalScore int         `json:"total_score"`
	Components []Component `json:"components"`
}

// Component is one strategy's contribution to a composite score.
type Component struct {
	Strategy      string  `json:"strategy"`
	Score         int     `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
}
