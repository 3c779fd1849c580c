package scoring

import "sync"

// breakdowner is satisfied by composite strategies.
type breakdowner interface {
	Breakdown(ctx Context) Breakdown
}

// Calculator holds the active strategy and produces score results. The
// strategy can be swapped at runtime; swaps affect only subsequent
// calculations, never results already produced.
type Calculator struct {
	mu       sync.RWMutex
	strategy Strategy
}

// NewCalculator creates a calculator. A nil strategy selects the time-based
// default.
func NewCalculator(strategy Strategy) *Calculator {
	if strategy == nil {
		strategy = TimeBased{}
	}
	return &Calculator{strategy: strategy}
}

// SetStrategy replaces the active strategy.
func (c *Calculator) SetStrategy(strategy Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy
}

// Strategy returns the active strategy.
func (c *Calculator) Strategy() Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

// Calculate scores the context with the active strategy.
func (c *Calculator) Calculate(ctx Context) int {
	return c.Strategy().Score(ctx)
}

// PerformanceLevel scores the context and maps the result to a label, using
// the strategy's own mapping when it provides one.
func (c *Calculator) PerformanceLevel(ctx Context) string {
	strategy := c.Strategy()
	return performanceFor(strategy, strategy.Score(ctx))
}

// DetailedResult produces the full score record. The breakdown is attached
// only when the active strategy exposes one.
func (c *Calculator) DetailedResult(ctx Context) Result {
	strategy := c.Strategy()
	score := strategy.Score(ctx)

	result := Result{
		Score:       score,
		Performance: performanceFor(strategy, score),
		Strategy:    strategy.Name(),
		Context:     ctx,
	}

	if composite, ok := strategy.(breakdowner); ok {
		b := composite.Breakdown(ctx)
		result.Breakdown = &b
	}
	return result
}

func performanceFor(strategy Strategy, score int) string {
	if leveler, ok := strategy.(PerformanceLeveler); ok {
		return leveler.PerformanceLevel(score)
	}
	return PerformanceLevel(score)
}
