package scoring

import (
	"fmt"
	"math"
	"strings"
)

// weightTolerance absorbs float error when validating the weight sum.
const weightTolerance = 0.01

// WeightedStrategy pairs a strategy with its share of the composite total.
type WeightedStrategy struct {
	Strategy Strategy
	Weight   float64
}

// Composite combines multiple strategies into one weighted score. Component
// order is the construction order and is preserved in breakdowns.
type Composite struct {
	components []WeightedStrategy
}

// NewComposite validates that the weights sum to 1.0 (within tolerance)
// before any scoring call can happen.
func NewComposite(components []WeightedStrategy) (*Composite, error) {
	var total float64
	for _, c := range components {
		total += c.Weight
	}
	if math.Abs(total-1.0) > weightTolerance {
		return nil, fmt.Errorf("%w: got %.3f", ErrInvalidWeights, total)
	}
	return &Composite{components: components}, nil
}

// Score returns the weighted sum of the component scores, rounded to the
// nearest integer.
func (c *Composite) Score(ctx Context) int {
	var total float64
	for _, comp := range c.components {
		total += float64(comp.Strategy.Score(ctx)) * comp.Weight
	}
	return int(math.Round(total))
}

// Name joins the component names, e.g. composite(time_based+streak_based).
func (c *Composite) Name() string {
	names := make([]string, len(c.components))
	for i, comp := range c.components {
		names[i] = comp.Strategy.Name()
	}
	return fmt.Sprintf("composite(%s)", strings.Join(names, "+"))
}

// Breakdown reports the total plus each component's raw score, weight, and
// weighted contribution.
func (c *Composite) Breakdown(ctx Context) Breakdown {
	b := Breakdown{
		TotalScore: c.Score(ctx),
		Components: make([]Component, 0, len(c.components)),
	}
	for _, comp := range c.components {
		score := comp.Strategy.Score(ctx)
		b.Components = append(b.Components, Component{
			Strategy:      comp.Strategy.Name(),
			Score:         score,
			Weight:        comp.Weight,
			WeightedScore: float64(score) * comp.Weight,
		})
	}
	return b
}
