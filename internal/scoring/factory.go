package scoring

import "fmt"

// CompositeWeights configures the default composite built from the four
// bundled strategies. A zero weight leaves that component out.
type CompositeWeights struct {
	Time       float64
	Accuracy   float64
	Streak     float64
	Difficulty float64
}

// NewStrategy resolves a strategy by name. The composite name builds the
// standard four-way composite from the supplied weights.
func NewStrategy(name string, weights CompositeWeights) (Strategy, error) {
	switch name {
	case StrategyTimeBased:
		return TimeBased{}, nil
	case StrategyAccuracyBased:
		return AccuracyBased{}, nil
	case StrategyStreakBased:
		return StreakBased{}, nil
	case StrategyDifficultyBased:
		return DifficultyBased{}, nil
	case StrategyComposite:
		var components []WeightedStrategy
		if weights.Time > 0 {
			components = append(components, WeightedStrategy{TimeBased{}, weights.Time})
		}
		if weights.Accuracy > 0 {
			components = append(components, WeightedStrategy{AccuracyBased{}, weights.Accuracy})
		}
		if weights.Streak > 0 {
			components = append(components, WeightedStrategy{StreakBased{}, weights.Streak})
		}
		if weights.Difficulty > 0 {
			components = append(components, WeightedStrategy{DifficultyBased{}, weights.Difficulty})
		}
		return NewComposite(components)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
