package scoring

// TimeBased rewards fast answers. An answer at or past the limit scores zero;
// the timeout boundary is inclusive of failure.
type TimeBased struct{}

func (TimeBased) Score(ctx Context) int {
	ctx = ctx.withDefaults()
	if !ctx.IsCorrect {
		return 0
	}
	if ctx.TimeTaken >= ctx.TimeLimit {
		return 0
	}

	used := ctx.TimeTaken / ctx.TimeLimit
	switch {
	case used <= 0.25:
		return 100
	case used <= 0.50:
		return 75
	case used <= 0.75:
		return 50
	default:
		return 25
	}
}

func (TimeBased) Name() string { return StrategyTimeBased }

// AccuracyBased rewards solving on the first attempt and penalizes retries.
type AccuracyBased struct{}

func (AccuracyBased) Score(ctx Context) int {
	ctx = ctx.withDefaults()
	if !ctx.IsCorrect {
		return 0
	}

	switch ctx.Attempts {
	case 1:
		return 100
	case 2:
		return 60
	case 3:
		return 30
	default:
		return 0
	}
}

func (AccuracyBased) Name() string { return StrategyAccuracyBased }

// StreakBased rewards consistency: 50 base points for a correct answer plus a
// bonus that grows with the run of consecutive correct answers, capped at 100.
type StreakBased struct{}

func (StreakBased) Score(ctx Context) int {
	if !ctx.IsCorrect {
		return 0
	}

	const base = 50
	var bonus int
	switch {
	case ctx.Streak >= 10:
		bonus = 50
	case ctx.Streak >= 6:
		bonus = 30
	case ctx.Streak >= 4:
		bonus = 20
	case ctx.Streak >= 2:
		bonus = 10
	}

	score := base + bonus
	if score > 100 {
		score = 100
	}
	return score
}

func (StreakBased) Name() string { return StrategyStreakBased }

// DifficultyBased scales the reward with the challenge difficulty (1-5).
// Out-of-range difficulties fall back to the level-3 reward.
type DifficultyBased struct{}

var difficultyScores = map[int]int{
	1: 40,
	2: 60,
	3: 80,
	4: 90,
	5: 100,
}

func (DifficultyBased) Score(ctx Context) int {
	ctx = ctx.withDefaults()
	if !ctx.IsCorrect {
		return 0
	}

	if score, ok := difficultyScores[ctx.Difficulty]; ok {
		return score
	}
	return 80
}

func (DifficultyBased) Name() string { return StrategyDifficultyBased }
