package problemgen

import (
	"os"
	"strconv"
)

// Config controls the behavior of the Generator.
type Config struct {
	// Strategy selects direct or planned generation.
	Strategy Strategy

	// MaxTokens is the token budget for one problem completion.
	MaxTokens int

	// Temperature controls output randomness for problem completions.
	Temperature float64

	// PlanMaxTokens is the token budget for the theme plan.
	PlanMaxTokens int

	// PlanTemperature is higher than Temperature to spread themes out.
	PlanTemperature float64

	// FollowUpMaxTokens is the token budget for follow-up answers.
	FollowUpMaxTokens int

	// MaxPriorProblems caps how many earlier problems of the batch are
	// listed in each prompt to steer away from repeats. Zero disables it.
	MaxPriorProblems int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:          StrategyDirect,
		MaxTokens:         1200,
		Temperature:       0.7,
		PlanMaxTokens:     400,
		PlanTemperature:   0.9,
		FollowUpMaxTokens: 1000,
		MaxPriorProblems:  5,
	}
}

// ConfigFromEnv overlays MATHMASTER_STRATEGY and MATHMASTER_TEMPERATURE on
// the defaults. Invalid values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if s, ok := ParseStrategy(os.Getenv("MATHMASTER_STRATEGY")); ok {
		cfg.Strategy = s
	}
	if t, err := strconv.ParseFloat(os.Getenv("MATHMASTER_TEMPERATURE"), 64); err == nil && t >= 0 && t <= 2 {
		cfg.Temperature = t
	}
	return cfg
}
