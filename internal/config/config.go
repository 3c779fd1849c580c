package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-analytics"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Gameplay Gameplay
	Scoring  Scoring
	CORS     CORS
}

// Gameplay groups challenge tracking defaults.
type Gameplay struct {
	DefaultTimeLimit   time.Duration `env:"DEFAULT_CHALLENGE_TIME_LIMIT" envDefault:"30s"`
	ActivityID         string        `env:"ANALYTICS_ACTIVITY_ID" envDefault:"dia-noite-animals"`
	EventQueueCapacity int           `env:"SESSION_EVENT_QUEUE_CAPACITY" envDefault:"256"`
}

// Scoring selects the active scoring strategy and composite weights.
//
// Strategy is one of: time_based, accuracy_based, streak_based,
// difficulty_based, composite. When composite is selected the weights must
// sum to 1.0 (within tolerance); a zero weight leaves that component out.
type Scoring struct {
	Strategy         string  `env:"SCORING_STRATEGY" envDefault:"time_based"`
	TimeWeight       float64 `env:"SCORING_TIME_WEIGHT" envDefault:"0.4"`
	AccuracyWeight   float64 `env:"SCORING_ACCURACY_WEIGHT" envDefault:"0.3"`
	StreakWeight     float64 `env:"SCORING_STREAK_WEIGHT" envDefault:"0.2"`
	DifficultyWeight float64 `env:"SCORING_DIFFICULTY_WEIGHT" envDefault:"0.1"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
