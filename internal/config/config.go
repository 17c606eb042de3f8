// Package config loads fsrsched settings from flags, environment and an
// optional YAML file.
package config

import (
	"github.com/conorfennell/fsrsched/internal/fsrs"
)

// Config is the full application configuration.
type Config struct {
	DB       string     `koanf:"db" validate:"required"`
	ReposDir string     `koanf:"repos_dir" validate:"required"`
	Log      LogConfig  `koanf:"log"`
	FSRS     FSRSConfig `koanf:"fsrs"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// FSRSConfig mirrors fsrs.Parameters in config-friendly types.
type FSRSConfig struct {
	RequestRetention float64   `koanf:"request_retention" validate:"gt=0,lt=1"`
	MaximumInterval  int32     `koanf:"maximum_interval" validate:"gte=1"`
	Weights          []float64 `koanf:"weights" validate:"omitempty,weights"`
	Model            string    `koanf:"model" validate:"omitempty,model"`
	ShortTerm        bool      `koanf:"short_term"`
	Fuzz             bool      `koanf:"fuzz"`
	Seed             string    `koanf:"seed"`
}

// Parameters builds validated scheduler parameters. An empty weight list
// selects the defaults of the configured model.
func (c *Config) Parameters() (fsrs.Parameters, error) {
	opts := []fsrs.Option{
		fsrs.WithRequestRetention(c.FSRS.RequestRetention),
		fsrs.WithMaximumInterval(c.FSRS.MaximumInterval),
		fsrs.WithShortTerm(c.FSRS.ShortTerm),
		fsrs.WithFuzz(c.FSRS.Fuzz),
		fsrs.WithSeed(c.FSRS.Seed),
	}
	if c.FSRS.Model != "" {
		m, err := fsrs.ParseModel(c.FSRS.Model)
		if err != nil {
			return fsrs.Parameters{}, err
		}
		opts = append(opts, fsrs.WithModel(m))
	}
	if len(c.FSRS.Weights) > 0 {
		opts = append(opts, fsrs.WithWeights(c.FSRS.Weights...))
	}
	return fsrs.NewParameters(opts...)
}
