package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KESTREL_CONFIG is set
//  3. env (prefix KESTREL_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("KESTREL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: KESTREL_ADDR, KESTREL_WORKER_COUNT, ...
	// Double underscores mark nesting: KESTREL_INTELLIGENCE__TRENDS__MAX_TOPICS.
	envProvider := env.Provider("KESTREL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "kestrel_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate performs basic range checks. The pipeline itself degrades
// gracefully on odd tunables; these checks guard the service surface.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.IntakeQueueSize < 1:
		return fmt.Errorf("%w: intake_queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DefaultMaxItems < 1:
		return fmt.Errorf("%w: default_max_items must be positive", ErrInvalidConfig)
	}
	if d := c.Intelligence.Trends.BaselineDecay; d <= 0 || d >= 1 {
		return fmt.Errorf("%w: trends baseline_decay must be in (0,1)", ErrInvalidConfig)
	}
	return nil
}
