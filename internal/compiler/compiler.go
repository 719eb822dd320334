// Package compiler resolves per-model configuration for a validation run.
//
// Models are enabled by default; the project configuration can disable them
// individually or per group via the models: section of leapcheck.yaml:
//
//	models:
//	  staging/stg_users:
//	    enabled: false
//	  legacy:
//	    enabled: false
package compiler

import (
	"log/slog"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// Override is a per-model or per-group configuration override.
type Override struct {
	Enabled *bool `koanf:"enabled"`
}

// Compiler resolves model configuration from project overrides.
type Compiler struct {
	overrides map[string]Override
	logger    *slog.Logger
}

// New creates a compiler from the project's model overrides. Keys address
// either a single model ("group/name") or a whole group ("group").
// If logger is nil, a discard logger is used.
func New(overrides map[string]Override, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{overrides: overrides, logger: logger}
}

// GetModelConfig returns the effective configuration for a model.
// Precedence: exact "group/name" override, then group override, then the
// enabled-by-default baseline.
func (c *Compiler) GetModelConfig(group, name string) core.ModelConfig {
	cfg := core.ModelConfig{Enabled: true}

	if o, ok := c.overrides[group]; ok && o.Enabled != nil {
		cfg.Enabled = *o.Enabled
	}

	id := core.ModelID{Group: group, Name: name}
	if o, ok := c.overrides[id.String()]; ok && o.Enabled != nil {
		cfg.Enabled = *o.Enabled
	}

	if !cfg.Enabled {
		c.logger.Debug("model disabled by configuration", "model", id.String())
	}

	return cfg
}
