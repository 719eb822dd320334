// Package config provides configuration management for the leapcheck CLI.
//
// The shared target type lives in pkg/core and is re-exported here via a
// type alias so command code does not need to import pkg/core directly.
package config

import (
	"github.com/leapstack-labs/leapcheck/internal/compiler"
	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	SourcePaths  []string                     `koanf:"source_paths"`
	StatePath    string                       `koanf:"state_path"`
	Environment  string                       `koanf:"environment"`
	Verbose      bool                         `koanf:"verbose"`
	Target       *TargetConfig                `koanf:"target"`
	Models       map[string]compiler.Override `koanf:"models"`
	Environments map[string]EnvConfig         `koanf:"environments"`

	// ProjectRoot is the directory all relative paths resolve against.
	// Determined at load time, never read from the config file.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	SourcePaths []string      `koanf:"source_paths"`
	Target      *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultStateFile = ".leapcheck/state.db"
	DefaultEnv       = "dev"
)

// DefaultSourcePaths is where schema.yml files are searched when the
// project does not configure source_paths.
var DefaultSourcePaths = []string{"models"}
