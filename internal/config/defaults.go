// Package config provides target configuration defaults and validation
// shared by the CLI and any embedding tool.
package config

import "github.com/leapstack-labs/leapcheck/pkg/core"

// Default ports per target type.
const (
	DefaultRedshiftPort = 5439
	DefaultPostgresPort = 5432
)

// DefaultSchemaForType returns the default schema for a target type.
func DefaultSchemaForType(targetType string) string {
	if targetType == "duckdb" {
		return "main"
	}
	return "public"
}

// ApplyTargetDefaults fills in type-specific defaults on a TargetConfig.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	switch t.Type {
	case "redshift":
		if t.Port == 0 {
			t.Port = DefaultRedshiftPort
		}
	case "postgres":
		if t.Port == 0 {
			t.Port = DefaultPostgresPort
		}
	case "duckdb":
		if t.Path == "" {
			t.Path = ":memory:"
		}
	}
}
