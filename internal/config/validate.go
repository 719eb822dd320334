package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/adapter"
	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// ValidateTarget checks if the target configuration is valid. The adapter
// registry is the single source of truth for which target types exist, so
// an unknown type fails here before any connection is attempted.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil || t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownTargetError{
			Type:      t.Type,
			Available: adapter.ListTargets(),
		}
	}

	return nil
}
