// Package commands implements the leapcheck subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapcheck/internal/cli/config"
	"github.com/leapstack-labs/leapcheck/internal/compiler"
	"github.com/leapstack-labs/leapcheck/internal/schema"
	"github.com/leapstack-labs/leapcheck/internal/state"
	"github.com/leapstack-labs/leapcheck/pkg/adapter"
	"github.com/leapstack-labs/leapcheck/pkg/core"

	// Register the built-in warehouse adapters.
	_ "github.com/leapstack-labs/leapcheck/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapcheck/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapcheck/pkg/adapters/redshift"
)

// getConfig returns the current configuration.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		SourcePaths: config.DefaultSourcePaths,
		StatePath:   config.DefaultStateFile,
		Environment: config.DefaultEnv,
	}
}

// discoverSchemas walks the configured source paths for schema.yml files.
func discoverSchemas(cfg *config.Config, logger *slog.Logger) ([]*core.GroupSchemas, error) {
	repo := schema.NewRepository(logger)
	groups, err := repo.Discover(cfg.ProjectRoot, cfg.SourcePaths)
	if err != nil {
		return nil, fmt.Errorf("failed to discover schemas: %w", err)
	}
	return groups, nil
}

// newCompiler builds the model compiler from project overrides.
func newCompiler(cfg *config.Config, logger *slog.Logger) *compiler.Compiler {
	return compiler.New(cfg.Models, logger)
}

// connectAdapter creates and connects the adapter for the configured
// target. The caller owns the returned adapter and must Close it.
func connectAdapter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (adapter.Adapter, error) {
	adapterCfg := core.AdapterConfigFromTarget(cfg.Target)

	ad, err := adapter.NewAdapter(adapterCfg, logger)
	if err != nil {
		return nil, err
	}

	if err := ad.Connect(ctx, adapterCfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s target: %w", adapterCfg.Type, err)
	}
	return ad, nil
}

// openStateStore opens the run-history database, creating its directory
// and applying migrations.
func openStateStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
