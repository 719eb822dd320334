package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcheck/internal/cli/config"
	intconfig "github.com/leapstack-labs/leapcheck/internal/config"
	"github.com/leapstack-labs/leapcheck/internal/state"
	"github.com/leapstack-labs/leapcheck/internal/tester"
	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// TestOptions holds options for the test command.
type TestOptions struct {
	NoHistory bool
}

// NewTestCommand creates the test command.
func NewTestCommand() *cobra.Command {
	opts := &TestOptions{}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run declared data-quality checks against the target",
		Long: `Validate every constraint declared in the discovered schema.yml files
against the configured warehouse target.

Each constraint is compiled to a SQL check and executed; a check passes
when it finds zero violating rows. Failing or erroring checks are
reported and the run continues; the command exits non-zero if any check
did not pass.`,
		Example: `  # Run all checks against the default target
  leapcheck test

  # Run against the prod environment's target
  leapcheck test --target prod

  # Run without recording run history
  leapcheck test --no-history`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTest(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Skip recording the run in the state database")

	return cmd
}

func runTest(cmd *cobra.Command, opts *TestOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	startTime := time.Now()

	groups, err := discoverSchemas(cfg, logger)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintf(out, "No schema.yml files found under %v\n", cfg.SourcePaths)
		return nil
	}

	comp := newCompiler(cfg, logger)

	ad, err := connectAdapter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ad.Close() }()

	var store *state.SQLiteStore
	var run *core.Run
	if !opts.NoHistory {
		store, err = openStateStore(cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		run, err = store.CreateRun(cfg.Environment)
		if err != nil {
			return err
		}
	}

	st := tester.New(ad, schemaName(cfg), out, logger)

	var passed, failed, errored int
	st.SetObserver(func(r core.CheckResult) {
		switch r.Status {
		case core.CheckStatusPass:
			passed++
		case core.CheckStatusFail:
			failed++
		case core.CheckStatusError:
			errored++
		}
		if store != nil {
			r.RunID = run.ID
			if err := store.RecordCheck(&r); err != nil {
				logger.Warn("failed to record check", "error", err)
			}
		}
	})

	var validated int
	for model, err := range st.Test(ctx, groups, comp) {
		if err != nil {
			if store != nil {
				_ = store.CompleteRun(run.ID, core.RunStatusFailed, err.Error())
			}
			return err
		}
		logger.Debug("constraint group validated", "model", model.String())
		validated++
	}

	runStatus := core.RunStatusCompleted
	if failed > 0 || errored > 0 {
		runStatus = core.RunStatusFailed
	}
	if store != nil {
		if err := store.CompleteRun(run.ID, runStatus, ""); err != nil {
			logger.Warn("failed to complete run", "error", err)
		}
	}

	printSummary(cmd, validated, passed, failed, errored, time.Since(startTime))
	if run != nil {
		fmt.Fprintf(out, "Run %s: %s\n", run.ID, runStatus)
	}

	if failed > 0 || errored > 0 {
		return fmt.Errorf("%d checks failed, %d errored", failed, errored)
	}
	return nil
}

// schemaName resolves the warehouse schema checks run against.
func schemaName(cfg *config.Config) string {
	if cfg.Target == nil {
		return intconfig.DefaultSchemaForType("")
	}
	if cfg.Target.Schema != "" {
		return cfg.Target.Schema
	}
	return intconfig.DefaultSchemaForType(cfg.Target.Type)
}

func printSummary(cmd *cobra.Command, validated, passed, failed, errored int, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Groups Validated", "Passed", "Failed", "Errored"})
	t.AppendRow(table.Row{validated, passed, failed, errored})
	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "Completed in %s\n", elapsed.Round(time.Millisecond))
}
