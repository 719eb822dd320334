// Package tester validates declared data-quality constraints against a live
// warehouse connection.
//
// The pipeline is: synthesize a scalar-returning statement for each declared
// constraint (pkg/query), execute it over a scoped connection handle, and
// interpret the returned count as pass/fail (zero violations passes). A
// SchemaTester walks every discovered schema declaration, skips disabled
// models, and isolates per-constraint failures so a single bad check never
// aborts the run.
package tester

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapcheck/pkg/adapter"
	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// ModelCompiler supplies per-model configuration; disabled models are
// skipped entirely.
type ModelCompiler interface {
	GetModelConfig(group, name string) core.ModelConfig
}

// Observer receives each field- or reference-level check outcome as it is
// produced. Used by the CLI to record run history; nil means no recording.
type Observer func(core.CheckResult)

// SchemaTester drives constraint validation against one warehouse target.
type SchemaTester struct {
	adapter  adapter.Adapter
	schema   string
	rep      *Reporter
	observer Observer
	logger   *slog.Logger
}

// New creates a SchemaTester. The adapter must already be connected.
// schemaName is the warehouse schema validated tables live in. Progress
// lines stream to out; if logger is nil, a discard logger is used.
func New(ad adapter.Adapter, schemaName string, out io.Writer, logger *slog.Logger) *SchemaTester {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SchemaTester{
		adapter: ad,
		schema:  schemaName,
		rep:     NewReporter(out),
		logger:  logger,
	}
}

// SetObserver installs a check-outcome observer.
func (t *SchemaTester) SetObserver(obs Observer) {
	t.observer = obs
}

// executeScalar runs a synthesized validation statement and returns its
// single scalar result, the violation count.
//
// A scoped handle and result cursor are acquired per call and released on
// every exit path. Handle acquisition failure is infrastructure failure and
// returns a plain error; statement failure and result-shape violations
// return a *CheckError tagged with the model.
func (t *SchemaTester) executeScalar(ctx context.Context, model core.ModelID, stmt string) (int64, error) {
	handle, err := t.adapter.Handle(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire warehouse handle: %w", err)
	}
	defer func() { _ = handle.Close() }()

	t.logger.Debug("executing validation query", "model", model.String(), "sql", stmt)

	rows, err := handle.QueryContext(ctx, stmt)
	if err != nil {
		return 0, &CheckError{Model: model, Message: fmt.Sprintf("query failed: %v", err), Err: err}
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, &CheckError{Model: model, Message: fmt.Sprintf("query failed: %v", err), Err: err}
		}
		return 0, newCheckError(model, "unexpected validation result: expected 1 record, got 0")
	}

	cols, err := rows.Columns()
	if err != nil {
		return 0, &CheckError{Model: model, Message: fmt.Sprintf("failed to read result columns: %v", err), Err: err}
	}
	if len(cols) != 1 {
		// A multi-column result is a statement synthesis bug, never "zero
		// violations".
		return 0, newCheckError(model, "unexpected validation result: expected 1 column, got %d", len(cols))
	}

	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, &CheckError{Model: model, Message: fmt.Sprintf("failed to scan validation result: %v", err), Err: err}
	}

	return count, nil
}

// observe forwards one check outcome to the observer, if any.
func (t *SchemaTester) observe(model core.ModelID, constraint core.ConstraintType, subject string, status core.CheckStatus, violations int64, errMsg string) {
	if t.observer == nil {
		return
	}
	t.observer(core.CheckResult{
		Model:      model,
		Constraint: constraint,
		Subject:    subject,
		Status:     status,
		Violations: violations,
		Error:      errMsg,
		CheckedAt:  time.Now().UTC(),
	})
}

// reportCount emits the pass/fail line for a completed check and forwards
// the outcome to the observer.
func (t *SchemaTester) reportCount(model core.ModelID, constraint core.ConstraintType, subject string, count int64) {
	if count == 0 {
		t.rep.OK()
		t.observe(model, constraint, subject, core.CheckStatusPass, 0, "")
		return
	}
	t.rep.Failed(count)
	t.observe(model, constraint, subject, core.CheckStatusFail, count, "")
}
