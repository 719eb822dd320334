package core

import "time"

// RunStatus represents the status of a validation run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one validation session recorded in the state store.
type Run struct {
	ID          string
	Environment string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// CheckStatus is the recorded outcome of a single constraint check.
type CheckStatus string

// Check status constants.
const (
	CheckStatusPass  CheckStatus = "pass"
	CheckStatusFail  CheckStatus = "fail"
	CheckStatusError CheckStatus = "error"
)

// CheckResult records one field- or reference-level check outcome.
// Violations is meaningful for pass/fail; Error carries the message for
// errored checks.
type CheckResult struct {
	ID         string
	RunID      string
	Model      ModelID
	Constraint ConstraintType
	Subject    string // field name, or "from -> to.field" for references
	Status     CheckStatus
	Violations int64
	Error      string
	CheckedAt  time.Time
}

// Store defines the run-history persistence interface.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(env string) (*Run, error)
	GetRun(id string) (*Run, error)
	GetLatestRun(env string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error

	RecordCheck(result *CheckResult) error
	GetChecksForRun(runID string) ([]*CheckResult, error)
}
