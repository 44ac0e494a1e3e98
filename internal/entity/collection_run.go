package entity

import "time"

// RunStatus is the lifecycle state of a collection run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// StopReason records why a collection loop reached DONE.
type StopReason string

const (
	StopStagnation StopReason = "stagnation"
	// StopTriggerExhausted is a stagnation stop whose streak still added
	// records, each after a failed trigger.
	StopTriggerExhausted StopReason = "trigger_exhausted"
	StopMaxRecords       StopReason = "max_records"
	StopMaxPasses        StopReason = "max_passes"
	StopTimeBudget       StopReason = "time_budget"
	StopCancelled        StopReason = "cancelled"
	StopInvariant        StopReason = "invariant_violation"
)

// RunLimits are per-run overrides of the collection loop bounds.
// Nil fields fall back to the service defaults.
type RunLimits struct {
	StagnationLimit *int           `json:"stagnation_limit,omitempty"`
	MaxRecords      *int           `json:"max_records,omitempty"`
	MaxPasses       *int           `json:"max_passes,omitempty"`
	SettleDelay     *time.Duration `json:"settle_delay,omitempty"`
}

// CollectionRun mirrors the `collection_runs` PostgreSQL table schema.
type CollectionRun struct {
	ID              string
	SearchURL       string
	Status          RunStatus
	StopReason      StopReason
	Limits          RunLimits // Stored as JSONB in PostgreSQL
	Passes          int
	RecordCount     int
	TriggerFailures int
	FailureReason   string
	SubmittedAt     time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// RunSummary is what a finished collection loop reports back to its run.
type RunSummary struct {
	StopReason      StopReason
	Passes          int
	RecordCount     int
	TriggerFailures int
}
