package response

import (
	"time"

	"github.com/user/profile-collector/internal/entity"
)

type SubmitRunResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	RunID   string `json:"run_id"`
}

// RunResponse is a DTO for a collection run, mirroring entity.CollectionRun.
type RunResponse struct {
	RunID           string     `json:"run_id"`
	SearchURL       string     `json:"search_url"`
	Status          string     `json:"status"` // "pending", "running", "completed", "failed"
	StopReason      string     `json:"stop_reason,omitempty"`
	Passes          int        `json:"passes"`
	RecordCount     int        `json:"record_count"`
	TriggerFailures int        `json:"trigger_failures"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

func NewRunResponse(run *entity.CollectionRun) RunResponse {
	return RunResponse{
		RunID:           run.ID,
		SearchURL:       run.SearchURL,
		Status:          string(run.Status),
		StopReason:      string(run.StopReason),
		Passes:          run.Passes,
		RecordCount:     run.RecordCount,
		TriggerFailures: run.TriggerFailures,
		FailureReason:   run.FailureReason,
		SubmittedAt:     run.SubmittedAt,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
}

type ProfilesResponse struct {
	RunID    string                 `json:"run_id"`
	Count    int                    `json:"count"`
	Profiles []entity.ProfileRecord `json:"profiles"`
}
