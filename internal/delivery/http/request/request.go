package request

import (
	"time"

	"github.com/user/profile-collector/internal/entity"
)

type SubmitRunRequest struct {
	SearchURL       string `json:"search_url"`
	Force           bool   `json:"force"`
	StagnationLimit *int   `json:"stagnation_limit,omitempty"`
	MaxRecords      *int   `json:"max_records,omitempty"`
	MaxPasses       *int   `json:"max_passes,omitempty"`
	SettleDelayMS   *int64 `json:"settle_delay_ms,omitempty"`
}

// Limits converts the optional overrides to run limits. Absent fields stay
// nil so the service defaults apply.
func (r SubmitRunRequest) Limits() entity.RunLimits {
	l := entity.RunLimits{
		StagnationLimit: r.StagnationLimit,
		MaxRecords:      r.MaxRecords,
		MaxPasses:       r.MaxPasses,
	}
	if r.SettleDelayMS != nil {
		d := time.Duration(*r.SettleDelayMS) * time.Millisecond
		l.SettleDelay = &d
	}
	return l
}
