package schedule

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleType defines how a job's execution time is determined.
type ScheduleType string

const (
	// ScheduleEvery runs at a fixed interval (Go duration string, e.g. "5m", "1h30m").
	ScheduleEvery ScheduleType = "every"
	// ScheduleCron uses a standard 5-field cron expression.
	ScheduleCron ScheduleType = "cron"
	// ScheduleAt fires once at a specific ISO 8601 timestamp.
	ScheduleAt ScheduleType = "at"
)

// Job describes one scheduled channel action. Params is the raw parameter
// bag handed to the channel dispatcher on every firing, exactly as an
// immediate request would carry it.
type Job struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	ChannelID    string                 `json:"channel_id"`
	AccountID    string                 `json:"account_id,omitempty"`
	Action       string                 `json:"action"`
	Params       map[string]interface{} `json:"params,omitempty"`
	ScheduleType ScheduleType           `json:"schedule_type"`
	Schedule     string                 `json:"schedule"` // "5m" | "0 9 * * *" | "2026-03-01T09:00:00Z"
	Enabled      bool                   `json:"enabled"`

	// --- runtime state ---
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	ConsecutiveErr int        `json:"consecutive_err,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Validate checks the fields a job needs before it can be scheduled. The
// schedule expression itself is checked by the first next-run calculation.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("job id is required")
	}
	if strings.TrimSpace(j.ChannelID) == "" {
		return fmt.Errorf("job %s: channel_id is required", j.ID)
	}
	if strings.TrimSpace(j.Action) == "" {
		return fmt.Errorf("job %s: action is required", j.ID)
	}
	if strings.TrimSpace(j.Schedule) == "" {
		return fmt.Errorf("job %s: schedule is required", j.ID)
	}
	switch j.ScheduleType {
	case ScheduleEvery, ScheduleCron, ScheduleAt:
	default:
		return fmt.Errorf("job %s: unknown schedule type: %s", j.ID, j.ScheduleType)
	}
	return nil
}
