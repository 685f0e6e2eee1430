package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/pkg/utils"
)

// Store-level helpers for the CLI. They operate on the persisted job file
// directly, without starting a scheduling loop; a running gateway loads
// the store at startup and will not see changes until restarted.

// LoadJobsFromStore reads all persisted jobs.
func LoadJobsFromStore(cfg config.ScheduleConfig) ([]Job, error) {
	st := NewStore(resolveStorePath(cfg.Store))
	if err := st.Load(); err != nil {
		return nil, err
	}
	return st.List(), nil
}

// AddJobToStore validates job, computes its first run, and persists it.
func AddJobToStore(cfg config.ScheduleConfig, job Job) error {
	s := NewScheduler(cfg, nil)
	if err := s.store.Load(); err != nil {
		return fmt.Errorf("load job store: %w", err)
	}
	return s.AddJob(job, true)
}

// RemoveJobFromStore deletes one persisted job by ID.
func RemoveJobFromStore(cfg config.ScheduleConfig, jobID string) error {
	st := NewStore(resolveStorePath(cfg.Store))
	if err := st.Load(); err != nil {
		return fmt.Errorf("load job store: %w", err)
	}
	if _, ok := st.Get(jobID); !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}
	st.Remove(jobID)
	return st.Save()
}

// FormatJobList renders jobs for terminal output, one block per job.
func FormatJobList(jobs []Job) string {
	if len(jobs) == 0 {
		return "No scheduled jobs.\n"
	}

	var b strings.Builder
	for _, j := range jobs {
		state := "enabled"
		if !j.Enabled {
			state = "disabled"
		}

		target := j.ChannelID
		if j.AccountID != "" {
			target += " (account " + j.AccountID + ")"
		}

		fmt.Fprintf(&b, "%s  %s\n", j.ID, j.Name)
		fmt.Fprintf(&b, "  channel:  %s\n", target)
		fmt.Fprintf(&b, "  action:   %s\n", j.Action)
		fmt.Fprintf(&b, "  schedule: %s %q, %s\n", j.ScheduleType, j.Schedule, state)
		if j.NextRunAt != nil {
			fmt.Fprintf(&b, "  next run: %s\n", j.NextRunAt.Format(time.RFC3339))
		}
		if j.LastRunAt != nil {
			fmt.Fprintf(&b, "  last run: %s\n", j.LastRunAt.Format(time.RFC3339))
		}
		if j.ConsecutiveErr > 0 {
			fmt.Fprintf(&b, "  errors:   %d consecutive\n", j.ConsecutiveErr)
		}
		if len(j.Params) > 0 {
			raw, _ := sonic.MarshalString(j.Params)
			fmt.Fprintf(&b, "  params:   %s\n", utils.Truncate80(raw))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d job(s) total.\n", len(jobs))
	return b.String()
}
