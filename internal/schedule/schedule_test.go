package schedule

import (
	"testing"
	"time"
)

func TestCalcNextRun_Every(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	job := &Job{ScheduleType: ScheduleEvery, Schedule: "5m"}

	next, err := calcNextRun(job, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := now.Add(5 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestCalcNextRun_Every_Invalid(t *testing.T) {
	job := &Job{ScheduleType: ScheduleEvery, Schedule: "bad"}
	if _, err := calcNextRun(job, time.Now()); err == nil {
		t.Fatal("expected error for invalid duration")
	}

	job = &Job{ScheduleType: ScheduleEvery, Schedule: "-5m"}
	if _, err := calcNextRun(job, time.Now()); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestCalcNextRun_Cron(t *testing.T) {
	// "0 9 * * *" = daily at 09:00
	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	job := &Job{ScheduleType: ScheduleCron, Schedule: "0 9 * * *"}

	next, err := calcNextRun(job, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestCalcNextRun_At_Future(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	job := &Job{ScheduleType: ScheduleAt, Schedule: "2026-02-01T09:00:00Z"}

	next, err := calcNextRun(job, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestCalcNextRun_At_Past(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	job := &Job{ScheduleType: ScheduleAt, Schedule: "2026-02-01T09:00:00Z"}

	next, err := calcNextRun(job, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.IsZero() {
		t.Errorf("expected zero time for past one-shot, got %v", next)
	}
}

func TestCalcNextRun_UnknownType(t *testing.T) {
	job := &Job{ScheduleType: "hourly", Schedule: "1h"}
	if _, err := calcNextRun(job, time.Now()); err == nil {
		t.Fatal("expected error for unknown schedule type")
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		consecutiveErr int
		want           time.Duration
	}{
		{0, 30 * time.Second},
		{1, 30 * time.Second},
		{2, 1 * time.Minute},
		{3, 5 * time.Minute},
		{4, 15 * time.Minute},
		{5, 60 * time.Minute},
		{100, 60 * time.Minute}, // capped
	}
	for _, tt := range tests {
		got := backoffDelay(tt.consecutiveErr)
		if got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.consecutiveErr, got, tt.want)
		}
	}
}

func TestJobValidate(t *testing.T) {
	valid := Job{ID: "j1", ChannelID: "tg", Action: "send", ScheduleType: ScheduleEvery, Schedule: "5m"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}

	tests := []struct {
		name string
		job  Job
	}{
		{"missing id", Job{ChannelID: "tg", Action: "send", ScheduleType: ScheduleEvery, Schedule: "5m"}},
		{"missing channel", Job{ID: "j1", Action: "send", ScheduleType: ScheduleEvery, Schedule: "5m"}},
		{"missing action", Job{ID: "j1", ChannelID: "tg", ScheduleType: ScheduleEvery, Schedule: "5m"}},
		{"missing schedule", Job{ID: "j1", ChannelID: "tg", Action: "send", ScheduleType: ScheduleEvery}},
		{"unknown type", Job{ID: "j1", ChannelID: "tg", Action: "send", ScheduleType: "sometimes", Schedule: "5m"}},
	}
	for _, tt := range tests {
		if err := tt.job.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
