package model

import "time"

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// StageMetrics represents metrics for a specific pipeline stage
type StageMetrics struct {
	StageName        string        `json:"stage_name"`
	Source           string        `json:"source,omitempty"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int64         `json:"records_processed"`
	Status           string        `json:"status"`
	Error            string        `json:"error,omitempty"`
}

// RunRecord is the persisted history entry for one refresh.
type RunRecord struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Countries  int            `json:"countries"`
	Dates      int            `json:"dates"`
	Error      string         `json:"error,omitempty"`
	Stages     []StageMetrics `json:"stages,omitempty"`
}
