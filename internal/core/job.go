package core

import "time"

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Request selects which stages a job runs and which source files stage one
// picks up. Zero values mean "from the first stage", "to the last stage" and
// "every file".
type Request struct {
	StartStage  int      `json:"start_stage,omitempty"`
	EndStage    int      `json:"end_stage,omitempty"`
	TargetFiles []string `json:"target_files,omitempty"`
}

// Job is a snapshot of one pipeline run.
type Job struct {
	ID              string     `json:"job_id"`
	Status          Status     `json:"status"`
	CurrentStage    string     `json:"current_stage,omitempty"`
	Message         string     `json:"message,omitempty"`
	Messages        []string   `json:"messages,omitempty"`
	CancelRequested bool       `json:"cancel_requested"`
	ResultsURL      string     `json:"results_url,omitempty"`
	ResultsFile     string     `json:"results_file,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	Request         Request    `json:"request"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// clone returns a copy that shares no slices with j.
func (j Job) clone() Job {
	j.Messages = append([]string(nil), j.Messages...)
	j.Request.TargetFiles = append([]string(nil), j.Request.TargetFiles...)
	return j
}

// Job status messages.
const (
	msgPending   = "waiting for the pipeline to start"
	msgBusy      = "another pipeline run is in progress; this job was not started"
	msgCancelAck = "cancellation requested; stopping after the current step"
	msgCancelled = "pipeline cancelled by request"
	msgCompleted = "pipeline completed"
	msgFailed    = "pipeline failed"
)
