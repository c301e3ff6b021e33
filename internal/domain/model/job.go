package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobTimedOut  JobStatus = "timed_out"
)

// AsyncJob tracks one background exec invocation. Value semantics: mutation
// methods return a copy, the registry holds the authoritative version.
type AsyncJob struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ChannelID  string    `json:"channel_id"`
	Intent     Intent    `json:"intent"`
	Status     JobStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Result     Result    `json:"result,omitempty"`
}

// NewAsyncJob assigns a short random ID; eight hex chars is plenty for the
// handful of jobs alive at once and keeps chat output readable.
func NewAsyncJob(userID, channelID string, intent Intent) AsyncJob {
	return AsyncJob{
		ID:        uuid.NewString()[:8],
		UserID:    userID,
		ChannelID: channelID,
		Intent:    intent,
		Status:    JobRunning,
		StartedAt: time.Now().UTC(),
	}
}

func (j AsyncJob) WithResult(r Result) AsyncJob {
	j.FinishedAt = time.Now().UTC()
	j.Result = r
	switch {
	case r.OK() || r.Status == ResultPartialFailure:
		j.Status = JobCompleted
	case r.Kind == ErrTimeout:
		j.Status = JobTimedOut
	default:
		j.Status = JobFailed
	}
	return j
}

func (j AsyncJob) Done() bool { return j.Status != JobRunning }

// Duration reports elapsed run time, live or final.
func (j AsyncJob) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
