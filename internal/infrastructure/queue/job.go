package queue

import "time"

type JobType string

const (
	JobDeleteFile JobType = "delete_file"
)

// Triggers label why a deletion job was enqueued.
const (
	TriggerImmediate = "immediate"
	TriggerScheduled = "scheduled"
	TriggerShutdown  = "shutdown"
	TriggerSweep     = "sweep"
)

type Job struct {
	Type       JobType   `json:"type"`
	Path       string    `json:"path"`
	Trigger    string    `json:"trigger"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewDeleteJob(path, trigger string) Job {
	return Job{
		Type:       JobDeleteFile,
		Path:       path,
		Trigger:    trigger,
		EnqueuedAt: time.Now(),
	}
}
