package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDataWarmup loads the dashboard payload into the cache.
	TaskDataWarmup = "opsboard:data:warmup"
	// TaskDataRefresh invalidates cached payloads and reloads them.
	TaskDataRefresh = "opsboard:data:refresh"
)

// WarmupPayload describes why a warm-up was scheduled.
type WarmupPayload struct {
	Reason string `json:"reason"`
}

// RefreshPayload describes a requested cache refresh.
type RefreshPayload struct {
	RequestedAt time.Time `json:"requested_at"`
	RequestID   string    `json:"request_id,omitempty"`
}

// NewWarmupTask constructs a warm-up task.
func NewWarmupTask(reason string) (*asynq.Task, error) {
	if reason == "" {
		reason = "scheduled"
	}
	data, err := json.Marshal(WarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDataWarmup, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewRefreshTask constructs a refresh task with a unique id so repeated
// clicks do not collapse into one another.
func NewRefreshTask(payload RefreshPayload) (*asynq.Task, error) {
	if payload.RequestedAt.IsZero() {
		payload.RequestedAt = time.Now().UTC()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDataRefresh, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(2),
		asynq.TaskID(uuid.NewString()),
	), nil
}

// TaskByName builds a task from its short CLI name ("warmup" or "refresh").
func TaskByName(name string) (*asynq.Task, bool, error) {
	switch name {
	case "warmup", TaskDataWarmup:
		task, err := NewWarmupTask("manual")
		return task, true, err
	case "refresh", TaskDataRefresh:
		task, err := NewRefreshTask(RefreshPayload{})
		return task, true, err
	default:
		return nil, false, nil
	}
}
