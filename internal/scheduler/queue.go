package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Queue is the boundary to the external task scheduler: register a one-shot
// job no earlier than now+delay, and inspect what is already registered.
type Queue interface {
	EnqueueIn(ctx context.Context, p ConvertPayload, delay time.Duration) error
	PendingCount(ctx context.Context) (int, error)
	HasPending(ctx context.Context, subjectID int64, sizeKey string) (bool, error)
}

// AsynqQueue implements Queue on asynq. Tasks carry MaxRetry 0: this core
// never retries a failed job, a future natural trigger re-requests it.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

func NewAsynqQueue(client *asynq.Client, inspector *asynq.Inspector, queue string) *AsynqQueue {
	return &AsynqQueue{
		client:    client,
		inspector: inspector,
		queue:     queue,
	}
}

func (q *AsynqQueue) EnqueueIn(ctx context.Context, p ConvertPayload, delay time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal convert payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeConvert, raw)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.queue),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// PendingCount counts this system's scheduled-but-not-run entries: tasks
// waiting for their run time plus tasks already runnable but not started.
func (q *AsynqQueue) PendingCount(ctx context.Context) (int, error) {
	count := 0
	err := q.walkWaiting(func(t *asynq.TaskInfo) { count++ })
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (q *AsynqQueue) HasPending(ctx context.Context, subjectID int64, sizeKey string) (bool, error) {
	found := false
	err := q.walkWaiting(func(t *asynq.TaskInfo) {
		var p ConvertPayload
		if json.Unmarshal(t.Payload, &p) != nil {
			return
		}
		if p.SubjectID == subjectID && p.SizeKey == sizeKey {
			found = true
		}
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (q *AsynqQueue) walkWaiting(visit func(*asynq.TaskInfo)) error {
	scheduled, err := q.inspector.ListScheduledTasks(q.queue, asynq.PageSize(200))
	if err != nil {
		return fmt.Errorf("list scheduled tasks: %w", err)
	}
	pending, err := q.inspector.ListPendingTasks(q.queue, asynq.PageSize(200))
	if err != nil {
		return fmt.Errorf("list pending tasks: %w", err)
	}

	for _, t := range append(scheduled, pending...) {
		if t.Type != TaskTypeConvert {
			continue
		}
		visit(t)
	}
	return nil
}
