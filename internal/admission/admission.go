package admission

import (
	"context"
	"log"
)

// Queue is the view of the external scheduler the controller needs: how
// much of our work is registered but not yet run, and whether an equivalent
// job is already waiting.
type Queue interface {
	// PendingCount sums, across all scheduled run-times, the entries
	// registered under this system's job type. Duplicates all count.
	PendingCount(ctx context.Context) (int, error)
	HasPending(ctx context.Context, subjectID int64, sizeKey string) (bool, error)
}

// Controller enforces the admission ceiling on scheduled-but-not-run jobs.
// The ceiling is soft: two borderline callers racing between count and
// insert can transiently exceed it, which is accepted. Refused work is
// silently dropped; a later natural trigger re-requests it.
type Controller struct {
	queue      Queue
	maxPending int
}

func NewController(queue Queue, maxPending int) *Controller {
	return &Controller{
		queue:      queue,
		maxPending: maxPending,
	}
}

// CanEnqueue reports whether a new job may be registered. A queue we cannot
// count is treated as full; refusing is always safe here.
func (c *Controller) CanEnqueue(ctx context.Context) bool {
	n, err := c.queue.PendingCount(ctx)
	if err != nil {
		log.Printf("[admission] pending count failed: %v", err)
		return false
	}
	return n < c.maxPending
}

// IsDuplicate reports whether an equivalent job is already scheduled for a
// future run. This suppresses duplicate scheduling; duplicate execution is
// the lease manager's job.
func (c *Controller) IsDuplicate(ctx context.Context, subjectID int64, sizeKey string) bool {
	ok, err := c.queue.HasPending(ctx, subjectID, sizeKey)
	if err != nil {
		log.Printf("[admission] duplicate check failed: %v", err)
		return false
	}
	return ok
}
