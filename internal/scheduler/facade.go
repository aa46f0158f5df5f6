package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"

	"github.com/vinkla/retouch/internal/admission"
	"github.com/vinkla/retouch/internal/assets"
	"github.com/vinkla/retouch/internal/executor"
	"github.com/vinkla/retouch/internal/lease"
)

// Facade ties admission control, leasing and the conversion pipeline to the
// external scheduler. Enqueue is the only way work enters the queue; Run is
// the only thing the scheduler calls back into.
type Facade struct {
	queue     Queue
	admission *admission.Controller
	leases    *lease.Manager
	store     assets.Store
	proc      *executor.Processor
	delay     time.Duration
}

func NewFacade(queue Queue, adm *admission.Controller, leases *lease.Manager, store assets.Store, proc *executor.Processor, delay time.Duration) *Facade {
	return &Facade{
		queue:     queue,
		admission: adm,
		leases:    leases,
		store:     store,
		proc:      proc,
		delay:     delay,
	}
}

// Enqueue registers a one-shot background conversion with a minimal delay,
// keeping it off the synchronous path. Refusals are silent no-ops: over the
// ceiling, already scheduled, or already running. The image stays
// unconverted until a future trigger re-requests it.
func (f *Facade) Enqueue(ctx context.Context, subjectID int64, sizeKey string, dims executor.Dimensions) {
	if !f.admission.CanEnqueue(ctx) {
		return
	}
	if f.admission.IsDuplicate(ctx, subjectID, sizeKey) {
		return
	}
	if f.leases.InProgress(ctx, lease.Key{SubjectID: subjectID, SizeKey: sizeKey}) {
		return
	}

	p := ConvertPayload{
		SubjectID: subjectID,
		SizeKey:   sizeKey,
		Width:     dims.Width,
		Height:    dims.Height,
	}
	if err := f.queue.EnqueueIn(ctx, p, f.delay); err != nil {
		log.Printf("[scheduler] enqueue subject=%d size=%s failed: %v", subjectID, sizeKey, err)
	}
}

// Run is the job entry point invoked by the external scheduler. It takes
// the lease, loads metadata, runs the variant processors and writes
// metadata back only when something changed. A lease we could not take
// means another worker holds the key: the job backs off without touching
// the holder's lease. A lease we did take is released unconditionally,
// including the early exit when metadata cannot load.
func (f *Facade) Run(ctx context.Context, p ConvertPayload) error {
	key := lease.Key{SubjectID: p.SubjectID, SizeKey: p.SizeKey}

	acquired, err := f.leases.Acquire(ctx, key)
	if err != nil {
		return err
	}
	if !acquired {
		log.Printf("[scheduler] subject %d size %s already in progress, skipping", p.SubjectID, p.SizeKey)
		return nil
	}
	defer f.leases.Release(ctx, key)

	meta, err := f.store.Load(ctx, p.SubjectID)
	if err != nil {
		log.Printf("[scheduler] metadata load failed for subject %d: %v", p.SubjectID, err)
		return fmt.Errorf("load metadata: %w", err)
	}

	changed, convErr := f.process(meta, p)
	if convErr != nil {
		sentry.CaptureException(convErr)
		log.Printf("[scheduler] conversion failed for subject %d size %s: %v", p.SubjectID, p.SizeKey, convErr)
	}

	if changed {
		if err := f.store.Save(ctx, meta); err != nil {
			return fmt.Errorf("save metadata: %w", err)
		}
	}

	return convErr
}

// process picks the processing scope from the size key: the srcset
// pseudo-size batch-converts the whole variant set, a named size converts
// just that rendition, and "scaled" targets the scaled/original file.
func (f *Facade) process(meta *assets.Metadata, p ConvertPayload) (bool, error) {
	switch p.SizeKey {
	case SizeKeySrcset:
		return f.proc.ProcessAsset(meta)
	case "scaled", "full":
		return f.proc.ProcessVariant(meta.Scaled)
	default:
		if v, ok := meta.Sizes[p.SizeKey]; ok {
			return f.proc.ProcessVariant(v)
		}
		log.Printf("[scheduler] subject %d has no size %q, converting full set", p.SubjectID, p.SizeKey)
		return f.proc.ProcessAsset(meta)
	}
}

// ProcessTask adapts Run to the asynq handler contract.
func (f *Facade) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p ConvertPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	return f.Run(ctx, p)
}
