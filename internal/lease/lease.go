package lease

import (
	"context"
	"fmt"
	"time"
)

// Key identifies one unit of conversion work: a subject and one of its
// renditions. Locking is per key; there is no ordering across keys.
type Key struct {
	SubjectID int64
	SizeKey   string
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s", k.SubjectID, k.SizeKey)
}

// Store is the key/value-with-expiry capability behind the manager. The
// production implementation is Redis; tests use an in-memory store with a
// simulated clock.
type Store interface {
	// Exists reports whether a non-expired record is present.
	Exists(ctx context.Context, key string) (bool, error)
	// SetIfAbsent writes value with a TTL only when no live record exists,
	// atomically where the backing store supports it.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Manager hands out per-key leases marking conversion work as in progress.
// The lease is advisory: callers check InProgress before Acquire, and the
// small race between the two is accepted because conversion is idempotent.
// A crashed job leaves a lease that self-expires after the TTL, so no
// reaper is needed.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Acquire marks key as in progress, recording the acquisition time. The
// write is insert-if-absent: a live holder is not displaced, and the
// returned bool reports whether the caller took the lease. A caller that
// did not take it must not release it either.
func (m *Manager) Acquire(ctx context.Context, key Key) (bool, error) {
	stamp := m.now().UTC().Format(time.RFC3339)
	ok, err := m.store.SetIfAbsent(ctx, key.String(), stamp, m.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	return ok, nil
}

// InProgress reports whether a non-expired lease exists for key.
func (m *Manager) InProgress(ctx context.Context, key Key) bool {
	ok, err := m.store.Exists(ctx, key.String())
	if err != nil {
		// A store we cannot reach means we cannot prove anyone holds the
		// lease; report not-in-progress and let idempotence cover the rest.
		return false
	}
	return ok
}

// Release deletes the lease unconditionally. It runs on success and failure
// paths alike so a failed job never blocks future retries.
func (m *Manager) Release(ctx context.Context, key Key) {
	_ = m.store.Delete(ctx, key.String())
}
