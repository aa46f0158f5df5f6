package redisholder

import (
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Holder keeps the live redis client behind an atomic swap so the health
// loop can replace a dead connection without coordinating with readers.
// Lease checks and queue inspection always read through Get and never see
// a half-closed client.
type Holder struct {
	v atomic.Value // stores redis.UniversalClient
}

func NewHolder(initial redis.UniversalClient) *Holder {
	h := &Holder{}
	h.v.Store(initial)
	return h
}

// Get returns the current client. It may be nil before the first Store.
func (h *Holder) Get() redis.UniversalClient {
	c, _ := h.v.Load().(redis.UniversalClient)
	return c
}

// Replace installs a fresh client and closes the one it displaces. In-flight
// calls on the old client finish on their own; go-redis tolerates Close
// racing with commands.
func (h *Holder) Replace(fresh redis.UniversalClient) {
	old, _ := h.v.Load().(redis.UniversalClient)
	h.v.Store(fresh)
	if old != nil {
		_ = old.Close()
	}
}

func (h *Holder) Close() error {
	if c := h.Get(); c != nil {
		return c.Close()
	}
	return nil
}
