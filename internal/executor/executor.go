package executor

import (
	"errors"
	"fmt"
	"log"

	"github.com/vinkla/retouch/internal/codec"
	"github.com/vinkla/retouch/internal/quality"
)

// Dimensions is the requested rendition size, used only to pick a quality
// tier. Zero values are fine; the policy treats them as thumbnails.
type Dimensions struct {
	Width  int
	Height int
}

var (
	ErrSourceUnreadable  = errors.New("source missing or unreadable")
	ErrAllBackendsFailed = errors.New("all codec backends failed")
)

// Executor runs one conversion: pick a quality, walk the backend chain in
// priority order, validate the output. It never deletes a source file and
// never leaves a partial destination behind on failure.
type Executor struct {
	policy   *quality.Policy
	backends []codec.Backend
	files    FileStore
}

func New(policy *quality.Policy, backends []codec.Backend, files FileStore) *Executor {
	return &Executor{
		policy:   policy,
		backends: backends,
		files:    files,
	}
}

// Convert encodes src into dst as WebP. Each step is a hard gate; errors
// are returned for the caller to log and absorb, nothing panics.
func (e *Executor) Convert(src, dst string, dims Dimensions) error {
	if !e.files.Exists(src) || !e.files.Readable(src) {
		return fmt.Errorf("%w: %s", ErrSourceUnreadable, src)
	}

	q := e.policy.Level(dims.Width, dims.Height)

	if err := e.encode(src, dst, q); err != nil {
		return err
	}

	dstSize, err := e.files.Size(dst)
	if err != nil || dstSize == 0 {
		// A zero-byte artifact is a codec failure; remove it so a retry
		// starts clean.
		if e.files.Exists(dst) {
			_ = e.files.Remove(dst)
		}
		return fmt.Errorf("%w: empty output for %s", ErrAllBackendsFailed, src)
	}

	if srcSize, err := e.files.Size(src); err == nil && srcSize > 0 {
		ratio := 1 - float64(dstSize)/float64(srcSize)
		log.Printf("[executor] converted %s (q=%d, reduced %.1f%%)", src, q, ratio*100)
	}

	return nil
}

func (e *Executor) encode(src, dst string, q int) error {
	for _, b := range e.backends {
		if !b.Available() {
			log.Printf("[executor] backend %s unavailable, trying next", b.Name())
			continue
		}
		if err := b.Encode(src, dst, q); err != nil {
			log.Printf("[executor] backend %s failed for %s: %v", b.Name(), src, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAllBackendsFailed, src)
}
