package executor

import (
	"errors"
	"log"

	"github.com/vinkla/retouch/internal/assets"
	"github.com/vinkla/retouch/internal/pathguard"
)

const webpMime = "image/webp"

// WebPPath is the destination for a converted source: the original name with
// ".webp" appended, so "photo.jpg" sits next to "photo.jpg.webp" and the
// mapping stays reversible.
func WebPPath(src string) string {
	return src + ".webp"
}

// Processor applies conversions to asset variants and rewrites their file
// references. It owns the delete-original policy decision; the Executor
// below it never touches sources.
type Processor struct {
	exec           *Executor
	guard          *pathguard.Guard
	files          FileStore
	deleteOriginal func() bool
}

// NewProcessor builds a Processor. deleteOriginal is read per decision so
// the embedding environment can override it at any time.
func NewProcessor(exec *Executor, guard *pathguard.Guard, files FileStore, deleteOriginal func() bool) *Processor {
	return &Processor{
		exec:           exec,
		guard:          guard,
		files:          files,
		deleteOriginal: deleteOriginal,
	}
}

// ProcessVariant converts a single variant in place. It reports whether the
// variant changed, so callers know if metadata must be written back.
//
// Paths the guard rejects are skipped silently; they are simply not
// applicable. A destination that already exists short-circuits the codec
// entirely, which makes re-entrant calls safe no-ops even when the original
// has since been deleted.
func (p *Processor) ProcessVariant(v *assets.Variant) (bool, error) {
	if v == nil || v.File == "" {
		return false, nil
	}

	dst := WebPPath(v.File)

	if size, err := p.files.Size(dst); err == nil && size > 0 {
		return p.rewrite(v, dst), nil
	}

	if !p.guard.IsConvertible(v.File) {
		return false, nil
	}

	err := p.exec.Convert(v.File, dst, Dimensions{Width: v.Width, Height: v.Height})
	if errors.Is(err, ErrSourceUnreadable) {
		// The file vanished between the guard check and now. A local
		// skip, not a job failure.
		log.Printf("[executor] skipping unreadable source %s", v.File)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	src := v.File
	changed := p.rewrite(v, dst)

	if p.deleteOriginal() {
		if err := p.files.Remove(src); err != nil {
			log.Printf("[executor] could not delete original %s: %v", src, err)
		}
	}

	return changed, nil
}

// ProcessAsset walks the scaled/original variant and every named size. The
// first error per variant is logged by Convert already; processing keeps
// going so one bad rendition does not block the rest. It reports whether
// anything changed.
func (p *Processor) ProcessAsset(meta *assets.Metadata) (bool, error) {
	var changed bool
	var lastErr error

	for _, v := range meta.Variants() {
		c, err := p.ProcessVariant(v)
		if err != nil {
			lastErr = err
			continue
		}
		changed = changed || c
	}

	return changed, lastErr
}

func (p *Processor) rewrite(v *assets.Variant, dst string) bool {
	if v.File == dst && v.MimeType == webpMime {
		return false
	}
	v.File = dst
	v.Format = "webp"
	v.MimeType = webpMime
	return true
}
