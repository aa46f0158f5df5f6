package triggers

import (
	"context"
	"log"

	"github.com/vinkla/retouch/internal/assets"
	"github.com/vinkla/retouch/internal/executor"
)

// Descriptor points a consumer at one rendition file.
type Descriptor struct {
	File     string `json:"file"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
}

// Enqueuer registers background conversion work.
type Enqueuer interface {
	Enqueue(ctx context.Context, subjectID int64, sizeKey string, dims executor.Dimensions)
}

// AssetProcessor converts an asset's variant set in place.
type AssetProcessor interface {
	ProcessAsset(meta *assets.Metadata) (bool, error)
}

// Files is the read-only view of local files the triggers need.
type Files interface {
	Size(path string) (int64, error)
}

// Service implements the three upstream triggers. Every method degrades
// gracefully: the worst outcome for a caller is the unconverted original.
type Service struct {
	proc  AssetProcessor
	queue Enqueuer
	files Files
}

func NewService(proc AssetProcessor, queue Enqueuer, files Files) *Service {
	return &Service{
		proc:  proc,
		queue: queue,
		files: files,
	}
}

// ProcessUpload is the upload-time trigger, called synchronously right
// after size-variant generation. It converts in the foreground and returns
// the (possibly mutated) record. Nothing is raised past this boundary.
func (s *Service) ProcessUpload(ctx context.Context, meta *assets.Metadata) *assets.Metadata {
	if meta == nil {
		return nil
	}
	if _, err := s.proc.ProcessAsset(meta); err != nil {
		log.Printf("[triggers] upload-time conversion for subject %d: %v", meta.SubjectID, err)
	}
	return meta
}

// RenderVariant is the read-time trigger. Icons are never converted. When a
// converted file already exists the descriptor is rewritten to it;
// otherwise background work is enqueued and the original comes back
// unchanged.
func (s *Service) RenderVariant(ctx context.Context, d Descriptor, subjectID int64, sizeKey string, isIcon bool) Descriptor {
	if isIcon || d.File == "" {
		return d
	}

	if converted, ok := s.converted(d.File); ok {
		d.File = converted
		d.MimeType = "image/webp"
		return d
	}

	s.queue.Enqueue(ctx, subjectID, sizeKey, executor.Dimensions{Width: d.Width, Height: d.Height})
	return d
}

// RenderSrcset is the srcset-time trigger. Candidates with an existing
// conversion are rewritten; if any candidate is missing one, a single
// consolidated job for the subject is enqueued — all its widths convert
// together.
func (s *Service) RenderSrcset(ctx context.Context, subjectID int64, candidates []Descriptor) []Descriptor {
	needsWork := false

	out := make([]Descriptor, len(candidates))
	for i, d := range candidates {
		out[i] = d
		if d.File == "" {
			continue
		}
		if converted, ok := s.converted(d.File); ok {
			out[i].File = converted
			out[i].MimeType = "image/webp"
		} else {
			needsWork = true
		}
	}

	if needsWork {
		s.queue.Enqueue(ctx, subjectID, "srcset", executor.Dimensions{})
	}

	return out
}

func (s *Service) converted(file string) (string, bool) {
	dst := executor.WebPPath(file)
	if size, err := s.files.Size(dst); err == nil && size > 0 {
		return dst, true
	}
	return "", false
}
