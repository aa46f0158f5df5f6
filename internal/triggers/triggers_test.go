package triggers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinkla/retouch/internal/assets"
	"github.com/vinkla/retouch/internal/executor"
)

type fakeProcessor struct {
	err   error
	calls int
}

func (p *fakeProcessor) ProcessAsset(meta *assets.Metadata) (bool, error) {
	p.calls++
	if p.err != nil {
		return false, p.err
	}
	for _, v := range meta.Variants() {
		v.File = executor.WebPPath(v.File)
		v.MimeType = "image/webp"
	}
	return true, nil
}

type enqueueCall struct {
	subjectID int64
	sizeKey   string
}

type fakeEnqueuer struct {
	calls []enqueueCall
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, subjectID int64, sizeKey string, _ executor.Dimensions) {
	e.calls = append(e.calls, enqueueCall{subjectID, sizeKey})
}

type fakeFiles struct {
	sizes map[string]int64
}

func (f *fakeFiles) Size(path string) (int64, error) {
	if size, ok := f.sizes[path]; ok {
		return size, nil
	}
	return 0, errors.New("no such file")
}

func newTestService() (*Service, *fakeProcessor, *fakeEnqueuer, *fakeFiles) {
	proc := &fakeProcessor{}
	queue := &fakeEnqueuer{}
	files := &fakeFiles{sizes: make(map[string]int64)}
	return NewService(proc, queue, files), proc, queue, files
}

func TestProcessUpload(t *testing.T) {
	svc, proc, _, _ := newTestService()
	meta := &assets.Metadata{
		SubjectID: 42,
		Scaled:    &assets.Variant{File: "uploads/a.jpg"},
	}

	got := svc.ProcessUpload(context.Background(), meta)
	assert.Same(t, meta, got)
	assert.Equal(t, 1, proc.calls)
	assert.Equal(t, "uploads/a.jpg.webp", got.Scaled.File)
}

func TestProcessUploadAbsorbsFailure(t *testing.T) {
	svc, proc, _, _ := newTestService()
	proc.err = errors.New("codec exploded")
	meta := &assets.Metadata{SubjectID: 42}

	got := svc.ProcessUpload(context.Background(), meta)
	assert.Same(t, meta, got, "the record always comes back, converted or not")
}

func TestProcessUploadNil(t *testing.T) {
	svc, _, _, _ := newTestService()
	assert.Nil(t, svc.ProcessUpload(context.Background(), nil))
}

func TestRenderVariantServesExistingConversion(t *testing.T) {
	svc, _, queue, files := newTestService()
	files.sizes["uploads/a.jpg.webp"] = 1234

	d := svc.RenderVariant(context.Background(), Descriptor{File: "uploads/a.jpg", Width: 800, Height: 600}, 42, "medium", false)
	assert.Equal(t, "uploads/a.jpg.webp", d.File)
	assert.Equal(t, "image/webp", d.MimeType)
	assert.Empty(t, queue.calls)
}

func TestRenderVariantEnqueuesAndDegrades(t *testing.T) {
	svc, _, queue, _ := newTestService()

	orig := Descriptor{File: "uploads/a.jpg", Width: 800, Height: 600, MimeType: "image/jpeg"}
	d := svc.RenderVariant(context.Background(), orig, 42, "medium", false)
	assert.Equal(t, orig, d, "the original descriptor comes back unchanged")
	assert.Equal(t, []enqueueCall{{42, "medium"}}, queue.calls)
}

func TestRenderVariantSkipsIcons(t *testing.T) {
	svc, _, queue, _ := newTestService()

	orig := Descriptor{File: "uploads/icon.png"}
	d := svc.RenderVariant(context.Background(), orig, 42, "icon", true)
	assert.Equal(t, orig, d)
	assert.Empty(t, queue.calls)
}

func TestRenderSrcset(t *testing.T) {
	svc, _, queue, files := newTestService()
	files.sizes["uploads/a-300.jpg.webp"] = 100

	in := []Descriptor{
		{File: "uploads/a-300.jpg", Width: 300},
		{File: "uploads/a-600.jpg", Width: 600},
	}
	out := svc.RenderSrcset(context.Background(), 42, in)

	assert.Equal(t, "uploads/a-300.jpg.webp", out[0].File)
	assert.Equal(t, "uploads/a-600.jpg", out[1].File)
	// One consolidated job per subject, regardless of how many widths
	// still need converting.
	assert.Equal(t, []enqueueCall{{42, "srcset"}}, queue.calls)
}

func TestRenderSrcsetAllConverted(t *testing.T) {
	svc, _, queue, files := newTestService()
	files.sizes["uploads/a-300.jpg.webp"] = 100
	files.sizes["uploads/a-600.jpg.webp"] = 100

	out := svc.RenderSrcset(context.Background(), 42, []Descriptor{
		{File: "uploads/a-300.jpg"},
		{File: "uploads/a-600.jpg"},
	})
	assert.Equal(t, "uploads/a-300.jpg.webp", out[0].File)
	assert.Equal(t, "uploads/a-600.jpg.webp", out[1].File)
	assert.Empty(t, queue.calls)
}
