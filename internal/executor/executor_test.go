package executor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinkla/retouch/internal/codec"
	"github.com/vinkla/retouch/internal/config"
	"github.com/vinkla/retouch/internal/quality"
)

// fakeBackend stands in for a codec with controllable availability and
// failure modes.
type fakeBackend struct {
	name      string
	available bool
	fail      bool
	payload   []byte
	calls     int
}

func (b *fakeBackend) Name() string    { return b.name }
func (b *fakeBackend) Available() bool { return b.available }

func (b *fakeBackend) Encode(srcPath, dstPath string, quality int) error {
	b.calls++
	if b.fail {
		return errors.New("decode failure")
	}
	return os.WriteFile(dstPath, b.payload, 0o644)
}

func testPolicy() *quality.Policy {
	return quality.NewPolicy(config.QualityConfig{
		Thumbnail: 95, Small: 90, Medium: 85, Large: 80, ThumbnailMax: 150,
	})
}

func newTestExecutor(backends ...codec.Backend) *Executor {
	return New(testPolicy(), backends, OSFileStore{})
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("source-bytes-source-bytes"), 0o644))
	return path
}

func TestConvertPrimarySucceeds(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.jpg")
	dst := filepath.Join(dir, "a.jpg.webp")

	primary := &fakeBackend{name: "primary", available: true, payload: []byte("webp")}
	secondary := &fakeBackend{name: "secondary", available: true, payload: []byte("webp")}

	err := newTestExecutor(primary, secondary).Convert(src, dst, Dimensions{4000, 3000})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
	assert.FileExists(t, dst)
}

func TestConvertFallsBackWhenPrimaryUnavailable(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.jpg")
	dst := filepath.Join(dir, "a.jpg.webp")

	primary := &fakeBackend{name: "primary", available: false}
	secondary := &fakeBackend{name: "secondary", available: true, payload: []byte("webp")}

	err := newTestExecutor(primary, secondary).Convert(src, dst, Dimensions{100, 100})
	require.NoError(t, err)
	assert.Zero(t, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestConvertFallsBackWhenPrimaryFails(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.jpg")
	dst := filepath.Join(dir, "a.jpg.webp")

	primary := &fakeBackend{name: "primary", available: true, fail: true}
	secondary := &fakeBackend{name: "secondary", available: true, payload: []byte("webp")}

	err := newTestExecutor(primary, secondary).Convert(src, dst, Dimensions{100, 100})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestConvertAllBackendsFail(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.jpg")
	dst := filepath.Join(dir, "a.jpg.webp")

	primary := &fakeBackend{name: "primary", available: true, fail: true}
	secondary := &fakeBackend{name: "secondary", available: true, fail: true}

	err := newTestExecutor(primary, secondary).Convert(src, dst, Dimensions{100, 100})
	assert.ErrorIs(t, err, ErrAllBackendsFailed)
	assert.NoFileExists(t, dst)
}

func TestConvertRemovesEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.jpg")
	dst := filepath.Join(dir, "a.jpg.webp")

	empty := &fakeBackend{name: "empty", available: true, payload: nil}

	err := newTestExecutor(empty).Convert(src, dst, Dimensions{100, 100})
	assert.ErrorIs(t, err, ErrAllBackendsFailed)
	assert.NoFileExists(t, dst, "zero-size artifact must be deleted")
}

func TestConvertMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "gone.jpg.webp")

	backend := &fakeBackend{name: "primary", available: true, payload: []byte("webp")}

	err := newTestExecutor(backend).Convert(filepath.Join(dir, "gone.jpg"), dst, Dimensions{100, 100})
	assert.ErrorIs(t, err, ErrSourceUnreadable)
	assert.Zero(t, backend.calls)
	assert.NoFileExists(t, dst)
}
