package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinkla/retouch/internal/assets"
	"github.com/vinkla/retouch/internal/codec"
	"github.com/vinkla/retouch/internal/pathguard"
)

type processorEnv struct {
	proc    *Processor
	root    string
	backend *fakeBackend
	delete  bool
}

func newProcessorEnv(t *testing.T) *processorEnv {
	t.Helper()

	env := &processorEnv{root: t.TempDir(), delete: true}
	env.backend = &fakeBackend{name: "fake", available: true, payload: []byte("webp")}

	guard := pathguard.New(env.root, "uploads", []string{"cache", "tmp"})
	exec := New(testPolicy(), []codec.Backend{env.backend}, OSFileStore{})
	env.proc = NewProcessor(exec, guard, OSFileStore{}, func() bool { return env.delete })

	return env
}

func (env *processorEnv) addUpload(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(env.root, "uploads", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("source-bytes"), 0o644))
	return path
}

func TestProcessVariantConvertsAndDeletesOriginal(t *testing.T) {
	env := newProcessorEnv(t)
	src := env.addUpload(t, "photo.jpg")
	v := &assets.Variant{Width: 4000, Height: 3000, File: src, Format: "jpeg", MimeType: "image/jpeg"}

	changed, err := env.proc.ProcessVariant(v)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, src+".webp", v.File)
	assert.Equal(t, "image/webp", v.MimeType)
	assert.FileExists(t, src+".webp")
	assert.NoFileExists(t, src, "default policy deletes the validated original")
}

func TestProcessVariantKeepsOriginalWhenPolicyDisabled(t *testing.T) {
	env := newProcessorEnv(t)
	env.delete = false
	src := env.addUpload(t, "photo.jpg")
	v := &assets.Variant{Width: 800, Height: 600, File: src}

	changed, err := env.proc.ProcessVariant(v)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.FileExists(t, src)
}

func TestProcessVariantSkipsAlreadyConverted(t *testing.T) {
	env := newProcessorEnv(t)
	src := env.addUpload(t, "photo.jpg")
	v := &assets.Variant{Width: 800, Height: 600, File: src}

	changed, err := env.proc.ProcessVariant(v)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 1, env.backend.calls)

	// Second run: destination exists, original is gone. Must be a safe
	// no-op that never reaches the codec.
	changed, err = env.proc.ProcessVariant(v)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, env.backend.calls)
}

func TestProcessVariantAdoptsExistingConversion(t *testing.T) {
	env := newProcessorEnv(t)
	src := env.addUpload(t, "photo.jpg")
	require.NoError(t, os.WriteFile(src+".webp", []byte("webp"), 0o644))
	v := &assets.Variant{Width: 800, Height: 600, File: src}

	// A converted file from an earlier run exists; the variant is
	// repointed without invoking any codec.
	changed, err := env.proc.ProcessVariant(v)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, src+".webp", v.File)
	assert.Zero(t, env.backend.calls)
}

func TestProcessVariantGuardRejectionIsSilentSkip(t *testing.T) {
	env := newProcessorEnv(t)
	outside := filepath.Join(t.TempDir(), "outside.jpg")
	require.NoError(t, os.WriteFile(outside, []byte("source"), 0o644))
	v := &assets.Variant{Width: 800, Height: 600, File: outside}

	changed, err := env.proc.ProcessVariant(v)
	assert.NoError(t, err, "rejection is not an error")
	assert.False(t, changed)
	assert.Zero(t, env.backend.calls)
	assert.Equal(t, outside, v.File)
}

func TestProcessVariantNilAndEmpty(t *testing.T) {
	env := newProcessorEnv(t)

	changed, err := env.proc.ProcessVariant(nil)
	assert.NoError(t, err)
	assert.False(t, changed)

	changed, err = env.proc.ProcessVariant(&assets.Variant{})
	assert.NoError(t, err)
	assert.False(t, changed)
}

func TestProcessAsset(t *testing.T) {
	env := newProcessorEnv(t)
	scaled := env.addUpload(t, "scaled.jpg")
	thumb := env.addUpload(t, "thumb.jpg")

	meta := &assets.Metadata{
		SubjectID: 7,
		Scaled:    &assets.Variant{Width: 2000, Height: 1500, File: scaled},
		Sizes: map[string]*assets.Variant{
			"thumbnail": {Width: 150, Height: 150, File: thumb},
			"missing":   {Width: 300, Height: 300, File: filepath.Join(env.root, "uploads", "gone.jpg")},
		},
	}

	changed, err := env.proc.ProcessAsset(meta)
	assert.NoError(t, err, "guard-rejected variants do not fail the asset")
	assert.True(t, changed)
	assert.Equal(t, scaled+".webp", meta.Scaled.File)
	assert.Equal(t, thumb+".webp", meta.Sizes["thumbnail"].File)
}

func TestProcessAssetNothingChanged(t *testing.T) {
	env := newProcessorEnv(t)

	meta := &assets.Metadata{SubjectID: 7}
	changed, err := env.proc.ProcessAsset(meta)
	assert.NoError(t, err)
	assert.False(t, changed)
}
