package transcribe

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.pcm")

	samples := []float32{0, 0.25, -0.25, 0.5, -1, 1}
	require.NoError(t, WriteAudioFile(path, samples))

	got, err := ReadAudioFile(path)
	require.NoError(t, err)
	assert.Equal(t, samples, got)
}

func TestResultFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")

	want := Result{Text: "hello world", DetectedLanguage: "en", Confidence: 0.9, DurationMS: 1234}
	require.NoError(t, WriteResultFile(path, want))

	got, err := ReadResultFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResultFileCarriesErrorField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")

	want := Result{Error: "model failed to load"}
	require.NoError(t, WriteResultFile(path, want))

	got, err := ReadResultFile(path)
	require.NoError(t, err)
	assert.Equal(t, "model failed to load", got.Error)
}

func TestResolveDevice(t *testing.T) {
	assert.Equal(t, DeviceCPU, ResolveDevice(DeviceAuto))
	assert.Equal(t, DeviceCUDA, ResolveDevice(DeviceCUDA))
}

func TestIsValidModel(t *testing.T) {
	assert.True(t, IsValidModel(ModelBase))
	assert.False(t, IsValidModel(Model("huge")))
}
