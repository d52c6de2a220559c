package transcribe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribeShortAudioShortcutsWithoutSpawning(t *testing.T) {
	w := &Worker{BinaryPath: "/does/not/exist", ModelDir: "/does/not/exist"}

	samples := make([]float32, SampleRateHz/20) // 0.05s, below the 0.1s threshold
	result, err := w.Transcribe(context.Background(), samples, SampleRateHz)

	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
}

func TestResolveModelDirPrefersExplicitModelDir(t *testing.T) {
	w := &Worker{ModelDir: "/opt/models/custom", Model: ModelLarge, ModelsRoot: "/opt/models"}

	dir, err := w.resolveModelDir()
	require.NoError(t, err)
	assert.Equal(t, "/opt/models/custom", dir)
}

func TestResolveModelDirDerivesFromModelsRootAndSize(t *testing.T) {
	w := &Worker{Model: ModelSmall, ModelsRoot: "/opt/models"}

	dir, err := w.resolveModelDir()
	require.NoError(t, err)
	assert.Equal(t, "/opt/models/small", dir)
}

func TestResolveModelDirRejectsUnknownModel(t *testing.T) {
	w := &Worker{Model: Model("huge"), ModelsRoot: "/opt/models"}

	_, err := w.resolveModelDir()
	assert.ErrorIs(t, err, ErrInvalidModel)
}
