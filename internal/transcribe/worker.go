package transcribe

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// shortAudioThreshold is the duration below which Transcribe returns an
// empty result without ever spawning the child process, avoiding a useless
// fork/exec for a buffer too small to contain speech.
const shortAudioThreshold = 100 * time.Millisecond

// Worker is the parent-side half of the transcription component: it writes
// the audio scratch file, spawns the isolated cmd/t2-worker child process,
// waits on it with a timeout, and parses back the structured result.
type Worker struct {
	// BinaryPath is the path to the t2-worker executable.
	BinaryPath string
	// ModelDir, if set, is used verbatim as the on-disk directory holding
	// the recognizer's model files, overriding Model/ModelsRoot resolution.
	ModelDir string
	// Model names the model size to request. Resolved to
	// <ModelsRoot>/<Model> when ModelDir is empty.
	Model Model
	// ModelsRoot is the directory holding one subdirectory per model size
	// (tiny, base, small, medium, large). Ignored when ModelDir is set.
	ModelsRoot string
	// Device is the compute backend hint; "auto" is resolved before spawn.
	Device Device
	// Language is an optional BCP-47-like short code; "" lets the engine
	// auto-detect.
	Language string
	// ScratchDir holds the temporary audio/result files; os.TempDir() when
	// empty.
	ScratchDir string
}

// Transcribe writes samples to a scratch file, runs the worker binary, and
// returns its parsed result. Deadline is enforced by ctx; callers typically
// derive ctx with a timeout of TranscriptionTimeout.
func (w *Worker) Transcribe(ctx context.Context, samples []float32, sampleRate int) (Result, error) {
	duration := time.Duration(float64(len(samples))/float64(sampleRate)*1000) * time.Millisecond
	if duration < shortAudioThreshold {
		return Result{}, nil
	}

	modelDir, err := w.resolveModelDir()
	if err != nil {
		return Result{}, err
	}

	audioPath, resultPath, cleanup, err := w.scratchPaths()
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: preparing scratch files: %w", err)
	}
	defer cleanup()

	if err := WriteAudioFile(audioPath, samples); err != nil {
		return Result{}, fmt.Errorf("transcribe: writing audio scratch file: %w", err)
	}

	args := []string{
		"--audio", audioPath,
		"--model", modelDir,
		"--device", string(ResolveDevice(w.Device)),
		"--out", resultPath,
	}
	if w.Language != "" {
		args = append(args, "--lang", w.Language)
	}

	cmd := exec.CommandContext(ctx, w.binaryPath(), args...)

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrWorkerFailed, err)
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-waitErr
		return Result{}, ErrTranscriptionTimeout
	case err := <-waitErr:
		if err != nil {
			log.Printf("[XSCRIBE] worker process failed: %v", err)
			return Result{}, fmt.Errorf("%w: %v", ErrWorkerFailed, err)
		}
	}

	result, err := ReadResultFile(resultPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrWorkerFailed, err)
	}
	if result.Error != "" {
		return Result{}, fmt.Errorf("%w: %s", ErrWorkerFailed, result.Error)
	}
	return result, nil
}

// Preload spawns the worker once against one second of silence to force any
// lazy model download/warm-up to happen before the first real press. A
// zero-length buffer would hit the short-audio shortcut and never spawn.
func (w *Worker) Preload(ctx context.Context) error {
	_, err := w.Transcribe(ctx, make([]float32, SampleRateHz), SampleRateHz)
	return err
}

// resolveModelDir returns the directory passed to the worker's --model
// flag: ModelDir verbatim when set, otherwise <ModelsRoot>/<Model>, so
// selecting a different Model size in configuration actually changes which
// files the child process loads.
func (w *Worker) resolveModelDir() (string, error) {
	if w.ModelDir != "" {
		return w.ModelDir, nil
	}
	if !IsValidModel(w.Model) {
		return "", fmt.Errorf("%w: %q", ErrInvalidModel, w.Model)
	}
	return filepath.Join(w.ModelsRoot, string(w.Model)), nil
}

func (w *Worker) binaryPath() string {
	if w.BinaryPath != "" {
		return w.BinaryPath
	}
	return "t2-worker"
}

func (w *Worker) scratchPaths() (audioPath, resultPath string, cleanup func(), err error) {
	dir := w.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}

	audioFile, err := os.CreateTemp(dir, "t2-audio-*.pcm")
	if err != nil {
		return "", "", nil, err
	}
	audioFile.Close()

	resultFile := filepath.Join(dir, filepath.Base(audioFile.Name())+".result.json")

	cleanup = func() {
		os.Remove(audioFile.Name())
		os.Remove(resultFile)
	}
	return audioFile.Name(), resultFile, cleanup, nil
}
