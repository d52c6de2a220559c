// Package transcribe implements the transcription worker contract: the
// parent-side Worker that writes a scratch audio file, spawns an isolated
// child process, waits on it with a timeout, and reads back a structured
// result; and the Engine interface the child process (cmd/t2-worker)
// plugs a concrete speech model into.
//
// Process isolation exists so the recognizer's native numerical
// dependencies and thread pools never share a process with the host's
// interactive surfaces (hotkey listener, terminal UI), per the
// specification's C3 design.
package transcribe

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Model names the spec exposes. Larger models trade latency for accuracy.
type Model string

const (
	ModelTiny   Model = "tiny"
	ModelBase   Model = "base"
	ModelSmall  Model = "small"
	ModelMedium Model = "medium"
	ModelLarge  Model = "large"
)

// IsValidModel reports whether m is one of the supported sizes.
func IsValidModel(m Model) bool {
	switch m {
	case ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge:
		return true
	default:
		return false
	}
}

// Device is the compute backend hint passed to the child process. "auto"
// is never sent over the wire: the parent resolves it to "cpu" before
// spawning, since GPU contexts do not survive a process boundary.
type Device string

const (
	DeviceAuto Device = "auto"
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// ResolveDevice maps "auto" to the process-safe default.
func ResolveDevice(d Device) Device {
	if d == DeviceAuto {
		return DeviceCPU
	}
	return d
}

// Result is what the child process reports back, and what Transcribe
// ultimately returns.
type Result struct {
	Text             string  `json:"text"`
	DetectedLanguage string  `json:"language"`
	Confidence       float64 `json:"confidence"`
	DurationMS       int64   `json:"duration_ms"`
	Error            string  `json:"error,omitempty"`
}

// WriteAudioFile writes samples to path in the wire format the child
// process reads: a 4-byte little-endian sample count followed by that many
// little-endian float32 samples.
func WriteAudioFile(path string, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(len(samples))); err != nil {
		return err
	}
	return binary.Write(f, binary.LittleEndian, samples)
}

// ReadAudioFile reads the wire format WriteAudioFile produces.
func ReadAudioFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var count uint32
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("transcribe: reading sample count: %w", err)
	}

	samples := make([]float32, count)
	if err := binary.Read(f, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("transcribe: reading samples: %w", err)
	}
	return samples, nil
}

// WriteResultFile writes r as JSON to path.
func WriteResultFile(path string, r Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	return enc.Encode(r)
}

// ReadResultFile parses the child process's structured result file.
func ReadResultFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	var r Result
	data, err := io.ReadAll(f)
	if err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	return r, nil
}
