package transcribe

import (
	"fmt"
	"sync"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// SherpaEngine wraps a sherpa-onnx offline recognizer, the ASR half of the
// same library mmp-vice uses for its Kokoro TTS voice (client/speech.go). It
// is the default Engine cmd/t2-worker loads.
type SherpaEngine struct {
	mu         sync.Mutex
	recognizer *sherpa.OfflineRecognizer
}

// ModelPaths locates the on-disk ONNX model files for a given Model size.
// Layout: one directory per model, holding the model.onnx and tokens.txt
// files NewSherpaEngine loads.
type ModelPaths struct {
	Dir    string
	Tokens string
}

// NewSherpaEngine loads an offline paraformer model (dir/model.onnx and
// dir/tokens.txt) for the given compute device.
func NewSherpaEngine(dir string, device Device) (*SherpaEngine, error) {
	config := &sherpa.OfflineRecognizerConfig{
		ModelConfig: sherpa.OfflineModelConfig{
			Paraformer: sherpa.OfflineParaformerModelConfig{
				Model: dir + "/model.onnx",
			},
			Tokens:     dir + "/tokens.txt",
			NumThreads: 1,
			Provider:   string(ResolveDevice(device)),
			Debug:      0,
		},
		DecodingMethod: "greedy_search",
	}

	recognizer := sherpa.NewOfflineRecognizer(config)
	if recognizer == nil {
		return nil, fmt.Errorf("transcribe: failed to load sherpa-onnx model from %s", dir)
	}
	return &SherpaEngine{recognizer: recognizer}, nil
}

// Transcribe runs one offline recognition pass over samples.
func (e *SherpaEngine) Transcribe(samples []float32, lang string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recognizer == nil {
		return Result{}, fmt.Errorf("transcribe: engine is closed")
	}

	stream := sherpa.NewOfflineStream(e.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(SampleRateHz, samples)
	e.recognizer.Decode(stream)

	result := stream.GetResult()
	if result == nil {
		return Result{}, fmt.Errorf("transcribe: recognizer returned no result")
	}

	return Result{
		Text:             result.Text,
		DetectedLanguage: lang,
		Confidence:       confidenceFromResult(result),
	}, nil
}

// Close releases the recognizer's native resources.
func (e *SherpaEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(e.recognizer)
		e.recognizer = nil
	}
	return nil
}

// confidenceFromResult derives a rough confidence proxy. sherpa-onnx's
// offline recognizers do not expose a calibrated per-utterance score, so a
// non-empty transcription is reported at a fixed high confidence and an
// empty one at zero; this mirrors the Whisper-based original's
// `1 - no_speech_prob` heuristic closely enough for a value that is
// informational, not decision-making, on the Go side.
func confidenceFromResult(result *sherpa.OfflineRecognizerResult) float64 {
	if result.Text == "" {
		return 0
	}
	return 0.9
}

// SampleRateHz is the fixed input rate the recognizer expects.
const SampleRateHz = 16000
