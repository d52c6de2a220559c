package audio

import "math"

// SampleRate is the fixed capture rate the whole pipeline assumes: 16kHz
// mono, matching the transcription worker's expected input format.
const SampleRate = 16000

// Buffer is an ordered sequence of normalized [-1, 1] float32 samples at
// SampleRate captured from the microphone.
type Buffer []float32

// Duration returns how long b represents at SampleRate.
func (b Buffer) Duration() float64 {
	return float64(len(b)) / float64(SampleRate)
}

// RMS computes the root-mean-square amplitude of b, used by the orchestrator
// as a cheap silence gate before a buffer is ever handed to the
// transcription worker.
func (b Buffer) RMS() float64 {
	if len(b) == 0 {
		return 0
	}
	var sum float64
	for _, s := range b {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(b)))
}
