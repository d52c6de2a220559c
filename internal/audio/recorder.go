package audio

import (
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Frames is the number of samples portaudio delivers per read.
const Frames = 1024

// Recorder captures mono 16kHz float32 microphone audio into an in-memory
// buffer on demand. It is adapted from the teacher's
// internal/audio/recorder.go, which streamed int16 chunks to a websocket
// client; here the whole buffer is retained and handed back on Stop, as
// required by the push-to-talk (record-then-transcribe) contract.
type Recorder struct {
	mu          sync.Mutex
	stream      *portaudio.Stream
	recording   bool
	frames      []float32
	stopChan    chan struct{}
	streamWg    sync.WaitGroup
	deviceIndex *int
}

// NewRecorder validates the requested device (if any) and returns a Recorder
// ready to Start. Device/permission failures surface before any stream is
// opened, per the component contract.
func NewRecorder(deviceIndex *int) (*Recorder, error) {
	if deviceIndex != nil {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, ErrDeviceUnavailable
		}
		if *deviceIndex < 0 || *deviceIndex >= len(devices) {
			return nil, ErrDeviceUnavailable
		}
		if devices[*deviceIndex].MaxInputChannels < 1 {
			return nil, ErrDeviceUnavailable
		}
	}
	return &Recorder{
		stopChan:    make(chan struct{}),
		deviceIndex: deviceIndex,
	}, nil
}

// IsRecording reports whether capture is currently active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start begins appending microphone frames to the internal buffer. It is
// idempotent: calling Start while already recording is a no-op.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return nil
	}

	r.frames = nil
	r.stopChan = make(chan struct{})

	in := make([]float32, Frames)

	var (
		stream *portaudio.Stream
		err    error
	)
	if r.deviceIndex != nil {
		devices, derr := portaudio.Devices()
		if derr != nil || *r.deviceIndex >= len(devices) {
			return ErrDeviceUnavailable
		}
		params := portaudio.LowLatencyParameters(devices[*r.deviceIndex], nil)
		params.Input.Channels = 1
		params.SampleRate = SampleRate
		params.FramesPerBuffer = len(in)
		stream, err = portaudio.OpenStream(params, in)
	} else {
		stream, err = portaudio.OpenDefaultStream(1, 0, SampleRate, len(in), in)
	}
	if err != nil {
		log.Printf("[AUDIO] error opening stream: %v", err)
		return ErrDeviceUnavailable
	}

	if err := stream.Start(); err != nil {
		log.Printf("[AUDIO] error starting stream: %v", err)
		stream.Close()
		return err
	}

	r.stream = stream
	r.recording = true

	r.streamWg.Add(1)
	go r.captureLoop(in)

	return nil
}

func (r *Recorder) captureLoop(in []float32) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[AUDIO] capture goroutine recovered: %v", rec)
		}
		r.streamWg.Done()
	}()

	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		r.mu.Lock()
		stream := r.stream
		recording := r.recording
		r.mu.Unlock()
		if !recording || stream == nil {
			return
		}

		if err := stream.Read(); err != nil {
			select {
			case <-r.stopChan:
			default:
				log.Printf("[AUDIO] stream read error: %v", err)
			}
			return
		}

		chunk := make([]float32, len(in))
		copy(chunk, in)

		r.mu.Lock()
		if r.recording {
			r.frames = append(r.frames, chunk...)
		}
		r.mu.Unlock()
	}
}

// Stop stops the stream, returns the concatenated buffer, and clears
// internal state. A failed close still leaves the recorder idle.
func (r *Recorder) Stop() Buffer {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return Buffer{}
	}
	r.recording = false
	close(r.stopChan)
	r.mu.Unlock()

	r.streamWg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		if err := r.stream.Stop(); err != nil {
			log.Printf("[AUDIO] error stopping stream: %v", err)
		}
		if err := r.stream.Close(); err != nil {
			log.Printf("[AUDIO] error closing stream: %v", err)
		}
		r.stream = nil
	}

	out := r.frames
	r.frames = nil
	return Buffer(out)
}

// Cancel stops capture and discards the buffer.
func (r *Recorder) Cancel() {
	r.Stop()
}

// DurationSeconds reports the length of the buffer captured so far.
func (r *Recorder) DurationSeconds() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(len(r.frames)) / float64(SampleRate)
}

// Initialize initializes the PortAudio runtime; call once at startup.
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate releases the PortAudio runtime; call once at shutdown.
func Terminate() error {
	return portaudio.Terminate()
}
