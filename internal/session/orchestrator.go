package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/talktotext/t2/internal/audio"
	"github.com/talktotext/t2/internal/inject"
	"github.com/talktotext/t2/internal/status"
	"github.com/talktotext/t2/internal/transcribe"
)

// Gating constants, as design defaults from the specification. Exported as
// vars (not consts) so tests can shrink them, matching the pattern already
// used for hotkey.StuckKeyTimeout.
var (
	MinRecordingDuration = 300 * time.Millisecond
	MinAudioRMS          = 0.01
	MaxRecordingDuration = 60 * time.Second
	TranscriptionTimeout = 30 * time.Second
	InjectionCeiling     = 10 * time.Second
)

// Recorder is the C2 surface the orchestrator drives.
type Recorder interface {
	Start() error
	Stop() audio.Buffer
	Cancel()
}

// Transcriber is the C3 surface the orchestrator drives.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (transcribe.Result, error)
}

// Orchestrator is the Session Orchestrator (C5): it owns the state machine
// and the gating policy tying the hotkey monitor, audio capture,
// transcription worker, and text injector into one push-to-talk
// interaction. It is grounded on
// original_source/core/recording_session.py's RecordingSessionManager,
// translated from threading.Timer/threading.Thread to time.AfterFunc and a
// worker goroutine per session.
type Orchestrator struct {
	Recorder    Recorder
	Transcriber Transcriber
	Injector    inject.Injector
	Sanitizer   *inject.Sanitizer

	// AutoReturn instructs a MultiplexerPane injector to submit an Enter
	// after the payload. No-op for any other injector kind.
	AutoReturn bool

	// Bus, if set, receives every status transition for a UI subscriber.
	Bus *status.Bus

	OnStateChange   func(Status)
	OnTranscription func(text string)
	OnError         func(message string)
	OnSkipped       func(reason string)

	mu       sync.Mutex
	current  *Session
	stopOnce *sync.Once
	watchdog *time.Timer
}

// Press starts a new recording session. Reentrant presses while a session
// is already active are ignored, matching the orchestrator's single active
// session invariant.
func (o *Orchestrator) Press() {
	o.mu.Lock()
	if o.current != nil && !o.current.Status.IsTerminal() {
		o.mu.Unlock()
		return
	}
	s := newSession()
	once := &sync.Once{}
	o.current = s
	o.stopOnce = once
	o.mu.Unlock()

	o.emit(s, s.Status, "", "", "")

	if err := o.Recorder.Start(); err != nil {
		once.Do(func() {})
		o.finishTerminal(s, StatusError, "", fmt.Sprintf("failed to start recording: %v", err), "")
		return
	}

	o.mu.Lock()
	o.watchdog = time.AfterFunc(MaxRecordingDuration, func() {
		o.stop(s, once)
	})
	o.mu.Unlock()
}

// Release ends the active recording, identical to the max-duration watchdog
// firing: whichever happens first wins, the later one is a no-op.
func (o *Orchestrator) Release() {
	o.mu.Lock()
	s := o.current
	once := o.stopOnce
	o.mu.Unlock()
	if s == nil || once == nil {
		return
	}
	o.stop(s, once)
}

// Cancel discards the active recording without gating or transcription.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	s := o.current
	once := o.stopOnce
	o.mu.Unlock()
	if s == nil || once == nil {
		return
	}
	once.Do(func() {
		o.cancelWatchdog()
		o.Recorder.Cancel()
		o.finishTerminal(s, StatusCancelled, "", "", "")
	})
}

func (o *Orchestrator) stop(s *Session, once *sync.Once) {
	once.Do(func() {
		o.cancelWatchdog()
		buf := o.Recorder.Stop()
		o.gate(s, buf)
	})
}

func (o *Orchestrator) cancelWatchdog() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.watchdog != nil {
		o.watchdog.Stop()
		o.watchdog = nil
	}
}

// gate applies the three skip conditions from the specification before a
// buffer is ever handed to the transcription worker: silence is cheaper
// than a timed-out subprocess.
func (o *Orchestrator) gate(s *Session, buf audio.Buffer) {
	switch {
	case len(buf) == 0:
		o.finishTerminal(s, StatusSkipped, "", "", "no audio")
		return
	case buf.Duration() < MinRecordingDuration.Seconds():
		o.finishTerminal(s, StatusSkipped, "", "", "too short")
		return
	case buf.RMS() < MinAudioRMS:
		o.finishTerminal(s, StatusSkipped, "", "", "no speech")
		return
	}

	o.emit(s, StatusTranscribing, "", "", "")
	go o.transcribe(s, buf)
}

func (o *Orchestrator) transcribe(s *Session, buf audio.Buffer) {
	ctx, cancel := context.WithTimeout(context.Background(), TranscriptionTimeout)
	defer cancel()

	result, err := o.Transcriber.Transcribe(ctx, []float32(buf), audio.SampleRate)

	if !o.isActive(s) {
		// Session already went terminal (e.g. cancelled); suppress a late
		// result per the cancellation contract.
		return
	}

	if err != nil {
		if errors.Is(err, transcribe.ErrTranscriptionTimeout) || errors.Is(err, context.DeadlineExceeded) {
			o.finishTerminal(s, StatusTimeout, "", "transcription timeout", "")
			return
		}
		log.Printf("[SESSION] transcription failed for %s: %v", s.ID, err)
		o.finishTerminal(s, StatusError, "", fmt.Sprintf("transcription failed: %v", err), "")
		return
	}

	if result.Text == "" {
		o.finishTerminal(s, StatusComplete, "", "", "")
		return
	}

	if o.OnTranscription != nil {
		o.OnTranscription(result.Text)
	}

	o.emit(s, StatusInjecting, result.Text, "", "")
	o.inject(s, result.Text)
}

func (o *Orchestrator) inject(s *Session, rawText string) {
	text := rawText
	if o.Sanitizer != nil {
		text = o.Sanitizer.Sanitize(rawText)
	}

	if mp, ok := o.Injector.(*inject.MultiplexerInjector); ok {
		mp.AutoReturn = o.AutoReturn
	}

	ctx, cancel := context.WithTimeout(context.Background(), InjectionCeiling)
	defer cancel()

	if err := o.Injector.Inject(ctx, text); err != nil {
		log.Printf("[SESSION] injection failed for %s: %v", s.ID, err)
		o.finishTerminal(s, StatusError, "", err.Error(), "")
		return
	}

	o.finishTerminal(s, StatusComplete, text, "", "")
}

func (o *Orchestrator) isActive(s *Session) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current == s && !s.Status.IsTerminal()
}

// finishTerminal moves s to a terminal status, fires the matching
// callback, publishes both the terminal event and a trailing idle event,
// and clears the active session.
func (o *Orchestrator) finishTerminal(s *Session, st Status, text, errMsg, reason string) {
	o.mu.Lock()
	s.Status = st
	s.Transcription = text
	s.Error = errMsg
	s.finish(time.Now())
	o.mu.Unlock()

	o.emit(s, st, text, errMsg, reason)

	switch st {
	case StatusError, StatusTimeout:
		if o.OnError != nil {
			o.OnError(errMsg)
		}
	case StatusSkipped:
		if o.OnSkipped != nil {
			o.OnSkipped(reason)
		}
	}

	o.mu.Lock()
	if o.current == s {
		o.current = nil
	}
	o.mu.Unlock()

	o.emit(s, StatusIdle, "", "", "")
}

func (o *Orchestrator) emit(s *Session, st Status, text, errMsg, reason string) {
	if o.OnStateChange != nil {
		o.OnStateChange(st)
	}
	if o.Bus != nil {
		o.Bus.Publish(status.Event{
			SessionID: s.ID,
			Status:    string(st),
			Text:      text,
			Reason:    reason,
			Error:     errMsg,
			At:        time.Now(),
		})
	}
}

// Current returns a snapshot of the active session, or nil if idle.
func (o *Orchestrator) Current() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return nil
	}
	cp := *o.current
	return &cp
}
