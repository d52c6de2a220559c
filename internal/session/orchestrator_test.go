package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktotext/t2/internal/audio"
	"github.com/talktotext/t2/internal/inject"
	"github.com/talktotext/t2/internal/transcribe"
)

type fakeRecorder struct {
	mu        sync.Mutex
	buf       audio.Buffer
	startErr  error
	cancelled bool
}

func (f *fakeRecorder) Start() error {
	return f.startErr
}

func (f *fakeRecorder) Stop() audio.Buffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf
}

func (f *fakeRecorder) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = true
}

type fakeTranscriber struct {
	delay  time.Duration
	result transcribe.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) (transcribe.Result, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return transcribe.Result{}, ctx.Err()
		}
	}
	return f.result, f.err
}

type fakeInjector struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeInjector) Inject(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	return f.err
}

func silentBuffer(seconds float64) audio.Buffer {
	return make(audio.Buffer, int(seconds*audio.SampleRate))
}

func loudBuffer(seconds float64) audio.Buffer {
	n := int(seconds * audio.SampleRate)
	buf := make(audio.Buffer, n)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = 0.5
		} else {
			buf[i] = -0.5
		}
	}
	return buf
}

func collectStates(o *Orchestrator) *[]Status {
	var states []Status
	o.OnStateChange = func(s Status) { states = append(states, s) }
	return &states
}

// S1: short recording is skipped without reaching the transcriber.
func TestOrchestratorSkipsTooShortRecording(t *testing.T) {
	rec := &fakeRecorder{buf: silentBuffer(0.05)}
	tr := &fakeTranscriber{}
	inj := &fakeInjector{}
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj}

	var reasons []string
	o.OnSkipped = func(r string) { reasons = append(reasons, r) }
	states := collectStates(o)

	o.Press()
	o.Release()

	require.Eventually(t, func() bool {
		return len(*states) > 0 && (*states)[len(*states)-1] == StatusIdle
	}, time.Second, time.Millisecond)

	assert.Equal(t, []Status{StatusRecording, StatusSkipped, StatusIdle}, *states)
	assert.Equal(t, []string{"too short"}, reasons)
	assert.Empty(t, inj.calls)
}

// S2: silent but long-enough recording is skipped for lack of speech.
func TestOrchestratorSkipsSilentRecording(t *testing.T) {
	rec := &fakeRecorder{buf: silentBuffer(1)}
	tr := &fakeTranscriber{}
	inj := &fakeInjector{}
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj}

	var reasons []string
	o.OnSkipped = func(r string) { reasons = append(reasons, r) }
	states := collectStates(o)

	o.Press()
	o.Release()

	require.Eventually(t, func() bool {
		return len(*states) > 0 && (*states)[len(*states)-1] == StatusIdle
	}, time.Second, time.Millisecond)

	assert.Equal(t, []Status{StatusRecording, StatusSkipped, StatusIdle}, *states)
	assert.Equal(t, []string{"no speech"}, reasons)
}

// S3: a normal recording transcribes and injects.
func TestOrchestratorCompletesWithInjection(t *testing.T) {
	rec := &fakeRecorder{buf: loudBuffer(2)}
	tr := &fakeTranscriber{result: transcribe.Result{Text: "hello world", Confidence: 0.9}}
	inj := &fakeInjector{}
	sanitizer, err := inject.NewSanitizer(500, false)
	require.NoError(t, err)
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj, Sanitizer: sanitizer}

	var texts []string
	o.OnTranscription = func(text string) { texts = append(texts, text) }
	states := collectStates(o)

	o.Press()
	o.Release()

	require.Eventually(t, func() bool {
		return len(*states) > 0 && (*states)[len(*states)-1] == StatusIdle
	}, time.Second, time.Millisecond)

	assert.Equal(t, []Status{
		StatusRecording, StatusTranscribing, StatusInjecting, StatusComplete, StatusIdle,
	}, *states)
	assert.Equal(t, []string{"hello world"}, texts)
	assert.Equal(t, []string{"hello world"}, inj.calls)
}

// S4: a watchdog firing behaves like a release, and the later real release
// is a no-op.
func TestOrchestratorWatchdogFiresOnce(t *testing.T) {
	origMax := MaxRecordingDuration
	MaxRecordingDuration = 20 * time.Millisecond
	defer func() { MaxRecordingDuration = origMax }()

	rec := &fakeRecorder{buf: silentBuffer(0.05)}
	tr := &fakeTranscriber{}
	inj := &fakeInjector{}
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj}

	var skipCount int
	var mu sync.Mutex
	o.OnSkipped = func(string) {
		mu.Lock()
		skipCount++
		mu.Unlock()
	}

	o.Press()
	time.Sleep(100 * time.Millisecond)
	o.Release() // must be a no-op; watchdog already fired the stop path

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, skipCount)
}

// S5: a transcription that never returns within the timeout ends in
// timeout, with the error callback firing.
func TestOrchestratorTimesOutOnSlowTranscription(t *testing.T) {
	origTimeout := TranscriptionTimeout
	TranscriptionTimeout = 20 * time.Millisecond
	defer func() { TranscriptionTimeout = origTimeout }()

	rec := &fakeRecorder{buf: loudBuffer(2)}
	tr := &fakeTranscriber{delay: time.Second}
	inj := &fakeInjector{}
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj}

	var errs []string
	o.OnError = func(msg string) { errs = append(errs, msg) }
	states := collectStates(o)

	o.Press()
	o.Release()

	require.Eventually(t, func() bool {
		return len(*states) > 0 && (*states)[len(*states)-1] == StatusIdle
	}, 2*time.Second, 5*time.Millisecond)

	assert.Contains(t, *states, StatusTimeout)
	assert.NotEmpty(t, errs)
}

// S6: an invalid multiplexer target fails injection and ends the session in
// error with one error callback. That no send-keys is issued is checked by
// TestMultiplexerInjectFailsWhenTargetInvalid in internal/inject.
func TestOrchestratorReportsInjectionFailure(t *testing.T) {
	rec := &fakeRecorder{buf: loudBuffer(2)}
	tr := &fakeTranscriber{result: transcribe.Result{Text: "hello"}}
	inj := &fakeInjector{err: inject.ErrTargetInvalid}
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj}

	var errs []string
	o.OnError = func(msg string) { errs = append(errs, msg) }
	states := collectStates(o)

	o.Press()
	o.Release()

	require.Eventually(t, func() bool {
		return len(*states) > 0 && (*states)[len(*states)-1] == StatusIdle
	}, time.Second, time.Millisecond)

	assert.Contains(t, *states, StatusError)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(inj.err, inject.ErrTargetInvalid))
}

func TestOrchestratorCancelDiscardsRecording(t *testing.T) {
	rec := &fakeRecorder{buf: loudBuffer(2)}
	tr := &fakeTranscriber{}
	inj := &fakeInjector{}
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj}

	states := collectStates(o)

	o.Press()
	o.Cancel()

	require.Eventually(t, func() bool {
		return len(*states) > 0 && (*states)[len(*states)-1] == StatusIdle
	}, time.Second, time.Millisecond)

	assert.Equal(t, []Status{StatusRecording, StatusCancelled, StatusIdle}, *states)
	assert.True(t, rec.cancelled)
	assert.Empty(t, inj.calls)
}

func TestOrchestratorRejectsReentrantPress(t *testing.T) {
	rec := &fakeRecorder{buf: loudBuffer(2)}
	tr := &fakeTranscriber{delay: 50 * time.Millisecond, result: transcribe.Result{Text: "hi"}}
	inj := &fakeInjector{}
	o := &Orchestrator{Recorder: rec, Transcriber: tr, Injector: inj}

	o.Press()
	first := o.Current()
	o.Press() // ignored: a session is already active
	second := o.Current()

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
}
