// Package app wires the daemon's components together: hotkey monitor,
// audio capture, transcription worker, injector, and the session
// orchestrator that ties them into one push-to-talk interaction per press.
package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/talktotext/t2/internal/audio"
	"github.com/talktotext/t2/internal/config"
	"github.com/talktotext/t2/internal/hotkey"
	"github.com/talktotext/t2/internal/inject"
	"github.com/talktotext/t2/internal/metrics"
	"github.com/talktotext/t2/internal/session"
	"github.com/talktotext/t2/internal/sound"
	"github.com/talktotext/t2/internal/status"
	"github.com/talktotext/t2/internal/terminal"
	"github.com/talktotext/t2/internal/transcribe"
	"github.com/talktotext/t2/internal/transcript"
)

// Daemon owns every long-lived component and their wiring. It is the Go
// analog of original_source's top-level push_to_talk application object.
type Daemon struct {
	cfg *config.Config

	recorder     *audio.Recorder
	hotkeyMon    *hotkey.Monitor
	worker       *transcribe.Worker
	injector     inject.Injector
	sanitizer    *inject.Sanitizer
	orchestrator *session.Orchestrator
	metricsMgr   *metrics.MetricsManager
	display      *terminal.Display
	bus          *status.Bus
	statusSub    chan status.Event
}

// NewDaemon returns a Daemon bound to cfg, not yet initialized.
func NewDaemon(cfg *config.Config) *Daemon {
	return &Daemon{cfg: cfg}
}

// Initialize constructs every component and wires the orchestrator's
// callbacks to sound cues, transcript persistence, and metrics recording.
// Device/permission failures surface here, not after the daemon starts
// listening.
func (d *Daemon) Initialize() error {
	// Focused-window payloads are keystrokes, not shell words, so shell
	// escaping only applies in multiplexer mode.
	escapeShell := d.cfg.SanitizerEscapeShell && d.cfg.InjectionMode == config.InjectionMultiplexer
	sanitizer, err := inject.NewSanitizer(d.cfg.SanitizerMaxLength, escapeShell)
	if err != nil {
		return fmt.Errorf("failed to build sanitizer: %w", err)
	}
	d.sanitizer = sanitizer

	d.injector = d.buildInjector()

	if err := audio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	recorder, err := audio.NewRecorder(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize recorder: %w", err)
	}
	d.recorder = recorder

	modelsRoot, err := config.ModelsDir()
	if err != nil {
		return fmt.Errorf("failed to resolve models directory: %w", err)
	}

	d.worker = &transcribe.Worker{
		ModelDir:   d.cfg.ModelDir,
		Model:      transcribe.Model(d.cfg.ModelName),
		ModelsRoot: modelsRoot,
		Device:     transcribe.Device(d.cfg.Device),
		Language:   d.cfg.Language,
	}

	metricsDir, err := config.MetricsDir()
	if err != nil {
		return fmt.Errorf("failed to resolve metrics directory: %w", err)
	}
	d.metricsMgr, err = metrics.NewMetricsManager(metricsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics manager: %w", err)
	}

	d.display = terminal.NewDisplay()
	d.bus = status.NewBus(32)
	d.statusSub = d.bus.Subscribe()
	go d.renderStatusLine()

	d.orchestrator = &session.Orchestrator{
		Recorder:    d.recorder,
		Transcriber: d.worker,
		Injector:    d.injector,
		Sanitizer:   d.sanitizer,
		AutoReturn:  d.cfg.AutoReturn,
		Bus:         d.bus,
	}
	d.orchestrator.OnStateChange = d.onStateChange
	d.orchestrator.OnTranscription = d.onTranscription
	d.orchestrator.OnError = d.onError
	d.orchestrator.OnSkipped = d.onSkipped

	hotkeyMon, err := hotkey.NewMonitor(hotkey.KeyCode(d.cfg.Hotkey), d.orchestrator.Press, d.orchestrator.Release)
	if err != nil {
		return fmt.Errorf("failed to configure hotkey: %w", err)
	}
	d.hotkeyMon = hotkeyMon

	return nil
}

func (d *Daemon) buildInjector() inject.Injector {
	if d.cfg.InjectionMode == config.InjectionMultiplexer {
		var target *inject.PaneTarget
		if d.cfg.MultiplexerPane != "" {
			if t, ok := parsePaneTarget(d.cfg.MultiplexerPane); ok {
				target = &t
			}
		}
		return inject.NewMultiplexerInjector(target, d.cfg.CommandNames, d.cfg.AutoReturn)
	}
	return newFocusedInjector(d.cfg.TypingDelayMS)
}

// Run starts the hotkey listener and blocks until SIGINT/SIGTERM.
func (d *Daemon) Run() error {
	if err := d.hotkeyMon.Start(); err != nil {
		return fmt.Errorf("failed to start hotkey monitor: %w", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	fmt.Println("T2 - Voice-to-Text Daemon Started")
	fmt.Printf("Hold %s to record, release to transcribe & inject\n", d.cfg.Hotkey)
	fmt.Println("Press Ctrl+C to exit")
	fmt.Println()

	terminal.HideCursor()
	<-c
	terminal.ShowCursor()
	fmt.Println("\nShutting down...")
	d.Cleanup()
	return nil
}

// Cleanup stops every live component in reverse dependency order.
func (d *Daemon) Cleanup() {
	if d.hotkeyMon != nil {
		d.hotkeyMon.Stop()
	}
	if d.orchestrator != nil {
		d.orchestrator.Cancel()
	}
	if d.bus != nil {
		if d.statusSub != nil {
			d.bus.Unsubscribe(d.statusSub)
		}
		d.bus.Close()
	}
	audio.Terminate()
}

// renderStatusLine drains the orchestrator's status bus and redraws the
// dashboard's single status line in place, one event at a time, until the
// bus is closed and d.statusSub is drained and closed by Unsubscribe.
func (d *Daemon) renderStatusLine() {
	for ev := range d.statusSub {
		d.display.Render(ev)
	}
}

func (d *Daemon) onStateChange(st session.Status) {
	switch st {
	case session.StatusRecording:
		sound.Play(sound.CueStart)
	case session.StatusComplete, session.StatusTimeout:
		sound.Play(sound.CueStop)
		d.recordMetrics()
	}
}

func (d *Daemon) recordMetrics() {
	current := d.orchestrator.Current()
	if current == nil || current.Transcription == "" {
		return
	}

	sessionMetrics, err := d.metricsMgr.RecordFromSession(current)
	if err != nil {
		log.Printf("[SESSION] failed to record metrics: %v", err)
		return
	}

	todayMetrics, err := d.metricsMgr.GetTodayMetrics()
	if err != nil {
		todayMetrics = nil
	}

	formatter := metrics.NewStatsFormatter()
	for _, line := range formatter.FormatSessionSummaryLines(sessionMetrics, todayMetrics) {
		fmt.Println(line)
	}
}

func (d *Daemon) onTranscription(text string) {
	current := d.orchestrator.Current()
	if current == nil {
		return
	}

	if d.cfg.SaveTranscripts {
		dir, err := config.TranscriptDir()
		if err == nil {
			if err := transcript.Save(dir, text, current.StartedAt); err != nil {
				log.Printf("[SESSION] failed to persist transcript: %v", err)
			}
		}
	}
}

func (d *Daemon) onError(message string) {
	sound.Play(sound.CueError)
	fmt.Printf("Error: %s\n", message)
}

func (d *Daemon) onSkipped(reason string) {
	fmt.Printf("Skipped: %s\n", reason)
}
