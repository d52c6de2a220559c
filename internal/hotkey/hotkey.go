// Package hotkey monitors a single configured key for push-to-talk
// press/release edges. It generalizes the teacher's
// internal/hotkeys/{manager,simple}.go (which hardcoded a macOS-only
// Ctrl+Shift combo) to the full vocabulary from the specification: the
// modifier keys and F1-F20, with a watchdog timer and an active-polling
// fallback so a release is always eventually delivered even if the host
// terminal UI swallows the native key-up event.
package hotkey

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// KeyCode names one of the supported hotkeys.
type KeyCode string

const (
	KeyCtrlRight  KeyCode = "ctrl_r"
	KeyCtrlLeft   KeyCode = "ctrl_l"
	KeyAltRight   KeyCode = "alt_r"
	KeyAltLeft    KeyCode = "alt_l"
	KeyCmdRight   KeyCode = "cmd_r"
	KeyCmdLeft    KeyCode = "cmd_l"
	KeyShiftRight KeyCode = "shift_r"
	KeyShiftLeft  KeyCode = "shift_l"
)

func functionKey(n int) KeyCode { return KeyCode(fmt.Sprintf("f%d", n)) }

// SupportedKeys lists every hotkey name the monitor accepts: the modifier
// keys plus F1 through F20.
func SupportedKeys() []KeyCode {
	keys := []KeyCode{
		KeyCtrlRight, KeyCtrlLeft, KeyAltRight, KeyAltLeft,
		KeyCmdRight, KeyCmdLeft, KeyShiftRight, KeyShiftLeft,
	}
	for i := 1; i <= 20; i++ {
		keys = append(keys, functionKey(i))
	}
	return keys
}

// IsValid reports whether k is one of SupportedKeys.
func IsValid(k KeyCode) bool {
	for _, s := range SupportedKeys() {
		if s == k {
			return true
		}
	}
	return false
}

func supportedList() string {
	keys := SupportedKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	sort.Strings(names)
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// State is the monitored hotkey's current state.
type State int

const (
	StateIdle State = iota
	StatePressed
)

// StuckKeyTimeout is the watchdog fallback: if a release is not observed
// within this long after a press, one is synthesized. Variable (not const)
// so tests can shrink it instead of sleeping 30 real seconds.
var StuckKeyTimeout = 30 * time.Second

// PollInterval is how often the live key-state poller checks whether the
// configured key is still physically depressed.
const PollInterval = 100 * time.Millisecond

// keyStater abstracts the platform-specific "is this key still physically
// held down" query so Monitor can be unit tested without real OS input
// hooks. The darwin implementation backs it with CoreGraphics; other
// platforms fall back to "unknown" and rely solely on the watchdog.
type keyStater interface {
	isPressed(k KeyCode) (pressed bool, known bool)
}

// Monitor reports press/release edges for one configured hotkey.
// Re-entrant presses while already pressed, and releases while idle, are
// suppressed. For every delivered OnPress, exactly one OnRelease (native,
// polled, or watchdog-synthesized) is eventually delivered, unless Stop is
// called first: Stop cancels the pending release without delivering it.
type Monitor struct {
	key       KeyCode
	OnPress   func()
	OnRelease func()

	stater keyStater

	mu           sync.Mutex
	state        State
	watchdog     *time.Timer
	stopPoll     chan struct{}
	releaseOnce  *sync.Once
	running      bool
	externalDone chan struct{}
}

// NewMonitor constructs a Monitor for key. onPress/onRelease run on the
// monitor's internal goroutines and must not block.
func NewMonitor(key KeyCode, onPress, onRelease func()) (*Monitor, error) {
	if !IsValid(key) {
		return nil, fmt.Errorf("hotkey: unsupported key %q, supported: %s", key, supportedList())
	}
	return &Monitor{
		key:       key,
		OnPress:   onPress,
		OnRelease: onRelease,
		stater:    newPlatformStater(),
		state:     StateIdle,
	}, nil
}

// Start begins listening for native press events. Non-blocking.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.externalDone = make(chan struct{})
	done := m.externalDone
	m.mu.Unlock()

	go m.edgeDetectLoop(done)
	return nil
}

// edgeDetectLoop stands in for a true OS-level keyboard hook: it detects
// the rising edge (key-down) of the configured key by polling the platform
// key-state API, matching the teacher's own "simple polling approach"
// (internal/hotkeys/simple.go). Release detection is handled separately by
// the per-press poller started from HandleNativePress, since the whole
// reason that poller exists is that release events are the ones liable to
// be swallowed by a host terminal UI, not presses.
func (m *Monitor) edgeDetectLoop(done chan struct{}) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	wasPressed := false
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			pressed, known := m.stater.isPressed(m.key)
			if !known {
				continue
			}
			if pressed && !wasPressed {
				wasPressed = true
				m.HandleNativePress()
			} else if !pressed && wasPressed {
				wasPressed = false
			}
		}
	}
}

// Stop cancels timers/pollers and stops listening. Cleanup errors are
// swallowed so shutdown never blocks indefinitely.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	m.cancelWatchdogLocked()
	if m.stopPoll != nil {
		close(m.stopPoll)
		m.stopPoll = nil
	}
	if m.externalDone != nil {
		close(m.externalDone)
		m.externalDone = nil
	}
	m.state = StateIdle
}

// HandleNativePress feeds a native key-down edge into the monitor. Call
// this from the platform listener callback.
func (m *Monitor) HandleNativePress() {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return
	}
	m.state = StatePressed
	once := &sync.Once{}
	m.releaseOnce = once
	m.stopPoll = make(chan struct{})
	m.startWatchdogLocked(once)
	stopPoll := m.stopPoll
	m.mu.Unlock()

	go m.pollLoop(once, stopPoll)

	if m.OnPress != nil {
		m.OnPress()
	}
}

// HandleNativeRelease feeds a native key-up edge into the monitor. If a
// watchdog or the poller already fired for this press, this is a no-op.
func (m *Monitor) HandleNativeRelease() {
	m.mu.Lock()
	once := m.releaseOnce
	m.mu.Unlock()
	if once == nil {
		return
	}
	m.fireRelease(once)
}

func (m *Monitor) startWatchdogLocked(once *sync.Once) {
	m.watchdog = time.AfterFunc(StuckKeyTimeout, func() {
		log.Printf("[HOTKEY] watchdog fired for %s, synthesizing release", m.key)
		m.fireRelease(once)
	})
}

func (m *Monitor) cancelWatchdogLocked() {
	if m.watchdog != nil {
		m.watchdog.Stop()
		m.watchdog = nil
	}
}

func (m *Monitor) pollLoop(once *sync.Once, stop chan struct{}) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pressed, known := m.stater.isPressed(m.key)
			if known && !pressed {
				m.fireRelease(once)
				return
			}
		}
	}
}

// fireRelease converges all three release paths (native, poll, watchdog)
// onto a single call via sync.Once, guaranteeing the "exactly one release"
// invariant.
func (m *Monitor) fireRelease(once *sync.Once) {
	once.Do(func() {
		m.mu.Lock()
		m.state = StateIdle
		m.cancelWatchdogLocked()
		if m.stopPoll != nil {
			close(m.stopPoll)
			m.stopPoll = nil
		}
		m.releaseOnce = nil
		m.mu.Unlock()

		if m.OnRelease != nil {
			m.OnRelease()
		}
	})
}

// State returns the monitor's current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
