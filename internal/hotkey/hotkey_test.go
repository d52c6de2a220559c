package hotkey

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStater struct {
	mu      sync.Mutex
	pressed bool
	known   bool
}

func (f *fakeStater) isPressed(KeyCode) (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pressed, f.known
}

func (f *fakeStater) set(pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pressed = pressed
	f.known = true
}

func setStuckKeyTimeoutForTest(d time.Duration) {
	StuckKeyTimeout = d
}

func newTestMonitor(t *testing.T, key KeyCode, onPress, onRelease func()) (*Monitor, *fakeStater) {
	t.Helper()
	m, err := NewMonitor(key, onPress, onRelease)
	require.NoError(t, err)
	fs := &fakeStater{}
	m.stater = fs
	return m, fs
}

func TestNewMonitorRejectsUnsupportedKey(t *testing.T) {
	_, err := NewMonitor("banana", nil, nil)
	require.Error(t, err)
}

func TestIsValidCoversModifiersAndFunctionKeys(t *testing.T) {
	assert.True(t, IsValid(KeyCtrlRight))
	assert.True(t, IsValid(functionKey(13)))
	assert.True(t, IsValid(functionKey(20)))
	assert.False(t, IsValid(functionKey(21)))
	assert.False(t, IsValid("nope"))
}

func TestMonitorDeliversOneReleasePerPress(t *testing.T) {
	var presses, releases int32
	var mu sync.Mutex
	m, fs := newTestMonitor(t, functionKey(13),
		func() { mu.Lock(); presses++; mu.Unlock() },
		func() { mu.Lock(); releases++; mu.Unlock() },
	)

	require.NoError(t, m.Start())
	defer m.Stop()

	fs.set(true)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return presses == 1
	}, time.Second, 5*time.Millisecond)

	fs.set(false)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return releases == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StateIdle, m.State())
}

func TestReentrantPressIsSuppressed(t *testing.T) {
	var presses int32
	var mu sync.Mutex
	m, _ := newTestMonitor(t, functionKey(14),
		func() { mu.Lock(); presses++; mu.Unlock() },
		nil,
	)
	require.NoError(t, m.Start())
	defer m.Stop()

	m.HandleNativePress()
	m.HandleNativePress()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), presses)
}

func TestReleaseWhileIdleIsSuppressed(t *testing.T) {
	var releases int32
	var mu sync.Mutex
	m, _ := newTestMonitor(t, functionKey(15), nil,
		func() { mu.Lock(); releases++; mu.Unlock() },
	)
	require.NoError(t, m.Start())
	defer m.Stop()

	m.HandleNativeRelease()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(0), releases)
}

func TestWatchdogSynthesizesReleaseWhenPollerCannotObserve(t *testing.T) {
	origTimeout := StuckKeyTimeout
	t.Cleanup(func() { setStuckKeyTimeoutForTest(origTimeout) })
	setStuckKeyTimeoutForTest(30 * time.Millisecond)

	var releases int32
	var mu sync.Mutex
	m, _ := newTestMonitor(t, functionKey(16), nil,
		func() { mu.Lock(); releases++; mu.Unlock() },
	)
	require.NoError(t, m.Start())
	defer m.Stop()

	m.HandleNativePress() // poller stays "unknown", only watchdog can fire

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return releases == 1
	}, time.Second, 5*time.Millisecond)
}

func TestNativeReleaseCancelsWatchdog(t *testing.T) {
	var releases int32
	var mu sync.Mutex
	m, _ := newTestMonitor(t, functionKey(17), nil,
		func() { mu.Lock(); releases++; mu.Unlock() },
	)
	require.NoError(t, m.Start())
	defer m.Stop()

	m.HandleNativePress()
	m.HandleNativeRelease()
	m.HandleNativeRelease() // second call is a no-op, idle already

	m.mu.Lock()
	assert.Nil(t, m.watchdog, "native release must cancel the watchdog")
	m.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), releases)
}
