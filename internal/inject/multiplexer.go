package inject

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// PaneTarget identifies a single tmux pane as session:window.pane.
type PaneTarget struct {
	Session        string
	WindowIndex    int
	PaneIndex      int
	CurrentCommand string
}

// String renders the target in tmux's "-t" argument form.
func (t PaneTarget) String() string {
	return fmt.Sprintf("%s:%d.%d", t.Session, t.WindowIndex, t.PaneIndex)
}

// MultiplexerInjector sends text to a tmux pane via `send-keys`, grounded
// on original_source/core/tmux_injector.py. The daemon sanitizes payloads
// for this injector with shell escaping on (config sanitizer_escape_shell,
// true by default), since the payload crosses a shell-adjacent boundary.
type MultiplexerInjector struct {
	// Target is the explicit pane to use. If nil, Inject resolves one via
	// DiscoverTarget on first use.
	Target *PaneTarget
	// CommandNames is the ordered list of pane_current_command substrings
	// used to pick an active pane during auto-discovery (e.g. "claude").
	CommandNames []string
	// AutoReturn submits an Enter keystroke after the payload settles.
	AutoReturn bool

	runCommand func(ctx context.Context, args ...string) (string, error)
}

// NewMultiplexerInjector returns an injector using target if non-nil, or
// one that will auto-discover a pane matching commandNames on first Inject.
func NewMultiplexerInjector(target *PaneTarget, commandNames []string, autoReturn bool) *MultiplexerInjector {
	return &MultiplexerInjector{
		Target:       target,
		CommandNames: commandNames,
		AutoReturn:   autoReturn,
		runCommand:   runTmux,
	}
}

func runTmux(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "tmux", args...).Output()
	return string(out), err
}

// Inject validates the target is live, then sends the payload followed
// optionally by Enter.
func (m *MultiplexerInjector) Inject(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}

	if m.Target == nil {
		target, err := m.DiscoverTarget(ctx)
		if err != nil {
			return err
		}
		m.Target = target
	}

	if !m.validateTarget(ctx) {
		return ErrTargetInvalid
	}

	targetStr := m.Target.String()
	if _, err := m.runCommand(ctx, "send-keys", "-t", targetStr, "--", text); err != nil {
		log.Printf("[INJECT] send-keys failed for %s: %v", targetStr, err)
		return fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}

	if m.AutoReturn {
		time.Sleep(100 * time.Millisecond)
		if _, err := m.runCommand(ctx, "send-keys", "-t", targetStr, "Enter"); err != nil {
			log.Printf("[INJECT] auto-return send-keys failed for %s: %v", targetStr, err)
			return fmt.Errorf("%w: %v", ErrInjectionFailed, err)
		}
	}

	return nil
}

func (m *MultiplexerInjector) validateTarget(ctx context.Context) bool {
	if m.Target == nil {
		return false
	}
	_, err := m.runCommand(ctx, "list-panes", "-t", m.Target.String(), "-F", "#{pane_id}")
	return err == nil
}

// DiscoverTarget enumerates all panes across all sessions, per spec's
// target-discovery priority: the active pane whose current command matches
// one of CommandNames wins outright; absent an active match, the first
// matching pane (active or not) is used; absent any match at all,
// ErrNoTargetDiscovered is returned rather than an arbitrary unrelated pane.
func (m *MultiplexerInjector) DiscoverTarget(ctx context.Context) (*PaneTarget, error) {
	sessionsOut, err := m.runCommand(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		return nil, ErrNoTargetDiscovered
	}

	var firstMatch *PaneTarget
	for _, session := range splitNonEmptyLines(sessionsOut) {
		panesOut, err := m.runCommand(ctx, "list-panes", "-t", session, "-F",
			"#{window_index}:#{pane_index}:#{pane_active}:#{pane_current_command}")
		if err != nil {
			continue
		}
		for _, line := range splitNonEmptyLines(panesOut) {
			target, active, ok := parsePaneLine(session, line)
			if !ok || !m.matchesCommand(target.CurrentCommand) {
				continue
			}
			if active {
				t := target
				return &t, nil
			}
			if firstMatch == nil {
				t := target
				firstMatch = &t
			}
		}
	}

	if firstMatch != nil {
		return firstMatch, nil
	}
	return nil, ErrNoTargetDiscovered
}

func (m *MultiplexerInjector) matchesCommand(cmd string) bool {
	for _, name := range m.CommandNames {
		if strings.Contains(strings.ToLower(cmd), strings.ToLower(name)) {
			return true
		}
	}
	return false
}

func parsePaneLine(session, line string) (target PaneTarget, active bool, ok bool) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 3 {
		return PaneTarget{}, false, false
	}
	window, err := strconv.Atoi(parts[0])
	if err != nil {
		return PaneTarget{}, false, false
	}
	pane, err := strconv.Atoi(parts[1])
	if err != nil {
		return PaneTarget{}, false, false
	}
	active = parts[2] == "1"
	cmd := ""
	if len(parts) == 4 {
		cmd = parts[3]
	}
	return PaneTarget{
		Session:        session,
		WindowIndex:    window,
		PaneIndex:      pane,
		CurrentCommand: cmd,
	}, active, true
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
