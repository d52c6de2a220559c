package inject

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTmuxCall struct {
	args []string
}

func fakeRunner(calls *[]fakeTmuxCall, responses map[string]string, failures map[string]error) func(ctx context.Context, args ...string) (string, error) {
	return func(ctx context.Context, args ...string) (string, error) {
		*calls = append(*calls, fakeTmuxCall{args: args})
		key := strings.Join(args, " ")
		for pattern, err := range failures {
			if strings.Contains(key, pattern) {
				return "", err
			}
		}
		for pattern, out := range responses {
			if strings.Contains(key, pattern) {
				return out, nil
			}
		}
		return "", nil
	}
}

func TestMultiplexerInjectRejectsEmptyText(t *testing.T) {
	m := NewMultiplexerInjector(&PaneTarget{Session: "work", WindowIndex: 0, PaneIndex: 1}, nil, false)
	err := m.Inject(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestMultiplexerInjectSendsPayloadWithTerminator(t *testing.T) {
	var calls []fakeTmuxCall
	m := NewMultiplexerInjector(&PaneTarget{Session: "work", WindowIndex: 0, PaneIndex: 1}, nil, false)
	m.runCommand = fakeRunner(&calls, nil, nil)

	err := m.Inject(context.Background(), "hello world")
	require.NoError(t, err)

	require.Len(t, calls, 2) // validate + send-keys
	assert.Equal(t, []string{"list-panes", "-t", "work:0.1", "-F", "#{pane_id}"}, calls[0].args)
	assert.Equal(t, []string{"send-keys", "-t", "work:0.1", "--", "hello world"}, calls[1].args)
}

func TestMultiplexerInjectFailsWhenTargetInvalid(t *testing.T) {
	var calls []fakeTmuxCall
	m := NewMultiplexerInjector(&PaneTarget{Session: "work", WindowIndex: 0, PaneIndex: 1}, nil, false)
	m.runCommand = fakeRunner(&calls, nil, map[string]error{"list-panes": errors.New("no such pane")})

	err := m.Inject(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrTargetInvalid)
	require.Len(t, calls, 1, "send-keys must not be issued when target is invalid")
}

func TestMultiplexerInjectSendsEnterOnAutoReturn(t *testing.T) {
	var calls []fakeTmuxCall
	m := NewMultiplexerInjector(&PaneTarget{Session: "work", WindowIndex: 0, PaneIndex: 1}, nil, true)
	m.runCommand = fakeRunner(&calls, nil, nil)

	err := m.Inject(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"send-keys", "-t", "work:0.1", "Enter"}, calls[2].args)
}

func TestDiscoverTargetPrefersActivePane(t *testing.T) {
	var calls []fakeTmuxCall
	m := NewMultiplexerInjector(nil, []string{"claude"}, false)
	m.runCommand = fakeRunner(&calls, map[string]string{
		"list-sessions":       "work\nother\n",
		"list-panes -t work":  "0:0:0:bash\n0:1:1:claude\n",
		"list-panes -t other": "0:0:1:vim\n",
	}, nil)

	target, err := m.DiscoverTarget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "work:0.1", target.String())
}

func TestDiscoverTargetFallsBackToFirstMatchingInactivePane(t *testing.T) {
	var calls []fakeTmuxCall
	m := NewMultiplexerInjector(nil, []string{"claude"}, false)
	m.runCommand = fakeRunner(&calls, map[string]string{
		"list-sessions":       "work\n",
		"list-panes -t work":  "0:0:1:bash\n0:1:0:claude\n0:2:0:claude-2\n",
	}, nil)

	target, err := m.DiscoverTarget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "work:0.1", target.String(), "first matching pane wins when no active pane matches")
}

func TestDiscoverTargetReportsNoTargetWhenNothingMatches(t *testing.T) {
	var calls []fakeTmuxCall
	m := NewMultiplexerInjector(nil, []string{"claude"}, false)
	m.runCommand = fakeRunner(&calls, map[string]string{
		"list-sessions":      "work\n",
		"list-panes -t work": "0:0:1:bash\n0:1:0:zsh\n",
	}, nil)

	_, err := m.DiscoverTarget(context.Background())
	assert.ErrorIs(t, err, ErrNoTargetDiscovered)
}

func TestDiscoverTargetNoSessions(t *testing.T) {
	var calls []fakeTmuxCall
	m := NewMultiplexerInjector(nil, nil, false)
	m.runCommand = fakeRunner(&calls, nil, map[string]error{"list-sessions": errors.New("no server running")})

	_, err := m.DiscoverTarget(context.Background())
	assert.ErrorIs(t, err, ErrNoTargetDiscovered)
}
