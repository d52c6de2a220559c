package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/talktotext/t2/internal/inject"
)

// parsePaneTarget parses the "session:window.pane" form from config into a
// PaneTarget. A malformed string falls back to auto-discovery (ok == false).
func parsePaneTarget(s string) (inject.PaneTarget, bool) {
	sessionAndRest := strings.SplitN(s, ":", 2)
	if len(sessionAndRest) != 2 {
		return inject.PaneTarget{}, false
	}

	windowAndPane := strings.SplitN(sessionAndRest[1], ".", 2)
	if len(windowAndPane) != 2 {
		return inject.PaneTarget{}, false
	}

	window, err := strconv.Atoi(windowAndPane[0])
	if err != nil {
		return inject.PaneTarget{}, false
	}
	pane, err := strconv.Atoi(windowAndPane[1])
	if err != nil {
		return inject.PaneTarget{}, false
	}

	return inject.PaneTarget{
		Session:     sessionAndRest[0],
		WindowIndex: window,
		PaneIndex:   pane,
	}, true
}

func newFocusedInjector(typingDelayMS int) *inject.FocusedInjector {
	return &inject.FocusedInjector{TypingDelay: time.Duration(typingDelayMS) * time.Millisecond}
}
