//go:build !darwin

package inject

import (
	"context"
	"errors"
	"time"
)

// ErrFocusedInjectionUnsupported is returned on platforms without a wired
// synthetic-input backend.
var ErrFocusedInjectionUnsupported = errors.New("inject: focused-window injection is not supported on this platform")

// FocusedInjector has no synthetic-input backend outside darwin in this
// build; the field layout matches the darwin variant so callers can
// construct it uniformly.
type FocusedInjector struct {
	TypingDelay time.Duration
}

// Inject always fails on this platform.
func (f *FocusedInjector) Inject(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}
	return ErrFocusedInjectionUnsupported
}
