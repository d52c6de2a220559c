// Package session implements the recording-session state machine that ties
// the hotkey monitor, audio capture, transcription worker, and text injector
// together into a single push-to-talk interaction.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Status is one node of the recording session's state DAG.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusRecording    Status = "recording"
	StatusTranscribing Status = "transcribing"
	StatusInjecting    Status = "injecting"
	StatusComplete     Status = "complete"
	StatusTimeout      Status = "timeout"
	StatusCancelled    Status = "cancelled"
	StatusError        Status = "error"
	StatusSkipped      Status = "skipped"
)

// Session is a single push-to-talk interaction. It is owned exclusively by
// the Orchestrator and becomes immutable once it reaches a terminal status.
type Session struct {
	ID            string
	StartedAt     time.Time
	EndedAt       time.Time
	DurationMS    int64
	Transcription string
	Status        Status
	Error         string
}

// IsTerminal reports whether status has no outgoing edges in the state DAG.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusComplete, StatusTimeout, StatusCancelled, StatusError, StatusSkipped:
		return true
	default:
		return false
	}
}

func newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Status:    StatusRecording,
	}
}

func (s *Session) finish(now time.Time) {
	s.EndedAt = now
	if !s.StartedAt.IsZero() {
		s.DurationMS = now.Sub(s.StartedAt).Milliseconds()
	}
}
