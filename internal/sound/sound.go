// Package sound plays the short audio cues that give the user feedback at
// recording-session transitions: start, stop, and error; skips play no cue. It is
// adapted from the teacher's internal/audio/beep.go, generalized with an
// error tone (spec §7: terminal errors play an error sound; skips do not).
package sound

import (
	"os/exec"
	"runtime"

	"github.com/gen2brain/beeep"
)

// Cue identifies which tone to play.
type Cue int

const (
	CueStart Cue = iota
	CueStop
	CueError
)

// Play emits the system cue for c, falling back to a platform beep command
// if the cross-platform beeep call fails (e.g. no sound server available).
func Play(c Cue) {
	var (
		freq float64
		dur  int
		osa  string
	)
	switch c {
	case CueStart:
		freq, dur, osa = beeep.DefaultFreq, beeep.DefaultDuration/2, "beep 1"
	case CueStop:
		freq, dur, osa = beeep.DefaultFreq*2, beeep.DefaultDuration/3, "beep 2"
	case CueError:
		freq, dur, osa = beeep.DefaultFreq/2, beeep.DefaultDuration, "beep 3"
	default:
		return
	}

	if err := beeep.Beep(freq, dur); err != nil && runtime.GOOS == "darwin" {
		_ = exec.Command("osascript", "-e", osa).Run()
	}
}
