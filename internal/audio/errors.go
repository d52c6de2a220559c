package audio

import "errors"

// ErrPermissionDenied is returned when the OS denies microphone access.
var ErrPermissionDenied = errors.New("audio: microphone permission denied")

// ErrDeviceUnavailable is returned when the requested input device cannot
// be opened or does not expose enough input channels.
var ErrDeviceUnavailable = errors.New("audio: device unavailable")
