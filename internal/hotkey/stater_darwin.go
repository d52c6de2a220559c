//go:build darwin

package hotkey

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

static int t2_modifier_flag_set(int mask) {
    CGEventFlags flags = CGEventSourceFlagsState(kCGEventSourceStateHIDSystemState);
    return (flags & (CGEventFlags)mask) != 0;
}

static int t2_key_pressed(int keyCode) {
    return CGEventSourceKeyState(kCGEventSourceStateHIDSystemState, (CGKeyCode)keyCode) ? 1 : 0;
}
*/
import "C"

// modifierMask mirrors CoreGraphics' CGEventFlags bits for the modifier
// keys this monitor supports. Left/right variants share a single OS-level
// mask on macOS, so both resolve to the same flag.
var modifierMask = map[KeyCode]C.int{
	KeyCtrlRight:  0x00040000, // kCGEventFlagMaskControl
	KeyCtrlLeft:   0x00040000,
	KeyAltRight:   0x00080000, // kCGEventFlagMaskAlternate
	KeyAltLeft:    0x00080000,
	KeyCmdRight:   0x00100000, // kCGEventFlagMaskCommand
	KeyCmdLeft:    0x00100000,
	KeyShiftRight: 0x00020000, // kCGEventFlagMaskShift
	KeyShiftLeft:  0x00020000,
}

// fKeyCode maps F1-F20 to macOS virtual key codes.
var fKeyCode = map[KeyCode]C.int{
	functionKey(1): 122, functionKey(2): 120, functionKey(3): 99,
	functionKey(4): 118, functionKey(5): 96, functionKey(6): 97,
	functionKey(7): 98, functionKey(8): 100, functionKey(9): 101,
	functionKey(10): 109, functionKey(11): 103, functionKey(12): 111,
	functionKey(13): 105, functionKey(14): 107, functionKey(15): 113,
	functionKey(16): 106, functionKey(17): 64, functionKey(18): 79,
	functionKey(19): 80, functionKey(20): 90,
}

type darwinStater struct{}

func newPlatformStater() keyStater { return darwinStater{} }

func (darwinStater) isPressed(k KeyCode) (pressed bool, known bool) {
	if mask, ok := modifierMask[k]; ok {
		return C.t2_modifier_flag_set(mask) != 0, true
	}
	if code, ok := fKeyCode[k]; ok {
		return C.t2_key_pressed(code) != 0, true
	}
	return false, false
}
