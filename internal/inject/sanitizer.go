// Package inject implements the input sanitizer and the two text-injection
// backends (focused window, multiplexer pane) that sit at the boundary
// where transcribed text leaves the daemon and enters another program.
package inject

import (
	"fmt"
	"regexp"
	"strings"
)

// shellMetacharacters is the fixed set of characters escaped when
// escape_shell is enabled, in the exact order specified.
const shellMetacharacters = "$`\\\"'|&;><(){}[]!*?~#"

var ansiCSI = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// Sanitizer cleans a raw transcription into a byte-safe payload for a
// chosen injection target. It is a direct port of
// original_source/utils/sanitizer.py's InputSanitizer.
type Sanitizer struct {
	MaxLength   int
	EscapeShell bool
}

// NewSanitizer validates maxLength against the documented [100, 5000]
// range and returns a configured Sanitizer.
func NewSanitizer(maxLength int, escapeShell bool) (*Sanitizer, error) {
	if maxLength < 100 || maxLength > 5000 {
		return nil, fmt.Errorf("inject: max_length %d out of range [100, 5000]", maxLength)
	}
	return &Sanitizer{MaxLength: maxLength, EscapeShell: escapeShell}, nil
}

// Sanitize runs the five-step pipeline from the specification:
// strip ANSI CSI sequences, fold CR/LF to spaces, optionally escape shell
// metacharacters, truncate to MaxLength bytes, then trim whitespace.
func (s *Sanitizer) Sanitize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	result := ansiCSI.ReplaceAllString(text, "")
	result = strings.ReplaceAll(result, "\r", " ")
	result = strings.ReplaceAll(result, "\n", " ")

	if s.EscapeShell {
		result = escapeMetacharacters(result)
	}

	if len(result) > s.MaxLength {
		result = result[:s.MaxLength]
	}

	return strings.TrimSpace(result)
}

// escapeMetacharacters prefixes every shellMetacharacters occurrence with a
// backslash, treating a backslash already followed by a metacharacter as a
// previously-escaped pair and leaving it untouched. Without that check,
// backslash is itself one of the escaped characters, so escaping it would
// never reach a fixed point under repeated application.
func escapeMetacharacters(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) && strings.ContainsRune(shellMetacharacters, runes[i+1]) {
			b.WriteRune(r)
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		if strings.ContainsRune(shellMetacharacters, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsSafe reports whether text is already in its sanitized form.
func (s *Sanitizer) IsSafe(text string) bool {
	return text == s.Sanitize(text)
}
