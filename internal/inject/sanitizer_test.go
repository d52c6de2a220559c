package inject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSanitizerValidatesMaxLength(t *testing.T) {
	_, err := NewSanitizer(50, true)
	require.Error(t, err)
	_, err = NewSanitizer(6000, true)
	require.Error(t, err)
	_, err = NewSanitizer(500, true)
	require.NoError(t, err)
}

func TestSanitizeEscapesShellMetacharacters(t *testing.T) {
	s, err := NewSanitizer(500, true)
	require.NoError(t, err)

	got := s.Sanitize("echo $PATH; rm -rf /")
	assert.Equal(t, `echo \$PATH\; rm -rf /`, got)
}

func TestSanitizeStripsAnsiAndNewlines(t *testing.T) {
	s, err := NewSanitizer(500, false)
	require.NoError(t, err)

	got := s.Sanitize("hello\x1b[31mred\x1b[0m\r\nworld")
	assert.NotContains(t, got, "\x1b")
	assert.NotContains(t, got, "\r")
	assert.NotContains(t, got, "\n")
	assert.Equal(t, "hellored  world", got)
}

func TestSanitizeTruncatesToMaxLength(t *testing.T) {
	s, err := NewSanitizer(100, false)
	require.NoError(t, err)

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	got := s.Sanitize(string(long))
	assert.LessOrEqual(t, len(got), 100)
}

func TestSanitizeIsIdempotent(t *testing.T) {
	s, err := NewSanitizer(500, true)
	require.NoError(t, err)

	inputs := []string{
		"echo $PATH; rm -rf /",
		"  leading and trailing  ",
		"\x1b[2Khello\r\nworld",
		"",
		"plain text",
	}
	for _, in := range inputs {
		once := s.Sanitize(in)
		twice := s.Sanitize(once)
		assert.Equal(t, once, twice, "not idempotent for %q", in)
	}
}

func TestIsSafe(t *testing.T) {
	s, err := NewSanitizer(500, true)
	require.NoError(t, err)

	assert.True(t, s.IsSafe("plain safe text"))
	assert.False(t, s.IsSafe("has $metachar"))
}

func TestSanitizeNeverLeavesRawControlSequences(t *testing.T) {
	s, err := NewSanitizer(500, true)
	require.NoError(t, err)

	got := s.Sanitize("\x1b[1;31mwarn\x1b[0m $HOME\r\nnext")
	assert.NotContains(t, got, "\x1b")
	assert.NotContains(t, got, "\r")
	assert.NotContains(t, got, "\n")
	assert.NotContains(t, got, "$HOME")
	assert.Contains(t, got, `\$HOME`)
}
