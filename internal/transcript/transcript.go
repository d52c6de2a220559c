// Package transcript persists successful transcriptions to disk. This is
// observational only: the daemon never reads these files back.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Save writes a two-line record to a new file <dir>/transcript_<epoch_ms>.txt:
// "Timestamp: <epoch_ms>" and "Text: <text>", per the specification's
// persisted-state format.
func Save(dir string, text string, at time.Time) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	epochMS := at.UnixMilli()
	path := filepath.Join(dir, fmt.Sprintf("transcript_%d.txt", epochMS))

	content := fmt.Sprintf("Timestamp: %d\nText: %s\n", epochMS, text)
	return os.WriteFile(path, []byte(content), 0644)
}
