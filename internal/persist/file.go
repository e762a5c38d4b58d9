// Package persist implements the Commit Chain's text persistence sink
// (a single plain-text file holding the tail commit's text) and an
// optional SQLite-backed audit log of commits.
package persist

import (
	"fmt"
	"os"
)

// FileSink writes the entire tail commit's text to a single plain-text
// file on every call to Save, overwriting prior contents.
type FileSink struct {
	path string
}

// NewFileSink returns a sink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Load reads the file's current contents, returning an empty string if
// it does not exist yet (spec §6: "Absence on startup is treated as
// empty initial content").
func (f *FileSink) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("persist: load %s: %w", f.path, err)
	}
	return string(data), nil
}

// Save overwrites the file with text.
func (f *FileSink) Save(text string) error {
	if err := os.WriteFile(f.path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("persist: save %s: %w", f.path, err)
	}
	return nil
}
