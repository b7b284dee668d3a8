package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Appender is an append-only newline-delimited JSON writer. The file is
// opened in append mode so a partial-run crash never truncates history.
// Appends are serialized; one record is one atomic line.
type Appender struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// OpenAppender opens (or creates) the file at path in append mode.
func OpenAppender(path string) (*Appender, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for append: %w", path, err)
	}
	return &Appender{f: f, path: path}, nil
}

// AppendJSON marshals v and appends it as one line.
func (a *Appender) AppendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record for %s: %w", a.path, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append to %s: %w", a.path, err)
	}
	return nil
}

// Path returns the underlying file path.
func (a *Appender) Path() string {
	return a.path
}

// Close closes the underlying file.
func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.Close()
}
