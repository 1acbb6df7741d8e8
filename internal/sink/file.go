package sink

import (
	"fmt"
	"os"
	"sync"
)

// File appends one line per record to a named file, flushing after every
// write. Grounded on ieg/targets.py's TargetFile and, independently, the
// chaos framework's pkg/fuzz.Runner.appendLog idiom (O_APPEND|O_CREATE,
// write-then-flush per line).
type File struct {
	mu sync.Mutex
	f  *os.File
}

// NewFile opens (creating if necessary, appending if it exists) path for
// writing.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("sink: file target requires a \"path\"")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink: opening file target %s: %w", path, err)
	}
	return &File{f: f}, nil
}

func (s *File) Emit(rendered string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.WriteString(rendered + "\n"); err != nil {
		return err
	}
	return s.f.Sync()
}

func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
