package sink

import (
	"bufio"
	"os"
	"sync"
)

// Stdout writes one line per record to standard output, guarded by a
// mutex so concurrent entities never interleave partial lines — the Go
// equivalent of ieg/targets.py's TargetStdout class-level threading.Lock.
type Stdout struct {
	mu  sync.Mutex
	out *bufio.Writer
}

// NewStdout builds a Stdout sink writing to os.Stdout.
func NewStdout() *Stdout {
	return &Stdout{out: bufio.NewWriter(os.Stdout)}
}

func (s *Stdout) Emit(rendered string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.WriteString(rendered); err != nil {
		return err
	}
	if err := s.out.WriteByte('\n'); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Stdout) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Flush()
}
