package station

import (
	"fmt"
	"io"
	"sync"

	"github.com/shelfpoint/shelfpoint/internal/scanner"
)

// ConsoleSink renders workflow status to a terminal for the operator
// standing at the station.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) StateChanged(state scanner.State) {
	s.printf("[%s]\n", state)
}

func (s *ConsoleSink) Prompt(msg string) {
	s.printf(">> %s\n", msg)
}

func (s *ConsoleSink) Success(msg string) {
	s.printf("OK: %s\n", msg)
}

func (s *ConsoleSink) Failure(msg string) {
	s.printf("ERROR: %s\n", msg)
}

func (s *ConsoleSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}
