package station

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/shelfpoint/shelfpoint/internal/scanner"
)

// LineSource adapts a keyboard-wedge barcode scanner to scanner.DecodeSource.
// Wedge scanners type the decoded text followed by a newline, so each line
// read from the input is one decode event.
//
// The reader goroutine runs for the life of the source; Start and Stop gate
// whether events are delivered, mirroring how a camera pipeline pauses
// between workflow steps without tearing down the device.
type LineSource struct {
	r io.Reader

	mu       sync.Mutex
	active   bool
	started  bool
	onDecode scanner.DecodeHandler
	onError  scanner.ErrorHandler
}

func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r}
}

func (s *LineSource) Start(ctx context.Context, _ scanner.Constraints, onDecode scanner.DecodeHandler, onError scanner.ErrorHandler) error {
	s.mu.Lock()
	s.active = true
	s.onDecode = onDecode
	s.onError = onError
	launch := !s.started
	s.started = true
	s.mu.Unlock()

	if launch {
		go s.readLoop(ctx)
	}
	return nil
}

func (s *LineSource) Stop() error {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return nil
}

// Clear is a no-op; a terminal has no preview surface to release.
func (s *LineSource) Clear() {}

func (s *LineSource) readLoop(ctx context.Context) {
	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		s.mu.Lock()
		active := s.active
		onDecode := s.onDecode
		s.mu.Unlock()

		if active && onDecode != nil {
			onDecode(text)
		}
	}
	if err := sc.Err(); err != nil {
		s.mu.Lock()
		onError := s.onError
		s.mu.Unlock()
		if onError != nil {
			onError(&scanner.CameraError{Category: scanner.CameraNotFound, Err: err})
		}
	}
}
