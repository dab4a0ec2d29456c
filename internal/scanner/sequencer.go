package scanner

import "sync"

// Code is a decoded barcode payload, treated as an opaque identifier.
type Code string

// Sequencer turns the raw decode event stream into discrete codes. Decoders
// re-read the same frame many times per second, so consecutive repeats of
// the last accepted text are suppressed; Reset clears that memory when the
// workflow advances to a new step, because scanning the same literal code
// again is legitimate across steps.
//
// The sequencer holds no other state and never touches the decode source or
// the network.
type Sequencer struct {
	mu   sync.Mutex
	last Code
	seen bool
}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Accept reports whether text is a physically distinct scan, returning the
// code exactly once per run of identical consecutive events.
func (s *Sequencer) Accept(text string) (Code, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := Code(text)
	if s.seen && code == s.last {
		return "", false
	}
	s.last = code
	s.seen = true
	return code, true
}

// Reset forgets the last accepted code.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = ""
	s.seen = false
}
