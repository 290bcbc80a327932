package stream

import "regexp"

// wordBoundary matches one complete word plus its trailing whitespace at the
// start of the pending buffer (leading whitespace included).
var wordBoundary = regexp.MustCompile(`^\s*\S+\s+`)

// Smoother coalesces raw model token fragments into word-boundary flushes.
// Models emit tokens at sub-word granularity; flushing per word gives the
// client a steady cadence without ever reordering or rewriting content: the
// concatenation of flushed chunks is exactly the concatenation of inputs.
//
// Applied to text output only. Deltas and reasoning are never smoothed.
type Smoother struct {
	flush   func(string) error
	pending string
}

// NewSmoother creates a smoother that calls flush for each complete word.
func NewSmoother(flush func(string) error) *Smoother {
	return &Smoother{flush: flush}
}

// Write appends a token fragment and flushes every complete word now in the
// buffer. A trailing partial word stays buffered until the next Write or
// Flush.
func (s *Smoother) Write(text string) error {
	s.pending += text
	for {
		loc := wordBoundary.FindStringIndex(s.pending)
		if loc == nil {
			return nil
		}
		word := s.pending[:loc[1]]
		s.pending = s.pending[loc[1]:]
		if err := s.flush(word); err != nil {
			return err
		}
	}
}

// Flush emits whatever remains in the buffer. Call once at end of turn so
// the final partial word is not lost.
func (s *Smoother) Flush() error {
	if s.pending == "" {
		return nil
	}
	rest := s.pending
	s.pending = ""
	return s.flush(rest)
}
