package stream

import (
	"strings"
	"testing"
)

func TestSmootherWordBoundaries(t *testing.T) {
	var flushed []string
	s := NewSmoother(func(chunk string) error {
		flushed = append(flushed, chunk)
		return nil
	})

	// Sub-word token fragments, as models actually emit them.
	for _, tok := range []string{"Hel", "lo wor", "ld, str", "eaming he", "re"} {
		if err := s.Write(tok); err != nil {
			t.Fatalf("Write(%q) error: %v", tok, err)
		}
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	// Content is preserved exactly.
	if got := strings.Join(flushed, ""); got != "Hello world, streaming here" {
		t.Errorf("reassembled = %q", got)
	}

	// Every flush except the last ends on a word boundary.
	for i, chunk := range flushed[:len(flushed)-1] {
		if !strings.HasSuffix(chunk, " ") {
			t.Errorf("chunk %d (%q) does not end at a word boundary", i, chunk)
		}
	}
}

func TestSmootherBuffersPartialWord(t *testing.T) {
	var flushed []string
	s := NewSmoother(func(chunk string) error {
		flushed = append(flushed, chunk)
		return nil
	})

	if err := s.Write("incomple"); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if len(flushed) != 0 {
		t.Fatalf("partial word flushed early: %v", flushed)
	}

	if err := s.Write("te "); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if len(flushed) != 1 || flushed[0] != "incomplete " {
		t.Fatalf("flushed = %v, want [\"incomplete \"]", flushed)
	}
}

func TestSmootherFlushEmitsRemainder(t *testing.T) {
	var flushed []string
	s := NewSmoother(func(chunk string) error {
		flushed = append(flushed, chunk)
		return nil
	})

	if err := s.Write("tail"); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if len(flushed) != 1 || flushed[0] != "tail" {
		t.Fatalf("flushed = %v, want [\"tail\"]", flushed)
	}

	// Flush on an empty buffer is a no-op.
	if err := s.Flush(); err != nil {
		t.Fatalf("second Flush() error: %v", err)
	}
	if len(flushed) != 1 {
		t.Fatalf("empty Flush() emitted: %v", flushed)
	}
}

func TestSmootherLeadingWhitespace(t *testing.T) {
	var flushed []string
	s := NewSmoother(func(chunk string) error {
		flushed = append(flushed, chunk)
		return nil
	})

	if err := s.Write("  spaced out "); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	if got := strings.Join(flushed, ""); got != "  spaced out " {
		t.Errorf("reassembled = %q, want %q", got, "  spaced out ")
	}
}
