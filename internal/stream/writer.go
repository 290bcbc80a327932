// Package stream carries one turn's output to the client over a single
// Server-Sent Events channel: smoothed text chunks, reasoning trace,
// out-of-band artifact deltas, at most one error, and exactly one terminal
// done event.
//
// Writes are mutex-serialized, so events of each kind reach the wire in
// emission order and a delta is never reordered relative to another delta.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/fathom0/fathom/internal/artifact"
)

// SSE event names on the turn channel.
const (
	EventChunk     = "chunk"
	EventReasoning = "reasoning"
	EventDelta     = "delta"
	EventError     = "error"
	EventDone      = "done"
)

// ErrClosed is returned for writes after the terminal done event.
var ErrClosed = errors.New("stream already closed")

// ChunkPayload carries one smoothed text chunk.
type ChunkPayload struct {
	Content string `json:"content"`
}

// ReasoningPayload carries one reasoning-trace fragment.
type ReasoningPayload struct {
	Content string `json:"content"`
}

// ErrorPayload is the single user-visible error event.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DonePayload terminates the turn.
type DonePayload struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId,omitempty"`
}

// Writer multiplexes a turn's events onto an SSE response.
// Safe for concurrent use; tool goroutines and the model callback may write
// interleaved events.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
}

// NewWriter creates an SSE writer and sets the streaming headers.
// Fails if the ResponseWriter cannot flush, since buffered SSE defeats the
// point.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flusher interface")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteChunk sends a smoothed text chunk.
func (w *Writer) WriteChunk(text string) error {
	return w.writeEvent(EventChunk, ChunkPayload{Content: text})
}

// WriteReasoning sends a reasoning-trace fragment.
func (w *Writer) WriteReasoning(text string) error {
	return w.writeEvent(EventReasoning, ReasoningPayload{Content: text})
}

// WriteDelta sends an artifact delta envelope.
func (w *Writer) WriteDelta(d artifact.Delta) error {
	return w.writeEvent(EventDelta, d)
}

// WriteError sends the single user-visible error event. The stream stays
// open; the handler still terminates it with done or by closing the
// connection.
func (w *Writer) WriteError(code, message string) error {
	return w.writeEvent(EventError, ErrorPayload{Code: code, Message: message})
}

// WriteDone sends the terminal event and closes the writer. Further writes
// return ErrClosed.
func (w *Writer) WriteDone(p DonePayload) error {
	if err := w.writeEvent(EventDone, p); err != nil {
		return err
	}
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

// writeEvent marshals the payload and writes one SSE event under the lock.
func (w *Writer) writeEvent(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	if _, err := fmt.Fprintf(w.w, "event: %s\n", event); err != nil {
		return fmt.Errorf("write event name: %w", err)
	}
	// SSE requires every line of the data field to carry the prefix.
	for _, line := range strings.Split(string(data), "\n") {
		if _, err := fmt.Fprintf(w.w, "data: %s\n", line); err != nil {
			return fmt.Errorf("write data line: %w", err)
		}
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}

	w.flusher.Flush()
	return nil
}
