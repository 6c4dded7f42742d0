// Package recorder implements the asciicast v2 JSONL recording format:
// a header line followed by one JSON array per captured event. It
// implements the teacher's term.RecordingProvider interface directly, so a
// Writer can be plugged into a Terminal via term.WithRecording exactly
// like the teacher's own in-memory recorder.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mural-tui/mural/term"
)

// Ensure Writer satisfies the teacher's RecordingProvider interface, so it
// can be passed directly to term.WithRecording.
var _ term.RecordingProvider = (*Writer)(nil)

// Header is the asciicast v2 first line: format metadata, independent of
// the event stream that follows.
type Header struct {
	Version   int            `json:"version"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Command   string         `json:"command,omitempty"`
	Title     string         `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// EventKind is an asciicast v2 event stream code: "o" for terminal output,
// "i" for input, "m" for a marker.
type EventKind string

const (
	EventOutput  EventKind = "o"
	EventInput   EventKind = "i"
	EventMarker  EventKind = "m"
	EventResize  EventKind = "r"
)

// Writer appends asciicast v2 JSONL events to an underlying io.Writer. It
// satisfies term.RecordingProvider: Record appends raw output bytes as an
// "o" event timestamped relative to the recording's start.
type Writer struct {
	mu      sync.Mutex
	w       *bufio.Writer
	start   time.Time
	clock   func() time.Time
	wroteHeader bool
	pending []byte
}

// NewWriter writes header immediately, then returns a Writer ready to
// accept RecordingProvider.Record calls. clock defaults to time.Now; tests
// may override it for deterministic timestamps.
func NewWriter(w io.Writer, header Header, clock func() time.Time) (*Writer, error) {
	if clock == nil {
		clock = time.Now
	}
	if header.Version == 0 {
		header.Version = 2
	}
	rec := &Writer{w: bufio.NewWriter(w), clock: clock, start: clock()}

	line, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	if _, err := rec.w.Write(line); err != nil {
		return nil, err
	}
	if err := rec.w.WriteByte('\n'); err != nil {
		return nil, err
	}
	rec.wroteHeader = true
	return rec, nil
}

func (r *Writer) writeEvent(kind EventKind, data string) error {
	elapsed := r.clock().Sub(r.start).Seconds()
	event := []any{elapsed, string(kind), data}
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(line); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

// Record implements term.RecordingProvider: it appends data as an "o"
// event and flushes immediately, matching the teacher's synchronous
// recording semantics (its in-memory NoopRecording/RecordingProvider has
// no buffering layer of its own).
func (r *Writer) Record(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeEvent(EventOutput, string(data))
	r.w.Flush()
}

// Data returns the bytes recorded since the last Clear, matching
// RecordingProvider's read-back contract. Writer emits events
// incrementally rather than buffering, so Data always returns nil; callers
// that need read-back should read the underlying io.Writer's destination
// instead (e.g. by giving NewWriter a bytes.Buffer and reading from it
// directly).
func (r *Writer) Data() []byte { return nil }

// Clear is a no-op for Writer: once an event has been written to the
// underlying stream there is nothing to discard without corrupting the
// JSONL, unlike the teacher's in-memory NoopRecording which can freely
// truncate its own buffer.
func (r *Writer) Clear() {}

// RecordInput appends an "i" event — not part of RecordingProvider (the
// teacher's interface only captures output), but useful for a recorder
// that also wants to capture what was typed.
func (r *Writer) RecordInput(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writeEvent(EventInput, string(data)); err != nil {
		return err
	}
	return r.w.Flush()
}

// RecordResize appends an "r" event in asciicast's "WxH" text form.
func (r *Writer) RecordResize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writeEvent(EventResize, fmt.Sprintf("%dx%d", width, height)); err != nil {
		return err
	}
	return r.w.Flush()
}
