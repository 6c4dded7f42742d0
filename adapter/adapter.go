// Package adapter implements the uniform boundary between the application
// and whatever sits on the other side of a terminal: native ttys, PTY
// children, headless in-memory harnesses, and inline sub-region writers.
// Every variant satisfies Adapter and exposes an async, backpressured write
// path so a slow consumer (a real tty, a child process) never blocks the
// render loop indefinitely.
package adapter

import (
	"github.com/mural-tui/mural/input"
	"github.com/mural-tui/mural/term"
)

// EventKind tags an Event's variant — a closed sum type, matched the same
// way widget.Kind is: a tag switch, never an open interface hierarchy.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouse
	EventResize
	EventFocusIn
	EventFocusOut
	EventPaste
)

// Event is one inbound occurrence from an adapter's input stream.
type Event struct {
	Kind EventKind

	Key    input.KeyEvent
	Mouse  input.MouseEvent
	Width  int // EventResize
	Height int // EventResize
	Paste  string
}

// Adapter is the application's sole window onto the outside world: where
// frame bytes go, where input events come from, and what the other end can
// display. Per spec §4.J.
type Adapter interface {
	// Write queues bytes for output; it returns ErrClosed if the adapter's
	// output path has been closed. Write never blocks indefinitely — it
	// applies backpressure via a bounded channel rather than an unbounded
	// queue.
	Write(p []byte) error
	// Flush blocks until all queued writes have been handed to the
	// underlying sink.
	Flush() error

	// Events returns the channel of inbound events. It is closed when the
	// adapter itself closes.
	Events() <-chan Event

	// Width and Height report the current viewport size in cells.
	Width() int
	Height() int

	// Capabilities reports color/mouse/sixel/kitty/cell-pixel support.
	Capabilities() term.Capabilities

	// EnterTUIMode switches to the alternate screen, hides the cursor,
	// and enables mouse reporting + bracketed paste.
	EnterTUIMode() error
	// ExitTUIMode reverses EnterTUIMode, restoring the normal screen.
	ExitTUIMode() error

	// Close shuts the adapter down: stops its pumps, closes Events(), and
	// releases any underlying resource (pty, raw-mode tty state, ...).
	Close() error
}
