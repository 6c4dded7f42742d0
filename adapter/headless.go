package adapter

import (
	"bytes"
	"sync"

	"github.com/mural-tui/mural/term"
)

// Headless is an in-memory adapter for tests and recording: output bytes
// accumulate in a buffer instead of reaching a real terminal, and input
// events are injected programmatically rather than read from a tty.
// Grounded directly on the teacher's own examples/basic/main.go pattern of
// writing raw bytes straight into a Terminal and reading content back out.
type Headless struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	width  int
	height int
	caps   term.Capabilities
	events chan Event
	closed bool
}

// NewHeadless creates a headless adapter of the given size.
func NewHeadless(width, height int) *Headless {
	return &Headless{
		width:  width,
		height: height,
		events: make(chan Event, 256),
	}
}

func (h *Headless) Write(p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.buf.Write(p)
	return nil
}

func (h *Headless) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	return nil
}

// Output returns a copy of everything written so far, for test assertions.
func (h *Headless) Output() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]byte, h.buf.Len())
	copy(out, h.buf.Bytes())
	return out
}

func (h *Headless) Events() <-chan Event { return h.events }

func (h *Headless) Width() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width
}

func (h *Headless) Height() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.height
}

func (h *Headless) Capabilities() term.Capabilities {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.caps
}

// SetCapabilities overrides the reported capabilities (tests simulating a
// truecolor or mouse-capable terminal).
func (h *Headless) SetCapabilities(c term.Capabilities) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.caps = c
}

func (h *Headless) EnterTUIMode() error { return nil }
func (h *Headless) ExitTUIMode() error  { return nil }

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	close(h.events)
	return nil
}

// Inject programmatically delivers an event to Events(), as if it had
// arrived from a real input source. It is a no-op once the adapter is
// closed.
func (h *Headless) Inject(e Event) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return
	}
	h.events <- e
}

// Resize changes the reported size and injects a matching EventResize.
func (h *Headless) Resize(width, height int) {
	h.mu.Lock()
	h.width, h.height = width, height
	h.mu.Unlock()
	h.Inject(Event{Kind: EventResize, Width: width, Height: height})
}
