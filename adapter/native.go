package adapter

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"

	"github.com/mural-tui/mural/input"
	mterm "github.com/mural-tui/mural/term"
)

// writeQueue is the bounded-channel async write path shared by every
// adapter variant that writes to a real io.Writer: a single pump goroutine
// drains it, so Write applies backpressure instead of buffering without
// bound when the sink is slow.
type writeQueue struct {
	out    io.Writer
	ch     chan []byte
	done   chan struct{}
	flush  chan chan struct{}
	closed bool
	mu     sync.Mutex
}

func newWriteQueue(out io.Writer, capacity int) *writeQueue {
	q := &writeQueue{
		out:   out,
		ch:    make(chan []byte, capacity),
		done:  make(chan struct{}),
		flush: make(chan chan struct{}),
	}
	go q.pump()
	return q
}

func (q *writeQueue) pump() {
	for {
		select {
		case p, ok := <-q.ch:
			if !ok {
				return
			}
			q.out.Write(p)
		case ack := <-q.flush:
			// Drain anything queued ahead of the flush request first.
			draining := true
			for draining {
				select {
				case p, ok := <-q.ch:
					if !ok {
						draining = false
						break
					}
					q.out.Write(p)
				default:
					draining = false
				}
			}
			close(ack)
		case <-q.done:
			return
		}
	}
}

func (q *writeQueue) Write(p []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	q.ch <- cp
	return nil
}

func (q *writeQueue) Flush() error {
	ack := make(chan struct{})
	select {
	case q.flush <- ack:
	case <-q.done:
		return ErrClosed
	}
	<-ack
	return nil
}

func (q *writeQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()
	close(q.done)
	return nil
}

// Native is the adapter for a real controlling terminal: writes to stdout,
// reads from stdin via a cancellable reader, and tracks SIGWINCH for
// resize. Raw mode uses golang.org/x/term; the cancellable stdin reader
// uses github.com/muesli/cancelreader so Close() can unblock a pending
// read, which the teacher's single-threaded design never needed but this
// runtime's cooperative-shutdown requirement does.
type Native struct {
	mu       sync.Mutex
	stdinFd  int
	oldState *term.State
	reader   cancelreader.CancelReader
	writeQ   *writeQueue
	events   chan Event
	width    int
	height   int
	caps     mterm.Capabilities
	sigwinch chan os.Signal
	done     chan struct{}
}

// NewNative builds a Native adapter over the process's stdin/stdout.
func NewNative() (*Native, error) {
	w, h, _ := term.GetSize(int(os.Stdout.Fd()))
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}

	r, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		return nil, err
	}

	n := &Native{
		stdinFd:  int(os.Stdin.Fd()),
		reader:   r,
		writeQ:   newWriteQueue(os.Stdout, 256),
		events:   make(chan Event, 256),
		width:    w,
		height:   h,
		sigwinch: make(chan os.Signal, 1),
		done:     make(chan struct{}),
	}
	signal.Notify(n.sigwinch, syscall.SIGWINCH)
	go n.pumpInput()
	go n.pumpResize()
	return n, nil
}

func (n *Native) pumpInput() {
	buf := make([]byte, 4096)
	for {
		nRead, err := n.reader.Read(buf)
		if nRead > 0 {
			n.decodeAndEmit(buf[:nRead])
		}
		if err != nil {
			return
		}
	}
}

// decodeAndEmit is a placeholder decode step: a full VT-input decoder
// (escape sequences for arrow keys, SGR mouse reports, bracketed paste)
// belongs to the parser this adapter feeds, not to the adapter itself.
// Plain byte runs are forwarded as a sequence of rune key events.
func (n *Native) decodeAndEmit(b []byte) {
	for _, r := range string(b) {
		select {
		case n.events <- Event{Kind: EventKey, Key: input.KeyEvent{Key: input.KeyRune, Rune: r}}:
		case <-n.done:
			return
		}
	}
}

func (n *Native) pumpResize() {
	for {
		select {
		case <-n.sigwinch:
			w, h, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				continue
			}
			n.mu.Lock()
			n.width, n.height = w, h
			n.mu.Unlock()
			select {
			case n.events <- Event{Kind: EventResize, Width: w, Height: h}:
			case <-n.done:
				return
			}
		case <-n.done:
			return
		}
	}
}

func (n *Native) Write(p []byte) error { return n.writeQ.Write(p) }
func (n *Native) Flush() error         { return n.writeQ.Flush() }
func (n *Native) Events() <-chan Event { return n.events }

func (n *Native) Width() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.width
}

func (n *Native) Height() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

func (n *Native) Capabilities() mterm.Capabilities {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.caps
}

const (
	ansiEnterAltScreen    = "\x1b[?1049h"
	ansiExitAltScreen     = "\x1b[?1049l"
	ansiHideCursor        = "\x1b[?25l"
	ansiShowCursor        = "\x1b[?25h"
	ansiEnableMouse       = "\x1b[?1000h\x1b[?1006h"
	ansiDisableMouse      = "\x1b[?1000l\x1b[?1006l"
	ansiEnableBracketPaste  = "\x1b[?2004h"
	ansiDisableBracketPaste = "\x1b[?2004l"
)

func (n *Native) EnterTUIMode() error {
	oldState, err := term.MakeRaw(n.stdinFd)
	if err != nil {
		return err
	}
	n.oldState = oldState
	return n.Write([]byte(ansiEnterAltScreen + ansiHideCursor + ansiEnableMouse + ansiEnableBracketPaste))
}

func (n *Native) ExitTUIMode() error {
	err := n.Write([]byte(ansiDisableBracketPaste + ansiDisableMouse + ansiShowCursor + ansiExitAltScreen))
	if err != nil {
		return err
	}
	if flushErr := n.Flush(); flushErr != nil {
		return flushErr
	}
	if n.oldState != nil {
		return term.Restore(n.stdinFd, n.oldState)
	}
	return nil
}

func (n *Native) Close() error {
	select {
	case <-n.done:
		return nil
	default:
	}
	close(n.done)
	signal.Stop(n.sigwinch)
	n.reader.Cancel()
	n.reader.Close()
	close(n.events)
	return n.writeQ.Close()
}
