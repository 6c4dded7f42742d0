package adapter

import (
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"

	"github.com/mural-tui/mural/input"
	mterm "github.com/mural-tui/mural/term"
)

// PTYChild opens a pseudo-terminal, launches a child process attached to
// it, and pumps the child's stdout into a dedicated VirtualTerminal
// (mterm.Terminal) so the application can render the child's screen as a
// widget. Application input is written straight to the child's stdin.
// Grounded on github.com/creack/pty (the pack's only real PTY library,
// pulled in via Tonksthebear-trybotster/go-hub's go.mod) + os/exec.
type PTYChild struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	f      *os.File
	vt     *mterm.Terminal
	reflow mterm.ReflowStrategy
	writeQ *writeQueue
	events chan Event
	width  int
	height int
	closed bool
}

// NewPTYChild starts name (with args) attached to a new pty of size
// (width, height), running the child's output through a fresh
// mterm.Terminal so its VT state can be reconciled by the node tree like
// any other widget content.
func NewPTYChild(width, height int, name string, args ...string) (*PTYChild, error) {
	cmd := exec.Command(name, args...)
	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(height), Cols: uint16(width)})
	if err != nil {
		return nil, err
	}

	vt := mterm.New(mterm.WithSize(height, width))
	p := &PTYChild{
		cmd:    cmd,
		f:      f,
		vt:     vt,
		reflow: mterm.ReflowStrategyFromEnv(),
		writeQ: newWriteQueue(f, 256),
		events: make(chan Event, 256),
		width:  width,
		height: height,
	}
	go p.pumpChildOutput()
	return p, nil
}

func (p *PTYChild) pumpChildOutput() {
	buf := make([]byte, 4096)
	for {
		n, err := p.f.Read(buf)
		if n > 0 {
			p.vt.WriteString(string(buf[:n]))
		}
		if err != nil {
			// Reached both when the child exits and after Close releases
			// the pty, so Events() is closed in either case.
			close(p.events)
			return
		}
	}
}

// VirtualTerminal returns the terminal the child's output is rendered
// into, for a widget that displays it.
func (p *PTYChild) VirtualTerminal() *mterm.Terminal { return p.vt }

func (p *PTYChild) Write(b []byte) error { return p.writeQ.Write(b) }
func (p *PTYChild) Flush() error         { return p.writeQ.Flush() }
func (p *PTYChild) Events() <-chan Event { return p.events }

func (p *PTYChild) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

func (p *PTYChild) Height() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

func (p *PTYChild) Capabilities() mterm.Capabilities {
	return mterm.DetectCapabilities(p.vt)
}

func (p *PTYChild) EnterTUIMode() error { return nil }
func (p *PTYChild) ExitTUIMode() error  { return nil }

// Resize propagates a new size to the child's pty and reflows the mirrored
// VirtualTerminal using the strategy selected at construction time
// (mterm.ReflowStrategyFromEnv), so a child whose emulator expects its
// scrollback re-wrapped on resize gets that instead of a blind crop/extend.
func (p *PTYChild) Resize(width, height int) error {
	p.mu.Lock()
	p.width, p.height = width, height
	strategy := p.reflow
	p.mu.Unlock()
	p.vt.ResizeWithStrategy(height, width, strategy)
	return pty.Setsize(p.f, &pty.Winsize{Rows: uint16(height), Cols: uint16(width)})
}

// Close terminates the child process and releases the pty.
func (p *PTYChild) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.writeQ.Close()
	p.f.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd.Wait()
	return nil
}

// InjectKey forwards a decoded key event as if it arrived from this
// adapter's own input (used by the inline-step adapter / tests; the
// PTY-child adapter's "real" input is the bytes written to it, this just
// lets the app dispatch chords against the child the same way it would any
// other focusable widget).
func (p *PTYChild) InjectKey(e input.KeyEvent) {
	select {
	case p.events <- Event{Kind: EventKey, Key: e}:
	default:
	}
}
