// Package app implements the single-threaded cooperative render loop that
// ties every other package together: it rebuilds a widget.Widget tree each
// invalidated frame, reconciles it into a node.Tree, measures and arranges
// it against the adapter's terminal size, renders it onto a surface.Surface,
// diffs that against the previous frame, and writes the resulting ANSI
// bytes through an adapter.Adapter.
//
// Grounded on gcla/gowid's App/IApp single-goroutine loop with its
// AfterRenderEvents channel for cross-thread invalidation, and on
// bubbletea's standardRenderer for the idea of a dedicated frame-pacing
// path distinct from the input-handling path. Popups follow gowid's
// RegisterMenu/UnregisterMenu overlay-stack pattern, generalized to this
// runtime's stale-anchor detection rule (see popup.go).
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mural-tui/mural/adapter"
	"github.com/mural-tui/mural/input"
	"github.com/mural-tui/mural/layout"
	"github.com/mural-tui/mural/node"
	"github.com/mural-tui/mural/surface"
	"github.com/mural-tui/mural/widget"
)

// Builder produces the root widget tree for the current frame. It is called
// fresh on every invalidated frame; it must be side-effect-free aside from
// reading the application's own state, since App may call it more than once
// if invalidations coalesce.
type Builder func() widget.Widget

// ErrAdapterClosed is returned from Run when the underlying adapter's event
// stream ends (the pump goroutine sees its channel close) rather than a
// cooperative Shutdown.
var ErrAdapterClosed = errors.New("app: adapter closed")

// App is the render loop. It owns the persistent node tree, focus ring,
// input matcher, popup stack, and the double-buffered surfaces used for
// diffing.
type App struct {
	adapter adapter.Adapter
	build   Builder
	logger  zerolog.Logger

	tree      *node.Tree
	focusRing node.FocusRing
	matcher   *input.Matcher
	popups    *popupStack

	comparer surface.Comparer
	encoder  surface.Encoder

	prev *surface.Surface
	pen  surface.PenState
	curX, curY int

	invalidate chan struct{}
	done       chan struct{}
}

// Option configures an App at construction time.
type Option func(*App)

// WithLogger overrides the default (disabled) logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithChordBindings installs the chord trie used to dispatch key events.
func WithChordBindings(bindings []input.Binding, clock input.TimeProvider) Option {
	return func(a *App) {
		a.matcher = input.NewMatcher(input.NewTrie(bindings), clock)
	}
}

// New constructs an App bound to the given adapter and widget builder.
func New(ad adapter.Adapter, build Builder, opts ...Option) *App {
	a := &App{
		adapter:    ad,
		build:      build,
		logger:     zerolog.Nop(),
		tree:       node.NewTree(),
		focusRing:  node.FocusRing{Index: -1},
		popups:     newPopupStack(),
		comparer:   surface.NewComparer(),
		encoder:    surface.NewEncoder(),
		invalidate: make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.matcher == nil {
		a.matcher = input.NewMatcher(input.NewTrie(nil), input.SystemTimeProvider{})
	}
	return a
}

// Invalidate requests a rebuild-and-render on the next frame. It is safe to
// call from any goroutine: the loop only ever reads the signal from its own
// select, so concurrent callers never race on App state. A pending signal
// already queued makes this a no-op, coalescing bursts of invalidations
// into a single extra frame.
func (a *App) Invalidate() {
	select {
	case a.invalidate <- struct{}{}:
	default:
	}
}

// Shutdown requests cooperative termination: the loop observes this at its
// next await point, performs a final render, restores the terminal, and
// Run returns nil.
func (a *App) Shutdown() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
}

// Run drives the render loop until ctx is canceled, Shutdown is called, or
// the adapter's event stream ends. It enters the adapter's TUI mode on
// entry and always exits it (and closes the adapter) before returning,
// even on error.
func (a *App) Run(ctx context.Context) error {
	if err := a.adapter.EnterTUIMode(); err != nil {
		return fmt.Errorf("app: entering TUI mode: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.loop(gctx)
	})

	err := group.Wait()

	if exitErr := a.adapter.ExitTUIMode(); exitErr != nil {
		a.logger.Error().Err(exitErr).Msg("exiting TUI mode")
	}
	if closeErr := a.adapter.Close(); closeErr != nil {
		a.logger.Error().Err(closeErr).Msg("closing adapter")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) loop(ctx context.Context) error {
	a.Invalidate() // always render at least once

	events := a.adapter.Events()
	for {
		var needsRender bool

		select {
		case <-ctx.Done():
			return a.finalRender()
		case <-a.done:
			return a.finalRender()
		case ev, ok := <-events:
			if !ok {
				a.finalRender()
				return ErrAdapterClosed
			}
			a.dispatch(ev)
			needsRender = true
		case <-a.invalidate:
			needsRender = true
		}

		// Drain whatever else is queued without blocking, coalescing a
		// burst of events/invalidations into this same frame.
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					a.finalRender()
					return ErrAdapterClosed
				}
				a.dispatch(ev)
				needsRender = true
			case <-a.invalidate:
				needsRender = true
			default:
				break drain
			}
		}

		if needsRender {
			if err := a.renderFrame(); err != nil {
				return err
			}
		}
	}
}

func (a *App) finalRender() error {
	return a.renderFrame()
}

func (a *App) dispatch(ev adapter.Event) {
	switch ev.Kind {
	case adapter.EventKey:
		result, action := a.matcher.Feed(ev.Key)
		if result == input.Leaf && action != nil {
			action()
			return
		}
		a.dispatchFocusedKey(ev.Key)
	case adapter.EventMouse:
		a.dispatchMouse(ev.Mouse)
	case adapter.EventResize:
		// Handled implicitly: renderFrame always measures against the
		// adapter's current Width()/Height().
	case adapter.EventPaste:
		a.dispatchPaste(ev.Paste)
	}
}

// RegisterPopup anchors a popup's own widget tree to a base-tree node,
// offset by (dx, dy) with a fixed (w, h) size (h <= 0 defaults to 1 row, w
// <= 0 defaults to the anchor's own width). A modal popup suppresses
// focused-key/mouse dispatch into the base tree until dismissed.
func (a *App) RegisterPopup(anchor node.ID, dx, dy, w, h int, modal bool, build Builder) popupID {
	return a.popups.Register(anchor, dx, dy, w, h, modal, build)
}

// DismissPopup removes a popup by the ID RegisterPopup returned.
func (a *App) DismissPopup(id popupID) {
	a.popups.Dismiss(id)
}

func (a *App) dispatchFocusedKey(key input.KeyEvent) {
	if a.popups.modalActive() {
		return
	}
	switch key.Key {
	case input.KeyTab:
		dir := input.NavigateForward
		if key.Mods&input.ModShift != 0 {
			dir = input.NavigateBackward
		}
		a.focusRing = input.Navigate(a.tree, a.focusRing, dir)
	case input.KeyEnter:
		a.activateFocused()
	}
}

func (a *App) activateFocused() {
	if a.focusRing.Index < 0 || a.focusRing.Index >= len(a.focusRing.Nodes) {
		return
	}
	id := a.focusRing.Nodes[a.focusRing.Index]
	n := a.tree.Get(id)
	if n == nil {
		return
	}
	if n.Widget.Kind == widget.KindButton && n.Widget.OnClick != nil {
		n.Widget.OnClick()
	}
}

func (a *App) dispatchMouse(m input.MouseEvent) {
	if a.popups.modalActive() {
		return
	}
	id, ok := input.HitTest(a.tree, a.focusRing, m.X, m.Y)
	if !ok {
		return
	}
	n := a.tree.Get(id)
	if n == nil {
		return
	}
	for i, nid := range a.focusRing.Nodes {
		if nid == id {
			a.focusRing.Index = i
			break
		}
	}
	if n.Widget.Kind == widget.KindButton && n.Widget.OnClick != nil {
		n.Widget.OnClick()
	}
}

func (a *App) dispatchPaste(text string) {
	if a.focusRing.Index < 0 || a.focusRing.Index >= len(a.focusRing.Nodes) {
		return
	}
	id := a.focusRing.Nodes[a.focusRing.Index]
	n := a.tree.Get(id)
	if n == nil || n.Widget.Kind != widget.KindTextBox {
		return
	}
	n.TextBox.Text += text
	if n.Widget.OnChange != nil {
		n.Widget.OnChange(n.TextBox.Text)
	}
}

// renderFrame performs spec steps 4-7: rebuild, reconcile, measure, arrange,
// render, diff, emit, swap.
func (a *App) renderFrame() error {
	w, h := a.adapter.Width(), a.adapter.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	root := a.build()
	rootID := a.tree.Reconcile(root)
	a.focusRing = a.tree.RebuildFocusRing(a.focusRing)

	c := layout.Tight(w, h)
	a.tree.Measure(rootID, c)
	a.tree.Arrange(rootID, layout.Rect{X: 0, Y: 0, W: w, H: h})

	base := surface.New(w, h)
	a.tree.Render(rootID, base)

	composite := surface.NewComposite(w, h)
	composite.PushLayer(surface.Layer{Surface: base, Opaque: true})
	a.popups.render(a.tree, composite)
	final := composite.Flatten()

	if a.prev == nil || a.prev.Width() != w || a.prev.Height() != h {
		// First frame, or a resize since the last one: there is nothing
		// valid to diff against, so force a full repaint.
		a.prev = surface.New(w, h)
	}
	diff := a.comparer.Diff(a.prev, final)
	out, newPen, newX, newY := a.encoder.Encode(diff, a.pen, a.curX, a.curY)
	a.pen, a.curX, a.curY = newPen, newX, newY

	if len(out) > 0 {
		if err := a.adapter.Write(out); err != nil {
			return fmt.Errorf("app: writing frame: %w", err)
		}
		if err := a.adapter.Flush(); err != nil {
			return fmt.Errorf("app: flushing frame: %w", err)
		}
	}

	a.prev = final
	return nil
}
