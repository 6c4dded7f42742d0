package app

import (
	"github.com/mural-tui/mural/layout"
	"github.com/mural-tui/mural/node"
	"github.com/mural-tui/mural/surface"
)

// popupID identifies one registered popup across calls to RegisterPopup /
// DismissPopup, independent of its position in the stack.
type popupID uint64

// popup is one modal or non-modal overlay anchored to a node in the base
// tree. Following gowid's RegisterMenu/UnregisterMenu pattern
// (other_examples gcla-gowid), generalized here to detect a stale anchor
// (the anchored node destroyed by a base-tree reconcile) and auto-dismiss
// rather than render against a dangling reference.
type popup struct {
	id     popupID
	anchor node.ID
	modal  bool
	build  Builder
	dx, dy int // offset from the anchor's top-left corner
	w, h   int // fixed popup size

	tree      *node.Tree
	focusRing node.FocusRing
}

// popupStack is the ordered set of active popups, rendered in registration
// order above the base layer (last registered draws topmost).
type popupStack struct {
	nextID popupID
	items  []*popup
}

func newPopupStack() *popupStack {
	return &popupStack{}
}

// Register adds a popup anchored to a base-tree node and returns an ID for
// later dismissal. modal popups capture focus: the owning App should refuse
// to route focused-key dispatch to the base tree while any modal popup is
// active (left to the App's dispatch logic, not enforced here).
func (s *popupStack) Register(anchor node.ID, dx, dy, w, h int, modal bool, build Builder) popupID {
	s.nextID++
	s.items = append(s.items, &popup{
		id:        s.nextID,
		anchor:    anchor,
		modal:     modal,
		build:     build,
		dx:        dx,
		dy:        dy,
		w:         w,
		h:         h,
		tree:      node.NewTree(),
		focusRing: node.FocusRing{Index: -1},
	})
	return s.nextID
}

// Dismiss removes a popup by ID. A no-op if already gone.
func (s *popupStack) Dismiss(id popupID) {
	for i, p := range s.items {
		if p.id == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// modalActive reports whether any modal popup is currently registered.
func (s *popupStack) modalActive() bool {
	for _, p := range s.items {
		if p.modal {
			return true
		}
	}
	return false
}

// render draws every live popup onto composite, dropping (and forgetting)
// any whose anchor node no longer exists in baseTree — the stale-anchor
// rule: a popup outlives at most one reconcile past its anchor's removal.
func (s *popupStack) render(baseTree *node.Tree, composite *surface.CompositeSurface) {
	live := s.items[:0]
	for _, p := range s.items {
		anchorNode := baseTree.Get(p.anchor)
		if anchorNode == nil {
			continue // stale anchor: dismiss silently
		}
		live = append(live, p)

		ox := anchorNode.Bounds.X + p.dx
		oy := anchorNode.Bounds.Y + p.dy
		w, h := p.w, p.h
		if w <= 0 {
			w = anchorNode.Bounds.W
		}
		if h <= 0 {
			h = 1
		}

		root := p.tree.Reconcile(p.build())
		p.focusRing = p.tree.RebuildFocusRing(p.focusRing)
		p.tree.Measure(root, layout.Tight(w, h))
		p.tree.Arrange(root, layout.Rect{X: 0, Y: 0, W: w, H: h})

		surf := surface.New(w, h)
		p.tree.Render(root, surf)
		composite.PushLayer(surface.Layer{Surface: surf, OriginX: ox, OriginY: oy, Opaque: p.modal})
	}
	s.items = live
}
