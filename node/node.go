// Package node implements the persistent, mutable counterpart to package
// widget's immutable tree: an arena of Nodes addressed by index (not
// pointer), the reconcile algorithm that diffs a fresh Widget tree against
// existing Nodes, and the post-reconcile focus ring.
//
// Grounded on the spec's explicit design note to use an arena of indices
// rather than a pointer graph (trivially acyclic, no ownership ambiguity)
// and on gowid's IWidget/render-context separation (other_examples
// gcla-gowid) for keeping Measure/Arrange/Render as per-variant dispatch on
// a closed tag rather than an open interface hierarchy.
package node

import (
	"github.com/mural-tui/mural/layout"
	"github.com/mural-tui/mural/widget"
)

// ID addresses a Node within a Tree's arena. The zero ID is never valid
// (arena slot 0 is reserved) so a zero ID can double as "no node".
type ID uint32

const invalidID ID = 0

// ScrollState is the per-node state of a KindScroll node: how far its
// content is scrolled.
type ScrollState struct {
	OffsetX, OffsetY int
}

// TextBoxState is the per-node state of a KindTextBox node.
type TextBoxState struct {
	Text           string
	Cursor         int
	SelectionStart int
	SelectionEnd   int
}

// ListState is the per-node state of a KindList/KindPicker node.
type ListState struct {
	SelectedIndex int
}

// SplitterState is the per-node state of a KindSplitter node: the
// user-dragged boundary sizes, overriding the widget's initial Splits.
type SplitterState struct {
	Sizes []int
}

// Node is the mutable, persistent counterpart to a widget.Widget at one
// tree position. It survives across frames as long as the widget at its
// slot keeps the same variant (widget.SameVariant); otherwise it is
// destroyed and a fresh Node constructed in its place.
type Node struct {
	id       ID
	parent   ID
	children []ID

	Widget widget.Widget

	Measured    layout.Size
	Bounds      layout.Rect
	HitBounds   layout.Rect
	IsFocusable bool
	Dirty       bool

	Scroll   ScrollState
	TextBox  TextBoxState
	List     ListState
	Splitter SplitterState

	// SpinnerTick advances once per frame for a KindSpinner node, driving
	// its animation independent of the render cache fingerprint.
	SpinnerTick int

	RenderFingerprint uint64
}

// Tree owns the node arena for one application instance.
type Tree struct {
	nodes []Node // index 0 reserved/unused so ID 0 means "none"
	root  ID
}

// NewTree returns an empty tree with no root.
func NewTree() *Tree {
	return &Tree{nodes: make([]Node, 1)}
}

// Root returns the tree's root node ID, or invalidID if never reconciled.
func (t *Tree) Root() ID { return t.root }

// Get returns a pointer to the node with the given id, or nil if id is
// invalid, out of range, or belongs to a destroyed node. The pointer is
// valid until the next Reconcile call that might grow/reuse the arena.
func (t *Tree) Get(id ID) *Node {
	if id == invalidID || int(id) >= len(t.nodes) || t.nodes[id].id == invalidID {
		return nil
	}
	return &t.nodes[id]
}

// Parent returns n's parent ID, or invalidID (0) for the root.
func (n *Node) Parent() ID { return n.parent }

// Children returns id's child node IDs in document order.
func (t *Tree) Children(id ID) []ID {
	n := t.Get(id)
	if n == nil {
		return nil
	}
	return n.children
}

func (t *Tree) alloc(parent ID, w widget.Widget) ID {
	n := Node{Widget: w, parent: parent, IsFocusable: w.Focusable}
	t.nodes = append(t.nodes, n)
	id := ID(len(t.nodes) - 1)
	t.nodes[id].id = id
	return id
}

// destroySubtree frees id and all of its descendants by clearing their
// arena slots. Freed slots are never reused (the arena only grows) — this
// keeps IDs stable for the lifetime of the tree, which focus-ring identity
// preservation across reconciles depends on.
func (t *Tree) destroySubtree(id ID) {
	n := t.Get(id)
	if n == nil {
		return
	}
	for _, c := range n.children {
		t.destroySubtree(c)
	}
	t.nodes[id] = Node{}
}

// Reconcile rebuilds the tree from a freshly-built root widget, per spec
// §4.G: construct on first encounter, destroy-and-reconstruct on a variant
// mismatch, otherwise update in place and recurse into children aligned by
// position. It returns the (possibly new) root ID.
func (t *Tree) Reconcile(w widget.Widget) ID {
	t.root = t.reconcile(t.root, invalidID, w)
	return t.root
}

func (t *Tree) reconcile(existing ID, parent ID, w widget.Widget) ID {
	cur := t.Get(existing)
	if cur == nil || !widget.SameVariant(cur.Widget, w) {
		if cur != nil {
			t.destroySubtree(existing)
		}
		existing = t.alloc(parent, w)
		cur = t.Get(existing)
	} else {
		cur.Widget = w
		cur.IsFocusable = w.Focusable
		cur.parent = parent
	}

	// Reconciling children may grow the arena and move it, so cur is not
	// used past this point; the node is re-addressed by its ID instead.
	oldChildren := cur.children
	newChildren := make([]ID, len(w.Children))
	for i, cw := range w.Children {
		var prevChild ID
		if i < len(oldChildren) {
			prevChild = oldChildren[i]
		}
		newChildren[i] = t.reconcile(prevChild, existing, cw)
	}
	// Extra existing children beyond the new widget's count are destroyed.
	for i := len(w.Children); i < len(oldChildren); i++ {
		t.destroySubtree(oldChildren[i])
	}
	t.nodes[existing].children = newChildren
	return existing
}

// FocusRing is the ordered set of focusable nodes rebuilt after every
// reconcile, plus the current focus index into that set.
type FocusRing struct {
	Nodes []ID
	Index int
}

// RebuildFocusRing walks the tree in document order collecting focusable
// nodes, then tries to preserve the previous focus by node identity (an ID
// surviving reconcile keeps its focus); if the previously focused ID is
// gone, focus resets to 0 (or -1 if the ring is empty).
func (t *Tree) RebuildFocusRing(prev FocusRing) FocusRing {
	var ids []ID
	var walk func(ID)
	walk = func(id ID) {
		n := t.Get(id)
		if n == nil {
			return
		}
		if n.IsFocusable {
			ids = append(ids, id)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)

	ring := FocusRing{Nodes: ids, Index: -1}
	if len(ids) == 0 {
		return ring
	}

	var prevID ID
	if prev.Index >= 0 && prev.Index < len(prev.Nodes) {
		prevID = prev.Nodes[prev.Index]
	}
	for i, id := range ids {
		if id == prevID {
			ring.Index = i
			return ring
		}
	}
	ring.Index = 0
	return ring
}
