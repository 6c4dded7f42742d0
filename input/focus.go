package input

import "github.com/mural-tui/mural/node"

// NavigateDirection is the direction Tab/Shift+Tab moves focus.
type NavigateDirection int

const (
	NavigateForward NavigateDirection = iota
	NavigateBackward
)

// Navigate advances ring.Index by one entry in dir, skipping any entry
// whose node bounds are zero-sized (per spec §4.H "navigation skips
// zero-bounds entries"), and wraps around. A ring with no eligible entries
// is returned unchanged.
func Navigate(tree *node.Tree, ring node.FocusRing, dir NavigateDirection) node.FocusRing {
	n := len(ring.Nodes)
	if n == 0 {
		return ring
	}

	step := 1
	if dir == NavigateBackward {
		step = -1
	}

	start := ring.Index
	if start < 0 {
		start = 0
	}

	idx := start
	for i := 0; i < n; i++ {
		idx = ((idx+step)%n + n) % n
		nd := tree.Get(ring.Nodes[idx])
		if nd != nil && !nd.HitBounds.Empty() {
			ring.Index = idx
			return ring
		}
	}
	// No eligible entry found (every node zero-bounds); leave unchanged.
	return ring
}

// HitTest finds the topmost focusable node containing (x, y), per spec
// §4.H: iterate the focus ring in reverse document order (last is topmost
// in ZStack/layering terms) and return the first whose hit-test bounds
// contain the point.
func HitTest(tree *node.Tree, ring node.FocusRing, x, y int) (node.ID, bool) {
	for i := len(ring.Nodes) - 1; i >= 0; i-- {
		id := ring.Nodes[i]
		nd := tree.Get(id)
		if nd == nil {
			continue
		}
		if nd.HitBounds.Contains(x, y) {
			return id, true
		}
	}
	return 0, false
}

// ScrollTarget finds the innermost scroll-capable ancestor of hitID whose
// bounds contain (x, y), for routing a mouse-wheel event. It walks up from
// hitID rather than back down from the root, since "innermost" means
// closest to the leaf that was actually hit.
func ScrollTarget(tree *node.Tree, hitID node.ID, x, y int, isScrollCapable func(node.ID) bool) (node.ID, bool) {
	for id := hitID; id != 0; {
		nd := tree.Get(id)
		if nd == nil {
			return 0, false
		}
		if isScrollCapable(id) && nd.Bounds.Contains(x, y) {
			return id, true
		}
		id = nd.Parent()
	}
	return 0, false
}
