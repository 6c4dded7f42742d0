package node

import (
	"github.com/mural-tui/mural/layout"
	"github.com/mural-tui/mural/widget"
)

// Arrange assigns id and its subtree their final screen-space rects, per
// spec §4.F step 2. Measure must already have been run over this subtree
// with constraints compatible with rect's size. HitBounds is set equal to
// Bounds, so a zero-size rect yields zero hit-test bounds that input.HitTest
// and input.Navigate skip. A node placed outside its parent's bounds keeps
// its full rect as HitBounds; it is not clipped to the parent.
func (t *Tree) Arrange(id ID, rect layout.Rect) {
	n := t.Get(id)
	if n == nil {
		return
	}
	n.Bounds = rect
	n.HitBounds = rect

	switch n.Widget.Kind {
	case widget.KindStack, widget.KindSplitter:
		t.arrangeStack(n, rect)
	case widget.KindBorder:
		if len(n.children) > 0 {
			t.Arrange(n.children[0], rect.Inset(1, 1, 1, 1))
		}
	case widget.KindScroll:
		if len(n.children) > 0 {
			child := t.Get(n.children[0])
			contentH := child.Measured.H
			if contentH < rect.H {
				contentH = rect.H
			}
			t.Arrange(n.children[0], layout.Rect{
				X: rect.X - n.Scroll.OffsetX,
				Y: rect.Y - n.Scroll.OffsetY,
				W: child.Measured.W,
				H: contentH,
			})
		}
	case widget.KindResponsive:
		bp := pickBreakpoint(n.Widget.Responsive, rect.W)
		if bp != nil && len(n.children) > 0 {
			t.Arrange(n.children[0], rect)
		}
	case widget.KindRescue:
		if len(n.children) > 0 {
			t.Arrange(n.children[0], rect)
		}
	}
}

func (t *Tree) arrangeStack(n *Node, rect layout.Rect) {
	if n.Widget.Axis == widget.AxisDepth {
		for _, child := range n.children {
			t.Arrange(child, rect)
		}
		return
	}

	hints := n.Widget.Splits
	if hints == nil {
		hints = make([]layout.SizeHint, len(n.children))
		for i := range hints {
			hints[i] = layout.Fill(1)
		}
	}

	main := rect.W
	if n.Widget.Axis == widget.AxisVertical {
		main = rect.H
	}

	hug := make([]int, len(n.children))
	for i, child := range n.children {
		if i < len(hints) && hints[i].Kind == layout.HintHugContent {
			cn := t.Get(child)
			if n.Widget.Axis == widget.AxisVertical {
				hug[i] = cn.Measured.H
			} else {
				hug[i] = cn.Measured.W
			}
		}
	}

	sizes := layout.DistributeStack(main, hints, hug)
	offset := 0
	for i, child := range n.children {
		var childRect layout.Rect
		if n.Widget.Axis == widget.AxisVertical {
			childRect = layout.Rect{X: rect.X, Y: rect.Y + offset, W: rect.W, H: sizes[i]}
		} else {
			childRect = layout.Rect{X: rect.X + offset, Y: rect.Y, W: sizes[i], H: rect.H}
		}
		t.Arrange(child, childRect)
		offset += sizes[i]
	}
}
