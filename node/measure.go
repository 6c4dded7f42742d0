package node

import (
	"github.com/mural-tui/mural/layout"
	"github.com/mural-tui/mural/term"
	"github.com/mural-tui/mural/widget"
)

// Measure computes id's preferred size within c, per spec §4.F step 1:
// ask children for their sizes given sub-constraints derived from this
// node's own layout rule, then clamp the result into c. The measured size
// is cached on the node so a later Arrange/Render pass doesn't re-derive it.
func (t *Tree) Measure(id ID, c layout.Constraints) layout.Size {
	n := t.Get(id)
	if n == nil {
		return layout.Size{}
	}

	var size layout.Size
	switch n.Widget.Kind {
	case widget.KindStack:
		size = t.measureStack(n, c)
	case widget.KindSplitter:
		size = t.measureStack(n, c) // same weighted-distribution shape
	case widget.KindText:
		size = c.Clamp(term.StringWidth(n.Widget.Text), 1)
	case widget.KindButton:
		size = c.Clamp(term.StringWidth(n.Widget.Label)+4, 1)
	case widget.KindBorder:
		inner := layout.Constraints{
			MinW: max0(c.MinW - 2), MaxW: max0(c.MaxW - 2),
			MinH: max0(c.MinH - 2), MaxH: max0(c.MaxH - 2),
		}
		var childSize layout.Size
		if len(n.children) > 0 {
			childSize = t.Measure(n.children[0], inner)
		}
		size = c.Clamp(childSize.W+2, childSize.H+2)
	case widget.KindScroll:
		// A scroll region's own size is the viewport, not its content's
		// extent: it never asks for more than c offers.
		size = c.Clamp(c.MaxW, c.MaxH)
		if len(n.children) > 0 {
			t.Measure(n.children[0], layout.Loose(layout.Unbounded, layout.Unbounded))
		}
	case widget.KindList, widget.KindPicker:
		w := 0
		for _, item := range n.Widget.Items {
			if iw := term.StringWidth(item) + 2; iw > w {
				w = iw
			}
		}
		size = c.Clamp(w, len(n.Widget.Items))
	case widget.KindTable:
		w := 0
		for _, col := range n.Widget.Columns {
			w += term.StringWidth(col) + 2
		}
		size = c.Clamp(w, len(n.Widget.Rows)+1)
	case widget.KindTextBox:
		size = c.Clamp(c.MaxW, 1)
	case widget.KindSpinner:
		size = c.Clamp(1, 1)
	case widget.KindProgressBar:
		size = c.Clamp(c.MaxW, 1)
	case widget.KindResponsive:
		bp := pickBreakpoint(n.Widget.Responsive, c.MaxW)
		if bp != nil && len(n.children) > 0 {
			size = t.Measure(n.children[0], c)
		} else {
			size = c.Clamp(0, 0)
		}
	case widget.KindRescue:
		if len(n.children) > 0 {
			size = t.Measure(n.children[0], c)
		} else {
			size = c.Clamp(0, 0)
		}
	default:
		size = c.Clamp(c.MinW, c.MinH)
	}

	n.Measured = size
	return size
}

func (t *Tree) measureStack(n *Node, c layout.Constraints) layout.Size {
	if n.Widget.Axis == widget.AxisDepth {
		maxW, maxH := 0, 0
		for _, child := range n.children {
			s := t.Measure(child, c)
			if s.W > maxW {
				maxW = s.W
			}
			if s.H > maxH {
				maxH = s.H
			}
		}
		return c.Clamp(maxW, maxH)
	}

	hints := n.Widget.Splits
	if hints == nil {
		// No explicit per-child split: distribute the stacking axis evenly,
		// an equal-weight Fill for every child (n.Widget.Hint only governs
		// how this stack itself is sized by its own parent).
		hints = make([]layout.SizeHint, len(n.children))
		for i := range hints {
			hints[i] = layout.Fill(1)
		}
	}

	main, cross := c.MaxW, c.MaxH
	if n.Widget.Axis == widget.AxisVertical {
		main, cross = c.MaxH, c.MaxW
	}

	hug := make([]int, len(n.children))
	for i, child := range n.children {
		if i < len(hints) && hints[i].Kind == layout.HintHugContent {
			var s layout.Size
			if n.Widget.Axis == widget.AxisVertical {
				s = t.Measure(child, layout.Loose(cross, layout.Unbounded))
				hug[i] = s.H
			} else {
				s = t.Measure(child, layout.Loose(layout.Unbounded, cross))
				hug[i] = s.W
			}
		}
	}

	sizes := layout.DistributeStack(main, hints, hug)
	maxCross := 0
	for i, child := range n.children {
		var childC layout.Constraints
		if n.Widget.Axis == widget.AxisVertical {
			childC = layout.Tight(cross, sizes[i])
		} else {
			childC = layout.Tight(sizes[i], cross)
		}
		s := t.Measure(child, childC)
		cr := s.W
		if n.Widget.Axis == widget.AxisVertical {
			cr = s.W
		} else {
			cr = s.H
		}
		if cr > maxCross {
			maxCross = cr
		}
	}

	if n.Widget.Axis == widget.AxisVertical {
		return c.Clamp(maxCross, main)
	}
	return c.Clamp(main, maxCross)
}

func pickBreakpoint(bps []widget.Breakpoint, width int) *widget.Breakpoint {
	var best *widget.Breakpoint
	for i := range bps {
		if bps[i].MinWidth <= width {
			if best == nil || bps[i].MinWidth > best.MinWidth {
				best = &bps[i]
			}
		}
	}
	return best
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
