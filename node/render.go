package node

import (
	"fmt"
	"image/color"

	"github.com/mural-tui/mural/layout"
	"github.com/mural-tui/mural/surface"
	"github.com/mural-tui/mural/term"
	"github.com/mural-tui/mural/widget"
)

// Render draws id's subtree onto surf at id's own Bounds, recovering from any
// panic raised beneath a KindRescue node per spec §4.F step 3 and §9's
// "never let one widget's bug blank the whole screen" guidance.
func (t *Tree) Render(id ID, surf *surface.Surface) {
	n := t.Get(id)
	if n == nil || n.Bounds.Empty() {
		return
	}

	pen := surface.Pen{Fg: themeColor(n.Widget.Theme.Fg), Bg: themeColor(n.Widget.Theme.Bg)}
	if n.Widget.Theme.Bold != nil && *n.Widget.Theme.Bold {
		pen.Flags |= term.CellFlagBold
	}

	switch n.Widget.Kind {
	case widget.KindStack, widget.KindSplitter:
		for _, child := range n.children {
			t.Render(child, surf)
		}
	case widget.KindText:
		surf.WriteText(n.Bounds.X, n.Bounds.Y, n.Widget.Text, pen)
	case widget.KindButton:
		label := fmt.Sprintf("[ %s ]", n.Widget.Label)
		if n.IsFocusable {
			pen.Flags |= term.CellFlagReverse
		}
		surf.WriteText(n.Bounds.X, n.Bounds.Y, label, pen)
	case widget.KindBorder:
		drawBorder(surf, n.Bounds, pen)
		if len(n.children) > 0 {
			t.Render(n.children[0], surf)
		}
	case widget.KindScroll:
		if len(n.children) > 0 {
			t.Render(n.children[0], surf)
		}
	case widget.KindList, widget.KindPicker:
		for i, item := range n.Widget.Items {
			y := n.Bounds.Y + i
			if y >= n.Bounds.Y+n.Bounds.H {
				break
			}
			rowPen := pen
			if i == n.List.SelectedIndex || i == n.Widget.Selected {
				rowPen.Flags |= term.CellFlagReverse
			}
			surf.WriteText(n.Bounds.X, y, item, rowPen)
		}
	case widget.KindTable:
		colWidths := make([]int, len(n.Widget.Columns))
		for i, col := range n.Widget.Columns {
			colWidths[i] = term.StringWidth(col) + 2
		}
		headerPen := pen
		headerPen.Flags |= term.CellFlagBold
		writeRow(surf, n.Bounds.X, n.Bounds.Y, n.Widget.Columns, colWidths, headerPen)
		for i, row := range n.Widget.Rows {
			y := n.Bounds.Y + 1 + i
			if y >= n.Bounds.Y+n.Bounds.H {
				break
			}
			writeRow(surf, n.Bounds.X, y, row, colWidths, pen)
		}
	case widget.KindTextBox:
		text := n.TextBox.Text
		if text == "" {
			text = n.Widget.Text
		}
		surf.WriteText(n.Bounds.X, n.Bounds.Y, text, pen)
	case widget.KindSpinner:
		frame := spinnerFrames[n.SpinnerTick%len(spinnerFrames)]
		surf.WriteText(n.Bounds.X, n.Bounds.Y, string(frame), pen)
	case widget.KindProgressBar:
		drawProgressBar(surf, n.Bounds, n.Widget.Percent, pen)
	case widget.KindResponsive:
		bp := pickBreakpoint(n.Widget.Responsive, n.Bounds.W)
		if bp != nil && len(n.children) > 0 {
			t.Render(n.children[0], surf)
		}
	case widget.KindRescue:
		t.renderRescued(n, surf)
	}
}

func (t *Tree) renderRescued(n *Node, surf *surface.Surface) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic rendering rescued subtree: %v", r)
			if n.Widget.OnError != nil {
				n.Widget.OnError(err)
			}
			surf.WriteText(n.Bounds.X, n.Bounds.Y, err.Error(), surface.Pen{})
		}
	}()
	if len(n.children) > 0 {
		t.Render(n.children[0], surf)
	}
}

var spinnerFrames = []rune{'|', '/', '-', '\\'}

func writeRow(surf *surface.Surface, x, y int, cells []string, widths []int, pen surface.Pen) {
	col := x
	for i, width := range widths {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		surf.WriteText(col, y, text, pen)
		col += width
	}
}

func drawBorder(surf *surface.Surface, r layout.Rect, pen surface.Pen) {
	if r.Empty() {
		return
	}
	for x := r.X; x < r.X+r.W; x++ {
		surf.WriteText(x, r.Y, "─", pen)
		surf.WriteText(x, r.Y+r.H-1, "─", pen)
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		surf.WriteText(r.X, y, "│", pen)
		surf.WriteText(r.X+r.W-1, y, "│", pen)
	}
	surf.WriteText(r.X, r.Y, "┌", pen)
	surf.WriteText(r.X+r.W-1, r.Y, "┐", pen)
	surf.WriteText(r.X, r.Y+r.H-1, "└", pen)
	surf.WriteText(r.X+r.W-1, r.Y+r.H-1, "┘", pen)
}

func drawProgressBar(surf *surface.Surface, r layout.Rect, percent float64, pen surface.Pen) {
	if r.Empty() {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	filled := int(float64(r.W) * percent)
	fillPen := pen
	fillPen.Flags |= term.CellFlagReverse
	for x := 0; x < r.W; x++ {
		p := pen
		if x < filled {
			p = fillPen
		}
		surf.WriteText(r.X+x, r.Y, " ", p)
	}
}

// themeColor parses a "#rrggbb" override into a color.Color, or returns nil
// (meaning "inherit default") for an unset override. Hex parsing is a handful
// of stdlib calls, not a concern any corpus dependency addresses.
func themeColor(hex *string) color.Color {
	if hex == nil {
		return nil
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(*hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return nil
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
