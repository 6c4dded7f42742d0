// Package surface implements the addressable cell buffer, layered
// compositing, and diff-to-ANSI encoding pipeline that the render loop uses
// to turn a node tree into terminal bytes: Surface, CompositeSurface,
// SurfaceDiff/Comparer, the ANSI emitter, and a node-fingerprint render
// cache.
//
// Surface deliberately reuses term.Cell rather than declaring a parallel
// cell type, following the teacher's own Cell/Buffer addressing model
// (danielgatis/go-headless-term's buffer.go) — a Surface is a Buffer's grid
// without the VT-specific baggage (scrollback, cursor, modes).
package surface

import (
	"image/color"

	"github.com/muesli/reflow/truncate"

	"github.com/mural-tui/mural/layout"
	"github.com/mural-tui/mural/term"
)

// Rect is the layout package's rectangle, reused here rather than declaring
// a parallel type: a Surface operation is always scoped to a layout Rect.
type Rect = layout.Rect

// Surface is a freestanding, addressable grid of cells. Unlike term.Buffer
// it has no cursor, no modes, and no scrollback — it exists purely to be
// written into by widget Render methods and diffed against the previous
// frame.
type Surface struct {
	w, h  int
	cells [][]term.Cell
}

// New creates a Surface of the given dimensions, all cells blank (the zero
// term.Cell: Char 0, nil Fg/Bg meaning default colors).
func New(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s := &Surface{w: w, h: h, cells: make([][]term.Cell, h)}
	for y := range s.cells {
		row := make([]term.Cell, w)
		for x := range row {
			row[x] = term.Cell{}
		}
		s.cells[y] = row
	}
	return s
}

// Width returns the surface's column count.
func (s *Surface) Width() int { return s.w }

// Height returns the surface's row count.
func (s *Surface) Height() int { return s.h }

// Cell returns a pointer to the cell at (x, y), or nil if out of bounds.
func (s *Surface) Cell(x, y int) *term.Cell {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return nil
	}
	return &s.cells[y][x]
}

// Fill overwrites every cell within rect (clipped to the surface bounds)
// with cell.
func (s *Surface) Fill(rect Rect, cell term.Cell) {
	r := clipRect(rect, s.w, s.h)
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.cells[y][x] = cell
		}
	}
}

// Pen describes the styling applied to a run of written text. Nil Fg/Bg
// mean "default color", matching a blank Surface cell.
type Pen struct {
	Fg, Bg         color.Color
	UnderlineColor color.Color
	Flags          term.CellFlags
}

// WriteText places text as a sequence of graphemes starting at (x, y),
// moving left to right. It never wraps: characters that would fall past the
// right edge (or before the left edge) are dropped. Wide graphemes occupy
// two columns, writing a continuation (spacer) cell for the second.
// Out-of-range y is a no-op.
func (s *Surface) WriteText(x, y int, text string, pen Pen) {
	if y < 0 || y >= s.h {
		return
	}
	// Defensive clamp before the per-rune loop below, mirroring bubbletea's
	// standardRenderer (other_examples' f2501990 standard_renderer.go:285)
	// calling truncate.String against its own line width: a widget that
	// hands WriteText an overlong line never pays for scanning past the
	// surface's right edge.
	if avail := s.w - x; avail >= 0 {
		text = truncate.String(text, uint(avail))
	}
	col := x
	for _, r := range text {
		w := term.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col < 0 {
			col += w
			continue
		}
		if col >= s.w || (w == 2 && col+1 >= s.w) {
			break
		}

		cell := &s.cells[y][col]
		*cell = term.Cell{
			Char:           r,
			Fg:             pen.Fg,
			Bg:             pen.Bg,
			UnderlineColor: pen.UnderlineColor,
			Flags:          pen.Flags,
		}
		if w == 2 {
			cell.SetFlag(term.CellFlagWideChar)
			spacer := &s.cells[y][col+1]
			*spacer = term.Cell{Fg: pen.Fg, Bg: pen.Bg, Flags: pen.Flags | term.CellFlagWideCharSpacer}
		}
		col += w
	}
}

// Composite blits src onto s at offset (dx, dy), clipped to s's bounds, with
// per-cell overwrite (no alpha blending — the topmost cell always wins,
// matching the spec's compositing model).
func (s *Surface) Composite(src *Surface, dx, dy int) {
	for y := 0; y < src.h; y++ {
		ty := dy + y
		if ty < 0 || ty >= s.h {
			continue
		}
		for x := 0; x < src.w; x++ {
			tx := dx + x
			if tx < 0 || tx >= s.w {
				continue
			}
			s.cells[ty][tx] = src.cells[y][x]
		}
	}
}

// Clone returns a deep copy of the surface.
func (s *Surface) Clone() *Surface {
	out := &Surface{w: s.w, h: s.h, cells: make([][]term.Cell, s.h)}
	for y, row := range s.cells {
		copied := make([]term.Cell, len(row))
		copy(copied, row)
		out.cells[y] = copied
	}
	return out
}

func clipRect(r Rect, w, h int) Rect {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.W, w), min(r.Y+r.H, h)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
