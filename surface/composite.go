package surface

import "github.com/mural-tui/mural/term"

// Layer is one entry of a CompositeSurface's layer stack: a Surface anchored
// at (OriginX, OriginY). Opaque layers stop the top-down cell scan in
// GetCell even where the layer's own cell is blank (used for a popup's
// background so content behind it never shows through gaps).
type Layer struct {
	Surface  *Surface
	OriginX  int
	OriginY  int
	Opaque   bool
}

// CompositeSurface is an ordered stack of layers composed top-down: popups
// and overlays sit above the base layer. Grounded on gowid's canvas
// compositing idiom (other_examples' gcla-gowid app.go render-context
// stacking) generalized onto term.Cell/Surface directly.
type CompositeSurface struct {
	w, h   int
	layers []Layer
}

// NewComposite creates an empty composite surface of the given base
// dimensions.
func NewComposite(w, h int) *CompositeSurface {
	return &CompositeSurface{w: w, h: h}
}

// Width returns the composite's column count.
func (c *CompositeSurface) Width() int { return c.w }

// Height returns the composite's row count.
func (c *CompositeSurface) Height() int { return c.h }

// PushLayer appends a layer on top of the stack.
func (c *CompositeSurface) PushLayer(l Layer) {
	c.layers = append(c.layers, l)
}

// PopLayer removes the topmost layer, if any.
func (c *CompositeSurface) PopLayer() {
	if len(c.layers) > 0 {
		c.layers = c.layers[:len(c.layers)-1]
	}
}

// Layers returns the current layer stack, bottom-first.
func (c *CompositeSurface) Layers() []Layer {
	return c.layers
}

func isBlank(cell *term.Cell) bool {
	return cell.Char == 0 || cell.Char == ' '
}

// GetCell scans the layer stack top-down and returns the first non-blank
// cell at (x, y), or the bottommost covering layer's cell (possibly blank)
// if none of the layers above it have content there; a point no layer
// covers yields a blank zero cell. An opaque layer halts the scan
// at its own cell (blank or not) so nothing beneath it can show through.
func (c *CompositeSurface) GetCell(x, y int) term.Cell {
	var bottom *term.Cell
	for i := len(c.layers) - 1; i >= 0; i-- {
		l := c.layers[i]
		cell := l.Surface.Cell(x-l.OriginX, y-l.OriginY)
		if cell == nil {
			continue
		}
		if l.Opaque || !isBlank(cell) {
			return *cell
		}
		bottom = cell
	}
	if bottom != nil {
		return *bottom
	}
	return term.Cell{}
}

// Flatten produces a single Surface by evaluating GetCell at every
// coordinate.
func (c *CompositeSurface) Flatten() *Surface {
	out := New(c.w, c.h)
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			out.cells[y][x] = c.GetCell(x, y)
		}
	}
	return out
}
