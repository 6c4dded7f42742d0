package surface

import (
	"image/color"

	"github.com/mural-tui/mural/term"
)

// Run is one contiguous change on a single row: the cells from x_start
// (inclusive) onward, already coalesced per Comparer's threshold.
type Run struct {
	Y, X  int
	Cells []term.Cell
}

// Diff is the ordered list of change runs between two surfaces, emitted
// deterministically row-by-row, left to right — the spec's SurfaceDiff.
type Diff struct {
	Runs []Run
}

// Comparer computes diffs between equally-sized surfaces. CoalesceThreshold
// is the run-merge rule from spec §4.E: an unchanged span shorter than the
// threshold, sitting between two changed cells on the same row, is folded
// into one run instead of starting a cursor move for it. Grounded on the
// teacher's snapshot.go SnapshotDetailStyled segment coalescing, which
// merges adjacent cells of identical style with the same left-to-right
// single-row sweep.
type Comparer struct {
	CoalesceThreshold int
}

// DefaultCoalesceThreshold is the empirical default named in spec §9's open
// questions: small unchanged spans are cheaper to overwrite than to skip
// with a fresh cursor move.
const DefaultCoalesceThreshold = 3

// Option configures a Comparer at construction time, following this
// runtime's functional-options convention (term.Option/WithX).
type Option func(*Comparer)

// WithCoalesceThreshold overrides the default run-coalescing threshold.
func WithCoalesceThreshold(n int) Option {
	return func(c *Comparer) { c.CoalesceThreshold = n }
}

// NewComparer returns a Comparer using DefaultCoalesceThreshold, or a
// caller-supplied override via WithCoalesceThreshold.
func NewComparer(opts ...Option) Comparer {
	c := Comparer{CoalesceThreshold: DefaultCoalesceThreshold}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func cellsEqual(a, b term.Cell) bool {
	if a.Char != b.Char || a.Flags != b.Flags {
		return false
	}
	if !colorEqual(a.Fg, b.Fg) || !colorEqual(a.Bg, b.Bg) || !colorEqual(a.UnderlineColor, b.UnderlineColor) {
		return false
	}
	aID, aOK := trackedIdentity(a)
	bID, bOK := trackedIdentity(b)
	if aOK != bOK || aID != bID {
		return false
	}
	return true
}

// colorEqual compares two cell colors for diff purposes. term.NamedColor and
// term.IndexedColor resolve to a placeholder RGBA() (the real palette lookup
// happens at encode time), so those variants are compared by their index/name
// field instead of by calling RGBA(); anything else (concrete color.RGBA)
// compares by value.
func colorEqual(a, b color.Color) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if an, ok := a.(*term.NamedColor); ok {
		bn, ok := b.(*term.NamedColor)
		return ok && an.Name == bn.Name
	}
	if ai, ok := a.(*term.IndexedColor); ok {
		bi, ok := b.(*term.IndexedColor)
		return ok && ai.Index == bi.Index
	}
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// trackedIdentity returns a stable identity for a cell's tracked
// hyperlink/image reference, for diff's "tracked handle identity" change
// check (spec §4.E).
func trackedIdentity(c term.Cell) (string, bool) {
	switch {
	case c.Hyperlink != nil:
		return c.Hyperlink.URI, true
	case c.Image != nil:
		return "", false // image references are not compared; only Char/Flags/colors are
	default:
		return "", false
	}
}

// Diff computes the minimal set of change runs turning prev into curr. Both
// must have the same dimensions; mismatched dimensions produce no runs
// (callers resize/replace the whole surface instead of diffing across a
// resize).
func (c Comparer) Diff(prev, curr *Surface) Diff {
	if prev.w != curr.w || prev.h != curr.h {
		return Diff{}
	}
	threshold := c.CoalesceThreshold
	if threshold < 0 {
		threshold = 0
	}

	var out Diff
	for y := 0; y < curr.h; y++ {
		x := 0
		for x < curr.w {
			if cellsEqual(prev.cells[y][x], curr.cells[y][x]) {
				x++
				continue
			}

			start := x
			run := []term.Cell{curr.cells[y][x]}
			x++
			for x < curr.w {
				if cellsEqual(prev.cells[y][x], curr.cells[y][x]) {
					gapStart := x
					gapLen := 0
					for x < curr.w && cellsEqual(prev.cells[y][x], curr.cells[y][x]) {
						gapLen++
						x++
					}
					if x >= curr.w || gapLen >= threshold {
						x = gapStart
						break
					}
					for i := 0; i < gapLen; i++ {
						run = append(run, curr.cells[y][gapStart+i])
					}
					continue
				}
				run = append(run, curr.cells[y][x])
				x++
			}
			out.Runs = append(out.Runs, Run{Y: y, X: start, Cells: run})
		}
	}
	return out
}
