package surface

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/mural-tui/mural/term"
)

// PenState tracks the SGR state the encoder believes the real terminal is
// in, so Encode only emits the delta between runs instead of a full reset
// every time. The zero value is "default pen, no attributes set".
type PenState struct {
	set     bool
	fg, bg  string // hex strings, "" means default
	bold    bool
	dim     bool
	italic  bool
	under   bool
	blink   bool
	reverse bool
	hidden  bool
	strike  bool
}

func penFromCell(c term.Cell) PenState {
	p := PenState{set: true}
	if c.Fg != nil {
		rgba := term.ResolveDefaultColor(c.Fg, true)
		p.fg = fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
	}
	if c.Bg != nil {
		rgba := term.ResolveDefaultColor(c.Bg, false)
		p.bg = fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
	}
	p.bold = c.HasFlag(term.CellFlagBold)
	p.dim = c.HasFlag(term.CellFlagDim)
	p.italic = c.HasFlag(term.CellFlagItalic)
	p.under = c.HasFlag(term.CellFlagUnderline) || c.HasFlag(term.CellFlagDoubleUnderline) ||
		c.HasFlag(term.CellFlagCurlyUnderline) || c.HasFlag(term.CellFlagDottedUnderline) ||
		c.HasFlag(term.CellFlagDashedUnderline)
	p.blink = c.HasFlag(term.CellFlagBlinkSlow) || c.HasFlag(term.CellFlagBlinkFast)
	p.reverse = c.HasFlag(term.CellFlagReverse)
	p.hidden = c.HasFlag(term.CellFlagHidden)
	p.strike = c.HasFlag(term.CellFlagStrike)
	return p
}

func (p PenState) anyAttrSet() bool {
	return p.fg != "" || p.bg != "" || p.bold || p.dim || p.italic || p.under ||
		p.blink || p.reverse || p.hidden || p.strike
}

// Encoder turns a Diff into the ANSI byte stream a terminal replays to reach
// the same cell-wise state. Grounded on bubbletea's standardRenderer
// (other_examples' f2501990 standard_renderer.go): cursor-positioning CSI
// only on a position change, SGR delta only, termenv for capability-aware
// color degrade.
type Encoder struct {
	Profile termenv.Profile
}

// NewEncoder builds an Encoder using the environment-detected color
// profile.
func NewEncoder() Encoder {
	return Encoder{Profile: termenv.ColorProfile()}
}

// Encode renders diff as ANSI bytes. curPen/curX/curY describe the
// terminal's state before this frame's bytes are applied; the returned pen
// and cursor values describe the state afterward so a caller can thread
// them into the next call instead of re-deriving them. A diff with no runs
// produces a zero-byte frame.
func (e Encoder) Encode(diff Diff, curPen PenState, curX, curY int) (out []byte, newPen PenState, newX, newY int) {
	var b strings.Builder
	cur := curPen
	if !cur.set {
		cur = PenState{set: true}
	}
	x, y := curX, curY
	anySet := cur.anyAttrSet()

	for _, run := range diff.Runs {
		if run.Y != y || run.X != x {
			fmt.Fprintf(&b, "\x1b[%d;%dH", run.Y+1, run.X+1)
			x, y = run.X, run.Y
		}

		col := x
		for _, cell := range run.Cells {
			if cell.IsWideSpacer() {
				continue
			}
			want := penFromCell(cell)
			e.writeSGRDelta(&b, cur, want)
			cur = want
			if want.anyAttrSet() {
				anySet = true
			}

			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
			w := term.RuneWidth(ch)
			if w == 0 {
				w = 1
			}
			col += w
		}
		x = col
	}

	if anySet && len(diff.Runs) > 0 {
		b.WriteString("\x1b[0m")
		cur = PenState{set: true}
	}

	return []byte(b.String()), cur, x, y
}

// writeSGRDelta emits only the SGR parameters that differ between cur and
// want.
func (e Encoder) writeSGRDelta(b *strings.Builder, cur, want PenState) {
	var params []string

	if cur.bold != want.bold {
		if want.bold {
			params = append(params, "1")
		} else {
			params = append(params, "22")
		}
	}
	if cur.dim != want.dim {
		if want.dim {
			params = append(params, "2")
		} else {
			params = append(params, "22")
		}
	}
	if cur.italic != want.italic {
		if want.italic {
			params = append(params, "3")
		} else {
			params = append(params, "23")
		}
	}
	if cur.under != want.under {
		if want.under {
			params = append(params, "4")
		} else {
			params = append(params, "24")
		}
	}
	if cur.blink != want.blink {
		if want.blink {
			params = append(params, "5")
		} else {
			params = append(params, "25")
		}
	}
	if cur.reverse != want.reverse {
		if want.reverse {
			params = append(params, "7")
		} else {
			params = append(params, "27")
		}
	}
	if cur.hidden != want.hidden {
		if want.hidden {
			params = append(params, "8")
		} else {
			params = append(params, "28")
		}
	}
	if cur.strike != want.strike {
		if want.strike {
			params = append(params, "9")
		} else {
			params = append(params, "29")
		}
	}

	if len(params) > 0 {
		fmt.Fprintf(b, "\x1b[%sm", strings.Join(params, ";"))
	}

	if cur.fg != want.fg {
		e.writeColorSeq(b, want.fg, false)
	}
	if cur.bg != want.bg {
		e.writeColorSeq(b, want.bg, true)
	}
}

func (e Encoder) writeColorSeq(b *strings.Builder, hex string, bg bool) {
	if hex == "" {
		if bg {
			b.WriteString("\x1b[49m")
		} else {
			b.WriteString("\x1b[39m")
		}
		return
	}
	c := e.Profile.Color(hex)
	fmt.Fprintf(b, "\x1b[%sm", c.Sequence(bg))
}
