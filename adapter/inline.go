package adapter

import (
	"bytes"
	"strconv"

	"github.com/charmbracelet/x/ansi"

	"github.com/mural-tui/mural/term"
)

// Inline wraps another Adapter and writes into a sub-region of it: an
// origin row offset below the cursor's current scrollback position rather
// than the full alternate screen. Used for UI that occupies only a few
// rows without ever entering alt-screen. Any absolute cursor-position
// sequence (CSI row;col H) written through it is rewritten to add
// OriginRow, using github.com/charmbracelet/x/ansi's CursorPosition
// builder to reconstruct the adjusted sequence rather than hand-formatting
// escape codes.
type Inline struct {
	base      Adapter
	OriginRow int
}

// NewInline wraps base, offsetting all absolute cursor moves by originRow.
func NewInline(base Adapter, originRow int) *Inline {
	return &Inline{base: base, OriginRow: originRow}
}

func (i *Inline) Write(p []byte) error {
	return i.base.Write(rewriteCursorSequences(p, i.OriginRow))
}

func (i *Inline) Flush() error                    { return i.base.Flush() }
func (i *Inline) Events() <-chan Event            { return i.base.Events() }
func (i *Inline) Width() int                      { return i.base.Width() }
func (i *Inline) Height() int                     { return i.base.Height() - i.OriginRow }
func (i *Inline) Capabilities() term.Capabilities { return i.base.Capabilities() }
func (i *Inline) EnterTUIMode() error              { return nil } // inline UI never switches screens
func (i *Inline) ExitTUIMode() error               { return nil }
func (i *Inline) Close() error                     { return nil } // base adapter owns the real resource

// rewriteCursorSequences scans p for CSI row;col H/f absolute
// cursor-position sequences and rewrites row += offset, leaving every
// other byte (including relative-move and SGR sequences) untouched.
func rewriteCursorSequences(p []byte, offset int) []byte {
	if offset == 0 {
		return p
	}
	var out bytes.Buffer
	for i := 0; i < len(p); {
		if p[i] == 0x1b && i+1 < len(p) && p[i+1] == '[' {
			if seq, row, col, final, n := parseCUP(p[i:]); n > 0 {
				out.WriteString(ansi.CursorPosition(col, row+offset))
				_ = final
				_ = seq
				i += n
				continue
			}
		}
		out.WriteByte(p[i])
		i++
	}
	return out.Bytes()
}

// parseCUP recognizes "ESC [ row ; col H" or "... f" at the start of p,
// returning the matched bytes, the decoded row/col (1-based, defaulting to
// 1 when omitted), the final byte, and the total length consumed (0 if p
// doesn't start with such a sequence).
func parseCUP(p []byte) (seq []byte, row, col int, final byte, n int) {
	if len(p) < 3 || p[0] != 0x1b || p[1] != '[' {
		return nil, 0, 0, 0, 0
	}
	j := 2
	for j < len(p) && (p[j] >= '0' && p[j] <= '9' || p[j] == ';') {
		j++
	}
	if j >= len(p) || (p[j] != 'H' && p[j] != 'f') {
		return nil, 0, 0, 0, 0
	}
	params := string(p[2:j])
	row, col = 1, 1
	if params != "" {
		parts := splitSemicolon(params)
		if len(parts) >= 1 && parts[0] != "" {
			if v, err := strconv.Atoi(parts[0]); err == nil {
				row = v
			}
		}
		if len(parts) >= 2 && parts[1] != "" {
			if v, err := strconv.Atoi(parts[1]); err == nil {
				col = v
			}
		}
	}
	return p[:j+1], row, col, p[j], j + 1
}

func splitSemicolon(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
