package term

import (
	"os"
	"strings"
)

// ReflowStrategy selects how soft-wrapped logical lines are re-wrapped when
// the terminal is resized to a new column width. Only the primary screen is
// ever reflowed; the alternate screen is always cropped/extended in place
// (see Terminal.Resize), matching full-screen applications that redraw their
// own content on SIGWINCH.
type ReflowStrategy int

const (
	// ReflowNone crops or extends rows with empty cells; the cursor is
	// clamped into the new bounds. This is what Buffer.Resize already does.
	ReflowNone ReflowStrategy = iota
	// ReflowBottomFill re-wraps logical lines at the new width and anchors
	// the reflowed content so the bottom row is preserved; the cursor's row
	// may shift as a result.
	ReflowBottomFill
	// ReflowCursorAnchored re-wraps logical lines and anchors the window so
	// the cursor's visual row stays stable whenever possible.
	ReflowCursorAnchored
)

// reflowRow is one physical row (screen or scrollback) carried through the
// reflow pipeline together with its soft-wrap marker.
type reflowRow struct {
	cells   []Cell
	wrapped bool
}

func isBlankCell(c Cell) bool {
	return !c.IsWideSpacer() && (c.Char == 0 || c.Char == ' ')
}

// Reflow re-wraps the buffer's logical lines (scrollback, oldest first, then
// the visible screen top first) at a new column count, following strategy.
// It resizes the buffer to screenRows x cols in place and returns the
// cursor's new (row, col) within the resulting visible screen.
//
// Wide graphemes are never split across a row boundary: if one would
// overflow the right margin, the margin cell is left blank and the
// grapheme starts the next row instead, per the shared reflow algorithm.
func (b *Buffer) Reflow(screenRows, cols int, cursorRow, cursorCol int, strategy ReflowStrategy) (newCursorRow, newCursorCol int) {
	if screenRows <= 0 || cols <= 0 {
		return cursorRow, cursorCol
	}

	oldCols := b.cols
	scrollbackLen := 0
	if b.scrollback != nil {
		scrollbackLen = b.scrollback.Len()
	}

	rows := make([]reflowRow, 0, scrollbackLen+b.rows)
	for i := 0; i < scrollbackLen; i++ {
		line := b.scrollback.Line(i)
		wrapped := len(line) > 0 && line[len(line)-1].HasFlag(CellFlagSoftWrap)
		rows = append(rows, reflowRow{cells: line, wrapped: wrapped})
	}
	for i := 0; i < b.rows; i++ {
		rows = append(rows, reflowRow{cells: b.cells[i], wrapped: b.wrapped[i]})
	}

	cursorAbs := scrollbackLen + cursorRow

	// Coalesce into logical lines by following the soft-wrap marker.
	type logicalLine struct {
		startAbs int
		rows     []reflowRow
	}
	var lines []logicalLine
	for i := 0; i < len(rows); {
		start := i
		var line []reflowRow
		for {
			line = append(line, rows[i])
			last := !rows[i].wrapped || i == len(rows)-1
			i++
			if last {
				break
			}
		}
		lines = append(lines, logicalLine{startAbs: start, rows: line})
	}

	cursorLineIdx := 0
	cursorOffset := 0
	for li, ln := range lines {
		if cursorAbs >= ln.startAbs && cursorAbs < ln.startAbs+len(ln.rows) {
			cursorLineIdx = li
			cursorOffset = (cursorAbs-ln.startAbs)*oldCols + cursorCol
			break
		}
	}

	var all []reflowRow
	cursorNewAbs := 0
	cursorNewCol := 0

	for li, ln := range lines {
		flat := make([]Cell, 0, len(ln.rows)*oldCols)
		for _, r := range ln.rows {
			cells := r.cells
			if len(cells) != oldCols {
				padded := make([]Cell, oldCols)
				copy(padded, cells)
				for k := len(cells); k < oldCols; k++ {
					padded[k] = NewCell()
				}
				cells = padded
			}
			flat = append(flat, cells...)
		}

		keep := len(flat)
		for keep > 0 && isBlankCell(flat[keep-1]) {
			keep--
		}
		if li == cursorLineIdx && cursorOffset > keep {
			keep = cursorOffset
			if keep > len(flat) {
				keep = len(flat)
			}
		}
		flat = flat[:keep]
		for k := range flat {
			flat[k].ClearFlag(CellFlagSoftWrap)
		}

		lineStart := len(all)
		if len(flat) == 0 {
			row := make([]Cell, cols)
			for k := range row {
				row[k] = NewCell()
			}
			all = append(all, reflowRow{cells: row})
		} else {
			pos := 0
			for pos < len(flat) {
				row := make([]Cell, cols)
				col := 0
				for col < cols && pos < len(flat) {
					cell := flat[pos]
					if cell.IsWide() && col == cols-1 {
						row[col] = NewCell()
						col++
						break
					}
					row[col] = cell
					col++
					pos++
				}
				for k := col; k < cols; k++ {
					row[k] = NewCell()
				}
				wrapped := pos < len(flat)
				if wrapped {
					row[cols-1].SetFlag(CellFlagSoftWrap)
				}
				all = append(all, reflowRow{cells: row, wrapped: wrapped})
			}
		}

		if li == cursorLineIdx {
			rowIdx := lineStart + cursorOffset/cols
			col := cursorOffset % cols
			if rowIdx >= len(all) {
				rowIdx = len(all) - 1
				col = cols - 1
			}
			cursorNewAbs = rowIdx
			cursorNewCol = col
		}
	}

	for len(all) > 1 && isRowBlank(all[len(all)-1].cells) && len(all)-1 != cursorNewAbs {
		all = all[:len(all)-1]
	}

	windowStart := 0
	maxStart := len(all) - screenRows
	if maxStart < 0 {
		maxStart = 0
	}
	switch strategy {
	case ReflowBottomFill:
		windowStart = len(all) - screenRows
	case ReflowCursorAnchored:
		windowStart = cursorNewAbs - cursorRow
	}
	if windowStart < 0 {
		windowStart = 0
	}
	if windowStart > maxStart {
		windowStart = maxStart
	}

	if b.scrollback != nil {
		b.scrollback.Clear()
		for i := 0; i < windowStart; i++ {
			b.scrollback.Push(all[i].cells)
		}
	}

	content := all[windowStart:]
	if len(content) > screenRows {
		content = content[:screenRows]
	}
	padTop := screenRows - len(content)

	newCells := make([][]Cell, screenRows)
	newWrapped := make([]bool, screenRows)
	for i := 0; i < padTop; i++ {
		row := make([]Cell, cols)
		for k := range row {
			row[k] = NewCell()
		}
		newCells[i] = row
	}
	for i, r := range content {
		newCells[padTop+i] = r.cells
		newWrapped[padTop+i] = r.wrapped
	}

	b.cells = newCells
	b.wrapped = newWrapped
	b.rows = screenRows
	b.cols = cols
	b.hasDirty = true
	for _, row := range b.cells {
		for k := range row {
			row[k].MarkDirty()
		}
	}

	newTabStop := make([]bool, cols)
	for i := 0; i < cols; i += 8 {
		newTabStop[i] = true
	}
	b.tabStop = newTabStop

	newCursorRow = padTop + (cursorNewAbs - windowStart)
	newCursorCol = cursorNewCol
	if newCursorRow < 0 {
		newCursorRow = 0
	}
	if newCursorRow >= screenRows {
		newCursorRow = screenRows - 1
	}
	return newCursorRow, newCursorCol
}

func isRowBlank(cells []Cell) bool {
	for _, c := range cells {
		if !isBlankCell(c) {
			return false
		}
	}
	return true
}

// ResizeWithStrategy changes the terminal dimensions using the given reflow
// strategy for the primary screen (the alternate screen is always cropped or
// extended, never reflowed, per the spec). ReflowNone behaves exactly like
// the unconditional crop/extend Buffer.Resize.
func (t *Terminal) ResizeWithStrategy(rows, cols int, strategy ReflowStrategy) {
	if rows <= 0 || cols <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	onPrimary := t.activeBuffer == t.primaryBuffer

	if strategy == ReflowNone || !onPrimary {
		t.resizeNoneLocked(rows, cols)
		return
	}

	newCursorRow, newCursorCol := t.primaryBuffer.Reflow(rows, cols, t.cursor.Row, t.cursor.Col, strategy)
	t.alternateBuffer.Resize(rows, cols)

	t.rows = rows
	t.cols = cols
	t.cursor.Row = newCursorRow
	t.cursor.Col = newCursorCol
	t.scrollTop = 0
	t.scrollBottom = rows
}

// ReflowStrategyFromEnv selects a ReflowStrategy the way DetectCapabilities
// derives color depth from $COLORTERM: inspect the environment once at
// startup rather than hand-parsing it per resize. MURAL_REFLOW, when set to
// "none", "bottom-fill", or "cursor-anchored" (case-insensitive), always
// wins, the same per-application override go-hub's config.go gives
// environment variables over its own defaults. Absent an override, known
// terminal multiplexers (tmux, screen) are left on ReflowNone since they
// already re-wrap their own scrollback on resize and would otherwise fight
// this package's reflow; everything else recognized by TERM_PROGRAM gets
// ReflowCursorAnchored. An unrecognized or empty TERM_PROGRAM falls back to
// ReflowNone, matching the conservative-minimum rule capabilities detection
// uses for ambiguous terminals.
func ReflowStrategyFromEnv() ReflowStrategy {
	if override, ok := os.LookupEnv("MURAL_REFLOW"); ok {
		switch strings.ToLower(strings.TrimSpace(override)) {
		case "none":
			return ReflowNone
		case "bottom-fill", "bottomfill":
			return ReflowBottomFill
		case "cursor-anchored", "cursoranchored":
			return ReflowCursorAnchored
		}
	}

	term := os.Getenv("TERM")
	if strings.HasPrefix(term, "screen") || strings.HasPrefix(term, "tmux") {
		return ReflowNone
	}

	switch strings.ToLower(os.Getenv("TERM_PROGRAM")) {
	case "iterm.app", "apple_terminal", "vscode", "wezterm", "ghostty":
		return ReflowCursorAnchored
	default:
		return ReflowNone
	}
}

// resizeNoneLocked implements ReflowNone: crop/extend with empty cells,
// cursor clamped. Mirrors Terminal.Resize; t.mu must already be held.
func (t *Terminal) resizeNoneLocked(rows, cols int) {
	oldRows := t.rows

	if rows < oldRows && t.activeBuffer == t.primaryBuffer {
		linesToScroll := oldRows - rows
		if t.cursor.Row >= rows {
			t.primaryBuffer.ScrollUp(0, oldRows, linesToScroll)
			t.cursor.Row -= linesToScroll
			if t.cursor.Row < 0 {
				t.cursor.Row = 0
			}
		}
	}

	t.rows = rows
	t.cols = cols
	t.primaryBuffer.Resize(rows, cols)
	t.alternateBuffer.Resize(rows, cols)

	if t.cursor.Row >= rows {
		t.cursor.Row = rows - 1
	}
	if t.cursor.Row < 0 {
		t.cursor.Row = 0
	}
	if t.cursor.Col >= cols {
		t.cursor.Col = cols - 1
	}
	if t.cursor.Col < 0 {
		t.cursor.Col = 0
	}

	t.scrollTop = 0
	t.scrollBottom = rows
}
