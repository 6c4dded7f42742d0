package surface

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mural-tui/mural/term"
)

func TestDiffIdenticalBlankSurfacesProducesNoRuns(t *testing.T) {
	prev := New(10, 3)
	curr := New(10, 3)

	d := NewComparer().Diff(prev, curr)
	require.Empty(t, d.Runs, "expected no runs for identical blank surfaces")
}

func TestDiffMismatchedDimensionsProducesNoRuns(t *testing.T) {
	prev := New(10, 3)
	curr := New(5, 3)

	d := NewComparer().Diff(prev, curr)
	require.Empty(t, d.Runs, "expected no runs for mismatched dimensions")
}

func TestDiffSingleWordWrite(t *testing.T) {
	prev := New(10, 1)
	curr := New(10, 1)
	curr.WriteText(0, 0, "Hi", Pen{})

	d := NewComparer().Diff(prev, curr)
	require.Len(t, d.Runs, 1)
	run := d.Runs[0]
	require.Equal(t, 0, run.X)
	require.Equal(t, 0, run.Y)
	require.Len(t, run.Cells, 2)
	require.Equal(t, 'H', run.Cells[0].Char)
	require.Equal(t, 'i', run.Cells[1].Char)
}

func TestDiffWideGraphemeIncludesSpacerCell(t *testing.T) {
	prev := New(4, 1)
	curr := New(4, 1)
	curr.WriteText(0, 0, "你", Pen{})

	d := NewComparer().Diff(prev, curr)
	require.Len(t, d.Runs, 1)
	run := d.Runs[0]
	require.Len(t, run.Cells, 2, "expected run to span the wide cell and its spacer")
	require.Equal(t, '你', run.Cells[0].Char)
	require.True(t, run.Cells[0].IsWide())
	require.True(t, run.Cells[1].IsWideSpacer())
}

func TestNewComparerWithCoalesceThresholdOption(t *testing.T) {
	c := NewComparer(WithCoalesceThreshold(0))
	require.Equal(t, 0, c.CoalesceThreshold)
}

func TestDiffCoalescesShortUnchangedGap(t *testing.T) {
	prev := New(10, 1)
	curr := New(10, 1)
	curr.WriteText(0, 0, "a", Pen{})
	curr.WriteText(3, 0, "b", Pen{}) // 2-cell unchanged gap at x=1,2

	d := Comparer{CoalesceThreshold: 3}.Diff(prev, curr)
	require.Len(t, d.Runs, 1, "expected gap shorter than threshold to coalesce into 1 run")
	require.Len(t, d.Runs[0].Cells, 4, "expected coalesced run to span 4 cells")
}

func TestDiffSplitsLongUnchangedGap(t *testing.T) {
	prev := New(10, 1)
	curr := New(10, 1)
	curr.WriteText(0, 0, "a", Pen{})
	curr.WriteText(5, 0, "b", Pen{}) // 4-cell unchanged gap at x=1..4

	d := Comparer{CoalesceThreshold: 3}.Diff(prev, curr)
	require.Len(t, d.Runs, 2, "expected gap longer than threshold to split into 2 runs")
}

func TestColorEqualNamedColorComparesByName(t *testing.T) {
	a := &term.NamedColor{Name: term.NamedColorForeground}
	b := &term.NamedColor{Name: term.NamedColorForeground}
	c := &term.NamedColor{Name: term.NamedColorBackground}

	require.True(t, colorEqual(a, b), "expected same-name NamedColors to compare equal")
	require.False(t, colorEqual(a, c), "expected different-name NamedColors to compare unequal despite identical placeholder RGBA")
}

func TestColorEqualIndexedColorComparesByIndex(t *testing.T) {
	a := &term.IndexedColor{Index: 1}
	b := &term.IndexedColor{Index: 2}

	require.False(t, colorEqual(a, b), "expected different-index IndexedColors to compare unequal despite identical placeholder RGBA")
}

func TestColorEqualNilHandling(t *testing.T) {
	require.True(t, colorEqual(nil, nil))
	require.False(t, colorEqual(nil, &term.NamedColor{Name: term.NamedColorForeground}))
}
