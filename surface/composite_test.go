package surface

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mural-tui/mural/term"
)

func TestCompositeGetCellFallsThroughToBase(t *testing.T) {
	c := NewComposite(3, 3)
	base := New(3, 3)
	base.WriteText(0, 0, "a", Pen{})
	c.PushLayer(Layer{Surface: base})

	require.Equal(t, 'a', c.GetCell(0, 0).Char)
}

func TestCompositeGetCellTopLayerWins(t *testing.T) {
	c := NewComposite(3, 3)
	base := New(3, 3)
	base.WriteText(0, 0, "a", Pen{})
	top := New(3, 3)
	top.WriteText(0, 0, "b", Pen{})
	c.PushLayer(Layer{Surface: base})
	c.PushLayer(Layer{Surface: top})

	require.Equal(t, 'b', c.GetCell(0, 0).Char, "expected top layer cell")
}

func TestCompositeGetCellBlankTopFallsThrough(t *testing.T) {
	c := NewComposite(3, 3)
	base := New(3, 3)
	base.WriteText(0, 0, "a", Pen{})
	top := New(3, 3) // blank
	c.PushLayer(Layer{Surface: base})
	c.PushLayer(Layer{Surface: top})

	require.Equal(t, 'a', c.GetCell(0, 0).Char, "expected fallthrough to base cell through blank top")
}

func TestCompositeOpaqueLayerBlocksBelow(t *testing.T) {
	c := NewComposite(3, 3)
	base := New(3, 3)
	base.WriteText(0, 0, "a", Pen{})
	popup := New(3, 3) // blank, but opaque
	c.PushLayer(Layer{Surface: base})
	c.PushLayer(Layer{Surface: popup, Opaque: true})

	cell := c.GetCell(0, 0)
	require.Equal(t, rune(0), cell.Char, "expected opaque blank layer to block base content")
}

func TestCompositeOriginOffset(t *testing.T) {
	c := NewComposite(5, 5)
	popup := New(2, 2)
	popup.WriteText(0, 0, "x", Pen{})
	c.PushLayer(Layer{Surface: popup, OriginX: 2, OriginY: 2})

	require.Equal(t, 'x', c.GetCell(2, 2).Char, "expected popup content at its origin")
	require.Equal(t, rune(0), c.GetCell(0, 0).Char, "expected cells outside popup origin to stay blank")
}

func TestCompositePopLayer(t *testing.T) {
	c := NewComposite(2, 2)
	base := New(2, 2)
	base.WriteText(0, 0, "a", Pen{})
	top := New(2, 2)
	top.WriteText(0, 0, "b", Pen{})
	c.PushLayer(Layer{Surface: base})
	c.PushLayer(Layer{Surface: top})

	c.PopLayer()

	require.Equal(t, 'a', c.GetCell(0, 0).Char, "expected base cell after popping top layer")
	require.Len(t, c.Layers(), 1)
}

func TestCompositeFlatten(t *testing.T) {
	c := NewComposite(2, 1)
	base := New(2, 1)
	base.WriteText(0, 0, "ab", Pen{})
	c.PushLayer(Layer{Surface: base})

	flat := c.Flatten()
	require.Equal(t, 'a', flat.Cell(0, 0).Char)
	require.Equal(t, 'b', flat.Cell(1, 0).Char)
}

func TestIsBlankRecognizesSpaceAndZero(t *testing.T) {
	zero := &term.Cell{}
	space := &term.Cell{Char: ' '}
	letter := &term.Cell{Char: 'a'}

	require.True(t, isBlank(zero), "expected zero-char cell to be blank")
	require.True(t, isBlank(space), "expected space cell to be blank")
	require.False(t, isBlank(letter), "expected letter cell to not be blank")
}
