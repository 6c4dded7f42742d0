// Package widget defines the immutable, value-typed description of intended
// UI: a closed set of variants (stack, text, button, border, scroll region,
// list, picker, table, textbox, spinner, progress bar, splitter, responsive
// selector, rescue) rebuilt from scratch every frame and handed to package
// node for reconciliation against the persistent node tree.
//
// The variant set is closed by design — dispatch happens on the Kind tag,
// never through an open interface hierarchy or reflection, per the
// "avoid open-class polymorphism" guidance this runtime follows throughout.
package widget

import "github.com/mural-tui/mural/layout"

// Kind tags a Widget's variant. Widget is a tagged union over Kind: only
// the fields relevant to a widget's Kind are populated, the rest left zero.
type Kind int

const (
	KindStack Kind = iota
	KindText
	KindButton
	KindBorder
	KindScroll
	KindList
	KindPicker
	KindTable
	KindTextBox
	KindSpinner
	KindProgressBar
	KindSplitter
	KindResponsive
	KindRescue
)

// Axis distinguishes a stack's layout direction. Depth stacks its children
// as z-order layers (a ZStack) rather than along either axis.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
	AxisDepth
)

// Theme carries style overrides a widget may apply to its own rendering;
// nil fields mean "inherit from the ambient theme".
type Theme struct {
	Fg, Bg *string
	Bold   *bool
}

// Widget is the immutable description of one tree position's intended UI,
// rebuilt fresh every frame by the application's builder. It is reconciled
// against a persistent node.Node in package node.
type Widget struct {
	Kind Kind

	// Static configuration, by Kind. Unused fields for a given Kind are
	// left zero; see the Kind's doc comment on the constructor for which
	// fields apply.
	Children []Widget
	Axis     Axis
	Hint     layout.SizeHint
	Theme    Theme

	Text      string
	Label     string
	OnClick   func()
	OnChange  func(string)
	Items     []string
	Columns   []string
	Rows      [][]string
	Selected  int
	Percent   float64
	Splits    []layout.SizeHint
	Focusable bool

	// Responsive holds, for KindResponsive, the width-ordered breakpoints:
	// the first entry whose MinWidth is <= the available width is chosen.
	Responsive []Breakpoint

	// Fallback is KindRescue's child, and OnError its error handler; a
	// panic raised while rendering Fallback's subtree is caught by the
	// owning node and replaces its render with a one-line error message.
	Fallback *Widget
	OnError  func(error)
}

// Breakpoint is one entry of a responsive-selector widget.
type Breakpoint struct {
	MinWidth int
	Widget   Widget
}

// Stack arranges children along axis, distributing space per hint.
func Stack(axis Axis, hint layout.SizeHint, children ...Widget) Widget {
	return Widget{Kind: KindStack, Axis: axis, Hint: hint, Children: children}
}

// Text is a non-interactive block of styled text.
func Text(text string, hint layout.SizeHint) Widget {
	return Widget{Kind: KindText, Text: text, Hint: hint}
}

// Button is a focusable, clickable label.
func Button(label string, onClick func()) Widget {
	return Widget{Kind: KindButton, Label: label, OnClick: onClick, Focusable: true}
}

// Border wraps a single child with a drawn frame.
func Border(child Widget, hint layout.SizeHint) Widget {
	return Widget{Kind: KindBorder, Children: []Widget{child}, Hint: hint}
}

// Scroll wraps a single child in a scrollable viewport.
func Scroll(child Widget, hint layout.SizeHint) Widget {
	return Widget{Kind: KindScroll, Children: []Widget{child}, Hint: hint, Focusable: true}
}

// List is a focusable, navigable list of items.
func List(items []string, onChange func(string)) Widget {
	return Widget{Kind: KindList, Items: items, OnChange: onChange, Focusable: true}
}

// Picker is a focusable single-value selector over items.
func Picker(items []string, selected int, onChange func(string)) Widget {
	return Widget{Kind: KindPicker, Items: items, Selected: selected, OnChange: onChange, Focusable: true}
}

// Table renders columns/rows with no per-cell interaction.
func Table(columns []string, rows [][]string) Widget {
	return Widget{Kind: KindTable, Columns: columns, Rows: rows}
}

// TextBox is a focusable single-line (or wrapped) editable text field.
func TextBox(text string, onChange func(string)) Widget {
	return Widget{Kind: KindTextBox, Text: text, OnChange: onChange, Focusable: true}
}

// Spinner is an indeterminate-progress indicator.
func Spinner() Widget {
	return Widget{Kind: KindSpinner}
}

// ProgressBar shows a determinate percent-complete indicator in [0, 1].
func ProgressBar(percent float64) Widget {
	return Widget{Kind: KindProgressBar, Percent: percent}
}

// Splitter divides its children along axis at user-draggable boundaries.
func Splitter(axis Axis, splits []layout.SizeHint, children ...Widget) Widget {
	return Widget{Kind: KindSplitter, Axis: axis, Splits: splits, Children: children}
}

// Responsive picks one of its breakpoints based on the available width at
// measure time.
func Responsive(breakpoints ...Breakpoint) Widget {
	return Widget{Kind: KindResponsive, Responsive: breakpoints}
}

// Rescue renders fallback, catching a panic from its subtree and invoking
// onError instead of propagating it up through the render loop.
func Rescue(fallback Widget, onError func(error)) Widget {
	return Widget{Kind: KindRescue, Fallback: &fallback, OnError: onError}
}

// SameVariant reports whether a and b would reconcile onto the same node
// (same Kind, and for stacks/splitters the same Axis) rather than requiring
// destroy-and-reconstruct.
func SameVariant(a, b Widget) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindStack || a.Kind == KindSplitter {
		return a.Axis == b.Axis
	}
	return true
}
