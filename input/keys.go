// Package input implements focus navigation, mouse hit-testing, and the
// keyboard chord-trie matcher that sit between the adapter's raw event
// stream and the node tree's per-node handlers.
//
// Grounded on scottpeterman/tetherssh's terminal key-binding resolution
// (other_examples) for the chord trie shape, and on the teacher's existing
// ansicode.KeyboardMode / ModifyOtherKeys modifier-bit-pack plumbing
// (handler.go) for the Modifiers bitmask convention reused here.
package input

// Key identifies a non-printable key. Printable keys are carried as a rune
// on KeyEvent instead (KeyRune).
type Key int

const (
	KeyRune Key = iota // printable; see KeyEvent.Rune
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifiers is a bitmask of held modifier keys, mirroring the teacher's
// modifier-bit-pack convention from its SGR-mouse / keyboard-mode handling
// (handler.go) rather than introducing a new encoding.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// KeyEvent is one decoded keyboard input.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods Modifiers
}

// ChordKey is the hashable identity of one key press used as a trie edge
// label: Key plus Rune (when Key == KeyRune) plus Mods.
type ChordKey struct {
	Key  Key
	Rune rune
	Mods Modifiers
}

// ChordOf reduces a KeyEvent to its ChordKey.
func ChordOf(e KeyEvent) ChordKey {
	return ChordKey{Key: e.Key, Rune: e.Rune, Mods: e.Mods}
}

// MouseButton identifies which mouse button (if any) produced a MouseEvent.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is one decoded mouse input, in adapter-local coordinates.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
	Mods   Modifiers
}
