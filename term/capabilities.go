package term

import "github.com/muesli/termenv"

// ColorLevel ranks the color depth a terminal supports, from none to
// 24-bit truecolor.
type ColorLevel int

const (
	ColorNone ColorLevel = iota
	ColorANSI16
	ColorANSI256
	ColorTrueColor
)

// Capabilities describes what a terminal (or PTY-child, or headless
// adapter standing in for one) can render, detected once at startup rather
// than hand-parsed from $TERM/$COLORTERM every time a color needs
// resolving. Reuses termenv's environment probing (already pulled in for
// surface's ANSI encoder) instead of duplicating that logic here.
type Capabilities struct {
	Color  ColorLevel
	Mouse  bool
	Sixel  bool
	Kitty  bool
	// CellPixelW/H hold the pixel size of one character cell; zero means
	// unknown. DetectCapabilities does not query it and leaves both at zero.
	CellPixelW, CellPixelH int
}

// DetectCapabilities probes the environment for color depth via termenv;
// Mouse/Sixel/Kitty reflect this Terminal instance's own negotiated state
// (it already knows whether those protocols were enabled and whether a
// client asked for mouse reporting), not a hardware query.
func DetectCapabilities(t *Terminal) Capabilities {
	profile := termenv.ColorProfile()
	var level ColorLevel
	switch profile {
	case termenv.TrueColor:
		level = ColorTrueColor
	case termenv.ANSI256:
		level = ColorANSI256
	case termenv.ANSI:
		level = ColorANSI16
	default:
		level = ColorNone
	}
	if termenv.EnvNoColor() {
		level = ColorNone
	}

	return Capabilities{
		Color: level,
		Mouse: t.HasMode(ModeReportMouseClicks) || t.HasMode(ModeReportAllMouseMotion),
		Sixel: t.SixelEnabled(),
		Kitty: t.KittyEnabled(),
	}
}
