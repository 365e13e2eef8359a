package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for playfield elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// ComboPalette is the default rotation of combo colors, matching the
// built-in four-color palette charts fall back to when they supply no
// [Colours] section of their own.
var ComboPalette = []Color{
	ColorBrightBlue,
	ColorBrightGreen,
	ColorBrightYellow,
	ColorBrightMagenta,
}

// ComboColor returns the display color for a combo color index, wrapping
// through the palette.
func ComboColor(index int) Color {
	if index < 0 {
		index = 0
	}
	return ComboPalette[index%len(ComboPalette)]
}
