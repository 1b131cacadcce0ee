package render

// palette is the 8-color cycle assigned to bikes that do not declare their
// own color. The single-letter names are kept for compatibility with spec
// files written for the original tool.
var palette = []string{"b", "g", "r", "c", "m", "y", "k", "w"}

// namedColors maps the single-letter color names to hex values.
var namedColors = map[string]string{
	"b": "#1f77b4", // blue
	"g": "#2ca02c", // green
	"r": "#d62728", // red
	"c": "#17becf", // cyan
	"m": "#e377c2", // magenta
	"y": "#bcbd22", // yellow
	"k": "#000000", // black
	"w": "#ffffff", // white
}

// ColorForIndex returns the palette color for the n-th bike in a comparison.
func ColorForIndex(n int) string {
	if n < 0 {
		n = -n
	}
	return palette[n%len(palette)]
}

// colorHex resolves a color to a hex value: single-letter names map through
// the palette, anything else (already-hex, CSS names) passes through.
func colorHex(color string) string {
	if hex, ok := namedColors[color]; ok {
		return hex
	}
	if color == "" {
		return namedColors["b"]
	}
	return color
}
