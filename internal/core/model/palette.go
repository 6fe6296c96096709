package model

// Palette is the ordered list of topic colors. The first two entries are
// reserved for the default Pass and Fail topics.
type Palette []string

// DefaultPalette is the palette used unless a store is configured otherwise.
var DefaultPalette = Palette{
	"#27AE60", // Pass
	"#E74C3C", // Fail
	"#3498DB",
	"#F39C12",
	"#9B59B6",
	"#1ABC9C",
	"#E67E22",
	"#34495E",
	"#F1C40F",
	"#7F8C8D",
}

// ReservedColors is the number of leading palette entries kept for defaults.
const ReservedColors = 2

// Pass returns the color pinned to the default Pass topic.
func (p Palette) Pass() string {
	return p[0]
}

// Fail returns the color pinned to the default Fail topic.
func (p Palette) Fail() string {
	return p[1]
}

// Next returns the color handed to the user topic created at cycle index i.
// User topics skip the reserved entries as long as the palette is larger
// than ReservedColors.
func (p Palette) Next(i int) string {
	if len(p) == 0 {
		return ""
	}
	if len(p) <= ReservedColors {
		return p[i%len(p)]
	}
	return p[ReservedColors+i%(len(p)-ReservedColors)]
}
