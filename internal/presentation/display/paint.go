package display

import (
	"github.com/fatih/color"
	"github.com/penwyp/go-tally/internal/util"
)

// swatch renders text on a hex background with a readable foreground.
func swatch(text, hex string) string {
	bg, err := util.ParseHexColor(hex)
	if err != nil {
		return text
	}
	fg, _ := util.ParseHexColor(util.ContrastColor(hex))
	return color.RGB(fg.R, fg.G, fg.B).AddBgRGB(bg.R, bg.G, bg.B).Sprint(text)
}

// tint renders text in a hex foreground color.
func tint(text, hex string) string {
	c, err := util.ParseHexColor(hex)
	if err != nil {
		return text
	}
	return color.RGB(c.R, c.G, c.B).Sprint(text)
}

var (
	boldText  = color.New(color.Bold).SprintFunc()
	faintText = color.New(color.Faint).SprintFunc()
	alertText = color.New(color.FgHiWhite, color.BgRed, color.Bold).SprintFunc()
)
