package util

import (
	"fmt"
	"strconv"
	"strings"
)

// brightnessThreshold is the perceived brightness above which dark text
// reads better than light text.
const brightnessThreshold = 155

// RGB is a parsed hex color.
type RGB struct {
	R, G, B int
}

// ParseHexColor parses "#RRGGBB" or "#RGB", with or without the leading '#'.
func ParseHexColor(hex string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return RGB{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}, nil
}

// Brightness returns the perceived brightness of c on a 0-255 scale.
func (c RGB) Brightness() float64 {
	return float64(c.R*299+c.G*587+c.B*114) / 1000
}

// ContrastColor returns the foreground color that stays readable on a
// background of the given hex color. Unparseable colors get the light
// foreground.
func ContrastColor(hex string) string {
	c, err := ParseHexColor(hex)
	if err != nil {
		return LightForeground
	}
	if c.Brightness() > brightnessThreshold {
		return DarkForeground
	}
	return LightForeground
}

// Foreground colors returned by ContrastColor
const (
	DarkForeground  = "#000000"
	LightForeground = "#FFFFFF"
)
