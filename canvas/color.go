package canvas

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
)

// Background is the canvas fill and the color the eraser paints with.
var Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Ink is the fallback when a wire color cannot be parsed.
var Ink = color.RGBA{A: 0xff}

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]

	var r, g, b uint64
	var err error
	switch len(hex) {
	case 3:
		r, err = strconv.ParseUint(hex[0:1]+hex[0:1], 16, 8)
		if err == nil {
			g, err = strconv.ParseUint(hex[1:2]+hex[1:2], 16, 8)
		}
		if err == nil {
			b, err = strconv.ParseUint(hex[2:3]+hex[2:3], 16, 8)
		}
	case 6:
		r, err = strconv.ParseUint(hex[0:2], 16, 8)
		if err == nil {
			g, err = strconv.ParseUint(hex[2:4], 16, 8)
		}
		if err == nil {
			b, err = strconv.ParseUint(hex[4:6], 16, 8)
		}
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
}

// ColorOr parses a wire color, falling back when malformed. Render never
// fails on bad input; it degrades.
func ColorOr(s string, fallback color.RGBA) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		slog.Debug("bad color, using fallback", "color", s)
		return fallback
	}
	return c
}
