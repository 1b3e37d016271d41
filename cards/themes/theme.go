// Package themes holds the card designs: artwork, text colour and bleed fill.
package themes

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an sRGB colour parsed from "#rrggbb" or "#rgb"
type Color struct {
	colorful.Color
}

func ParseColor(hex string) (Color, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return Color{c}, nil
}

func MustParseColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// RGB returns 0-255 channels, the form PDF writers take
func (c Color) RGB() (r, g, b int) {
	r8, g8, b8 := c.Clamped().RGB255()
	return int(r8), int(g8), int(b8)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Theme is one card design.
// ID is issued by the registry as "<category>_<variant>", variant counting from 1.
type Theme struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Variant       int    `json:"variant"`
	BackgroundRef string `json:"background"` // URL or local file path of the artwork
	TextColor     Color  `json:"text_color"`
	BleedFill     Color  `json:"bleed_fill"` // shown where the artwork does not cover the bleed box
}

func MakeID(category string, variant int) string {
	return fmt.Sprintf("%s_%d", category, variant)
}
