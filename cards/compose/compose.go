// Package compose lays out a greeting card page from its content and geometry.
package compose

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zeptools/gw-cardpress/cards/cropmarks"
	"github.com/zeptools/gw-cardpress/cards/geometry"
	"github.com/zeptools/gw-cardpress/cards/themes"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
)

// Type sizes and spacing in points
const (
	MessageSize       = 14.0
	MessageLineHeight = 1.5
	MessageGap        = 10.0 // between message and whatever sits below it

	SignatureSize       = 16.0
	SignatureLineHeight = 1.2
	SignaturePadding    = 10.0
	SignatureOpacity    = 0.9

	FooterBand = 20.0
	FooterSize = 8.0
)

var FooterColor = themes.MustParseColor("#94a3b8")

// CardContent is the per-order input
type CardContent struct {
	Message     string `json:"message"`
	Signature   string `json:"signature,omitempty"`
	ThemeKey    string `json:"theme"`
	FontChoice  string `json:"font"`
	FooterLabel string `json:"footer,omitempty"` // empty hides the footer
}

type ThemeResolver interface {
	Resolve(key string) themes.Theme
}

type FontResolver interface {
	Resolve(choice string) typefaces.ResolvedFont
	Brand() typefaces.ResolvedFont
}

type Compositor struct {
	Themes ThemeResolver
	Fonts  FontResolver
}

func New(themes ThemeResolver, fonts FontResolver) *Compositor {
	return &Compositor{Themes: themes, Fonts: fonts}
}

// Compose never fails: unknown theme and font keys resolve to defaults.
// The result depends only on its arguments and the read-only resolvers.
func (c *Compositor) Compose(content CardContent, g geometry.PageGeometry) *ComposedPage {
	theme := c.Themes.Resolve(content.ThemeKey)
	font := c.Fonts.Resolve(content.FontChoice)

	page := &ComposedPage{
		Width:  g.Sheet.W,
		Height: g.Sheet.H,
		Trim:   g.Trim,
		Background: BackgroundRegion{
			Box:        g.Bleed,
			ArtworkRef: theme.BackgroundRef,
			Fill:       theme.BleedFill,
		},
		CropMarks: cropmarks.Compute(g),
		Theme:     theme,
		Font:      font,
	}

	safe := g.Safe
	page.Safe.Box = safe
	bottom := safe.Bottom()
	// band takes up to h from the bottom of what is left of the safe area
	band := func(h float64) geometry.Rect {
		h = min(h, bottom-safe.Y)
		bottom -= h
		return geometry.Rect{X: safe.X, Y: bottom, W: safe.W, H: h}
	}

	footerLabel := strings.TrimSpace(content.FooterLabel)
	if footerLabel != "" {
		page.Safe.Footer = &TextRegion{
			Box:        band(FooterBand),
			Text:       cases.Upper(language.Und).String(footerLabel),
			Family:     c.Fonts.Brand().Family,
			Bold:       true,
			Size:       FooterSize,
			LineHeight: 1,
			Color:      FooterColor,
			Opacity:    1,
			Align:      AlignCenter,
			VAlign:     VAlignBottom,
		}
	}

	signature := strings.TrimSpace(content.Signature)
	if signature != "" {
		page.Safe.Signature = &TextRegion{
			Box:        band(SignatureSize * SignatureLineHeight),
			Text:       signature,
			Family:     font.Family,
			Size:       SignatureSize,
			LineHeight: SignatureLineHeight,
			Color:      theme.TextColor,
			Opacity:    SignatureOpacity,
			Align:      AlignRight,
			VAlign:     VAlignBottom,
		}
		band(SignaturePadding)
	}

	if page.Safe.Footer != nil || page.Safe.Signature != nil {
		band(MessageGap)
	}
	page.Safe.Message = TextRegion{
		Box:        geometry.Rect{X: safe.X, Y: safe.Y, W: safe.W, H: max(0, bottom-safe.Y)},
		Text:       content.Message,
		Family:     font.Family,
		Size:       MessageSize,
		LineHeight: MessageLineHeight,
		Color:      theme.TextColor,
		Opacity:    1,
		Align:      AlignCenter,
		VAlign:     VAlignMiddle,
	}
	return page
}
