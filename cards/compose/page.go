package compose

import (
	"github.com/zeptools/gw-cardpress/cards/cropmarks"
	"github.com/zeptools/gw-cardpress/cards/geometry"
	"github.com/zeptools/gw-cardpress/cards/themes"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the gofpdf alignment letter
func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignRight:
		return "R"
	}
	return "L"
}

type VAlign int

const (
	VAlignTop VAlign = iota
	VAlignMiddle
	VAlignBottom
)

func (v VAlign) String() string {
	switch v {
	case VAlignMiddle:
		return "M"
	case VAlignBottom:
		return "B"
	}
	return "T"
}

// TextRegion is a text run laid out inside Box. The renderer wraps it at Box.W.
type TextRegion struct {
	Box        geometry.Rect `json:"box"`
	Text       string        `json:"text"`
	Family     string        `json:"family"`
	Bold       bool          `json:"bold"`
	Size       float64       `json:"size"`        // points
	LineHeight float64       `json:"line_height"` // multiple of Size
	Color      themes.Color  `json:"color"`
	Opacity    float64       `json:"opacity"`
	Align      Align         `json:"align"`
	VAlign     VAlign        `json:"valign"`
}

// BackgroundRegion covers the bleed box: fill first, artwork on top (cover fit)
type BackgroundRegion struct {
	Box        geometry.Rect `json:"box"`
	ArtworkRef string        `json:"artwork"`
	Fill       themes.Color  `json:"fill"`
}

// SafeRegion holds the text. Signature and Footer are nil when absent.
type SafeRegion struct {
	Box       geometry.Rect `json:"box"`
	Message   TextRegion    `json:"message"`
	Signature *TextRegion   `json:"signature,omitempty"`
	Footer    *TextRegion   `json:"footer,omitempty"`
}

// ComposedPage is the positioned page description handed to the renderer.
// All coordinates are document units on the sheet.
type ComposedPage struct {
	Width      float64                `json:"width"`
	Height     float64                `json:"height"`
	Trim       geometry.Rect          `json:"trim"`
	Background BackgroundRegion       `json:"background"`
	Safe       SafeRegion             `json:"safe"`
	CropMarks  []cropmarks.Segment    `json:"crop_marks"`
	Theme      themes.Theme           `json:"theme"`
	Font       typefaces.ResolvedFont `json:"font"`
}

// Families lists the typeface families the page uses, each once
func (p *ComposedPage) Families() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range p.TextRegions() {
		if !seen[r.Family] {
			seen[r.Family] = true
			out = append(out, r.Family)
		}
	}
	return out
}

// TextRegions returns message, signature and footer in drawing order
func (p *ComposedPage) TextRegions() []TextRegion {
	list := []TextRegion{p.Safe.Message}
	if p.Safe.Signature != nil {
		list = append(list, *p.Safe.Signature)
	}
	if p.Safe.Footer != nil {
		list = append(list, *p.Safe.Footer)
	}
	return list
}
