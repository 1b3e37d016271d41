package pdfs

import "io"

// Color is 0-255 RGB
type Color struct {
	R, G, B int
}

var Black = Color{}

// Box is a page rectangle in pt, origin top-left
type Box struct {
	X, Y, W, H float64
}

// TextStyle describes how TextBox sets a run of text
type TextStyle struct {
	Family     string
	Bold       bool
	Size       float64 // pt
	LineHeight float64 // multiple of Size, 1 if zero
	Color      Color
	Opacity    float64 // 1 if zero
	Align      string  // L, C, R
	VAlign     string  // T, M, B
}

// Writer — minimal, stream-style, append-only PDF writer. No page navigation
// T: Concrete Template Type -> depends on each implementation
//
// Drawing calls do not return errors; the first failure is kept and reported by Err and the output methods.
type Writer[T any] interface {
	PaperSize() PaperSize

	TemplateStore() *TemplateStore[T]
	ImportPageAsTemplate(src io.ReadSeeker, pageNum int, storeKey string) error

	AddBlankPage()
	AddFont(family string, bold bool, ttf []byte)

	FillRect(box Box, c Color)
	// FillImage scales a PNG or JPEG to cover box, clipped to box
	FillImage(name string, data []byte, box Box)
	// FillTemplate is FillImage for an imported page. False if storeKey is unknown.
	FillTemplate(storeKey string, box Box) bool
	TextBox(box Box, text string, style TextStyle)
	Line(x1, y1, x2, y2, width float64, c Color)
	Barcode(code string, box Box)

	Err() error
	WriteTo(w io.Writer) (int64, error)
	WriteToFile(filepath string) error
	ProduceBytes() ([]byte, error)
}

// CoverFit scales a w x h object to cover box, centered. The result may overflow box.
func CoverFit(w, h float64, box Box) Box {
	if w <= 0 || h <= 0 {
		return box
	}
	s := max(box.W/w, box.H/h)
	cw, ch := w*s, h*s
	return Box{X: box.X + (box.W-cw)/2, Y: box.Y + (box.H-ch)/2, W: cw, H: ch}
}
