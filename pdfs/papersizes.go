package pdfs

type PaperSize struct {
	Name   string
	Width  float64 // in `pt` (1" = 72pts)
	Height float64 // in `pt`
}

var (
	LetterSize = PaperSize{Name: "Letter", Width: 612, Height: 792}         // 8.5" x 11"
	A4Size     = PaperSize{Name: "A4", Width: 595.27559, Height: 841.88976} // 210mm x 297mm
	A6Size     = PaperSize{Name: "A6", Width: 297.63780, Height: 419.52756} // 105mm x 148mm
)

// CustomSize names an arbitrary page box given in pt
func CustomSize(name string, width, height float64) PaperSize {
	return PaperSize{Name: name, Width: width, Height: height}
}

func (p PaperSize) Landscape() bool { return p.Width > p.Height }
