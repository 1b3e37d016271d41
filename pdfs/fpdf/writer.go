// Package fpdf implements pdfs.Writer on top of gofpdf.
package fpdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/zeptools/gw-cardpress/pdfs"
	"github.com/zeptools/gw-cardpress/rw"
)

// Template is an imported page and its MediaBox size
type Template struct {
	ID int
	W  float64
	H  float64
}

// Options for a new document
type Options struct {
	Title    string
	Producer string
	// Date is written as creation and modification date. Fixed dates make output reproducible.
	Date time.Time
	// Compress page streams. Off makes output easier to inspect.
	Compress bool
	// MaxBytes fails WriteTo when the document is larger, 0 = no limit
	MaxBytes int64
}

// Epoch is the default document date
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Writer is one single-use document. Not safe for concurrent use.
type Writer struct {
	pdf       *gofpdf.Fpdf
	size      pdfs.PaperSize
	templates *pdfs.TemplateStore[Template]
	importer  *gofpdi.Importer
	fonts     map[string]bool // "family|style"
	images    map[string]bool
	maxBytes  int64
	err       error
}

var _ pdfs.Writer[Template] = (*Writer)(nil)

func New(size pdfs.PaperSize, opts Options) *Writer {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	date := opts.Date
	if date.IsZero() {
		date = Epoch
	}
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(opts.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	if opts.Producer != "" {
		pdf.SetProducer(opts.Producer, true)
	}
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	return &Writer{
		pdf:       pdf,
		size:      size,
		templates: pdfs.NewTemplateStore[Template](),
		fonts:     map[string]bool{},
		images:    map[string]bool{},
		maxBytes:  opts.MaxBytes,
	}
}

func (w *Writer) PaperSize() pdfs.PaperSize { return w.size }

func (w *Writer) TemplateStore() *pdfs.TemplateStore[Template] { return w.templates }

func (w *Writer) fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Err returns the first drawing error, including errors raised inside gofpdf
func (w *Writer) Err() error {
	if w.err != nil {
		return w.err
	}
	return w.pdf.Error()
}

func (w *Writer) ok() bool {
	return w.err == nil && w.pdf.Ok()
}

// ImportPageAsTemplate reads page pageNum (1-based) of a PDF as a vector template
func (w *Writer) ImportPageAsTemplate(src io.ReadSeeker, pageNum int, storeKey string) (err error) {
	if !w.ok() {
		return w.Err()
	}
	// gofpdi panics on malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fpdf: import page %d: %v", pageNum, r)
		}
	}()
	if w.importer == nil {
		w.importer = gofpdi.NewImporter()
	}
	id := w.importer.ImportPageFromStream(w.pdf, &src, pageNum, "/MediaBox")
	tpl := Template{ID: id}
	if dims, ok := w.importer.GetPageSizes()[pageNum]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			tpl.W, tpl.H = mb["w"], mb["h"]
		}
	}
	if tpl.W <= 0 || tpl.H <= 0 {
		return fmt.Errorf("fpdf: page %d has no MediaBox", pageNum)
	}
	w.templates.Store(storeKey, tpl)
	return nil
}

func (w *Writer) AddBlankPage() {
	w.pdf.AddPage()
}

// AddFont embeds a TrueType face. Registering the same face twice is a no-op.
func (w *Writer) AddFont(family string, bold bool, ttf []byte) {
	style := styleOf(bold)
	key := family + "|" + style
	if w.fonts[key] {
		return
	}
	if len(ttf) == 0 {
		w.fail(fmt.Errorf("fpdf: empty font data for %s %q", family, style))
		return
	}
	w.pdf.AddUTF8FontFromBytes(family, style, ttf)
	w.fonts[key] = true
}

func (w *Writer) HasFont(family string, bold bool) bool {
	return w.fonts[family+"|"+styleOf(bold)]
}

func styleOf(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

func (w *Writer) FillRect(box pdfs.Box, c pdfs.Color) {
	w.pdf.SetFillColor(c.R, c.G, c.B)
	w.pdf.Rect(box.X, box.Y, box.W, box.H, "F")
}

func (w *Writer) FillImage(name string, data []byte, box pdfs.Box) {
	if !w.ok() {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: imageType(data), AllowNegativePosition: true}
	if opts.ImageType == "" {
		w.fail(fmt.Errorf("fpdf: image %s: unsupported format", name))
		return
	}
	if !w.images[name] {
		info := w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if info == nil || !w.pdf.Ok() {
			w.fail(fmt.Errorf("fpdf: image %s: %w", name, w.pdf.Error()))
			return
		}
		w.images[name] = true
	}
	info := w.pdf.GetImageInfo(name)
	fit := pdfs.CoverFit(info.Width(), info.Height(), box)
	w.pdf.ClipRect(box.X, box.Y, box.W, box.H, false)
	w.pdf.ImageOptions(name, fit.X, fit.Y, fit.W, fit.H, false, opts, 0, "")
	w.pdf.ClipEnd()
}

func imageType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "PNG"
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "JPG"
	}
	return ""
}

func (w *Writer) FillTemplate(storeKey string, box pdfs.Box) bool {
	tpl, ok := w.templates.Get(storeKey)
	if !ok || w.importer == nil {
		return false
	}
	fit := pdfs.CoverFit(tpl.W, tpl.H, box)
	w.pdf.ClipRect(box.X, box.Y, box.W, box.H, false)
	w.importer.UseImportedTemplate(w.pdf, tpl.ID, fit.X, fit.Y, fit.W, fit.H)
	w.pdf.ClipEnd()
	return true
}

// TextBox wraps text at box.W and places the block by style.VAlign.
// Lines that do not fit box.H are dropped.
func (w *Writer) TextBox(box pdfs.Box, text string, style pdfs.TextStyle) {
	if !w.ok() {
		return
	}
	if !w.HasFont(style.Family, style.Bold) {
		w.fail(fmt.Errorf("fpdf: font %s not registered", style.Family))
		return
	}
	text = Sanitize(text)
	if strings.TrimSpace(text) == "" {
		return
	}
	w.pdf.SetFont(style.Family, styleOf(style.Bold), style.Size)
	w.pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)

	lineHeight := style.LineHeight
	if lineHeight == 0 {
		lineHeight = 1
	}
	lh := style.Size * lineHeight
	lines := w.pdf.SplitText(text, box.W)
	if fit := int(box.H / lh); len(lines) > fit {
		lines = lines[:max(fit, 0)]
	}
	total := float64(len(lines)) * lh
	y := box.Y
	switch style.VAlign {
	case "M":
		y += (box.H - total) / 2
	case "B":
		y += box.H - total
	}
	align := style.Align
	if align == "" {
		align = "L"
	}

	opacity := style.Opacity
	if opacity == 0 {
		opacity = 1
	}
	if opacity < 1 {
		w.pdf.SetAlpha(opacity, "Normal")
	}
	for i, line := range lines {
		w.pdf.SetXY(box.X, y+float64(i)*lh)
		w.pdf.CellFormat(box.W, lh, line, "", 0, align+"M", false, 0, "")
	}
	if opacity < 1 {
		w.pdf.SetAlpha(1, "Normal")
	}
}

func (w *Writer) Line(x1, y1, x2, y2, width float64, c pdfs.Color) {
	w.pdf.SetDrawColor(c.R, c.G, c.B)
	w.pdf.SetLineWidth(width)
	w.pdf.Line(x1, y1, x2, y2)
}

// Barcode draws code as Code128
func (w *Writer) Barcode(code string, box pdfs.Box) {
	if !w.ok() {
		return
	}
	if code == "" {
		w.fail(errors.New("fpdf: empty barcode"))
		return
	}
	key := barcode.RegisterCode128(w.pdf, code)
	if !w.pdf.Ok() {
		return
	}
	barcode.Barcode(w.pdf, key, box.X, box.Y, box.W, box.H, false)
}

func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if err := w.Err(); err != nil {
		return 0, err
	}
	cw := rw.NewLimitWriter(out, w.maxBytes)
	err := w.pdf.Output(cw)
	return cw.BytesWritten(), err
}

func (w *Writer) WriteToFile(filepath string) error {
	f, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if _, err = w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (w *Writer) ProduceBytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
