// Package render turns card content into a print-ready PDF.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/cropmarks"
	"github.com/zeptools/gw-cardpress/cards/geometry"
	"github.com/zeptools/gw-cardpress/cards/themes"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
	"github.com/zeptools/gw-cardpress/pdfs"
	"github.com/zeptools/gw-cardpress/pdfs/fpdf"
)

// Error wraps a failure with the step that raised it
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "render: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// FaceSource supplies embeddable font bytes
type FaceSource interface {
	Face(family string, bold bool) ([]byte, bool)
}

// ArtworkSource supplies theme backgrounds
type ArtworkSource interface {
	Get(ctx context.Context, ref string) (*themes.Artwork, error)
}

type Options struct {
	// JobTicket is printed as a barcode in the slug area, usually the order short id
	JobTicket string
	Title     string
}

// Job ticket placement in mm, below the bottom-left crop mark
const (
	ticketGapMM    = 2.0
	ticketWidthMM  = 40.0
	ticketHeightMM = 8.0
	ticketLabelMM  = 4.0
	ticketLabelPt  = 7.0
)

type Renderer struct {
	Geometry   geometry.PageGeometry
	Compositor *compose.Compositor
	Fonts      FaceSource
	Artwork    ArtworkSource // nil renders bleed fill only
	Producer   string
	MaxBytes   int64 // largest document Render returns, 0 = no limit
}

// Compose lays out content without drawing it
func (r *Renderer) Compose(content compose.CardContent) *compose.ComposedPage {
	return r.Compositor.Compose(content, r.Geometry)
}

// Render composes content and returns the PDF bytes.
// Same content and options give the same bytes.
func (r *Renderer) Render(ctx context.Context, content compose.CardContent, opts Options) ([]byte, error) {
	page := r.Compose(content)
	w := fpdf.New(pdfs.CustomSize("card", page.Width, page.Height), fpdf.Options{
		Title:    opts.Title,
		Producer: r.Producer,
		MaxBytes: r.MaxBytes,
	})
	if err := Draw(ctx, w, page, r.Fonts, r.Artwork, opts); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, &Error{Op: "output", Err: err}
	}
	return buf.Bytes(), nil
}

// Draw paints a composed page on any pdfs.Writer
func Draw[T any](ctx context.Context, w pdfs.Writer[T], page *compose.ComposedPage, fonts FaceSource, art ArtworkSource, opts Options) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "start", Err: err}
	}
	for _, tr := range page.TextRegions() {
		data, ok := fonts.Face(tr.Family, tr.Bold)
		if !ok {
			return &Error{Op: "fonts", Err: fmt.Errorf("no face for %s", tr.Family)}
		}
		w.AddFont(tr.Family, tr.Bold, data)
	}
	w.AddBlankPage()

	bg := page.Background
	w.FillRect(box(bg.Box), pdfColor(bg.Fill))
	if art != nil && bg.ArtworkRef != "" {
		if err := drawArtwork(ctx, w, bg, art); err != nil {
			if ctx.Err() != nil {
				return &Error{Op: "artwork", Err: ctx.Err()}
			}
			log.Printf("[WARN][RENDER] theme %s: background skipped: %v", page.Theme.ID, err)
		}
	}

	for _, tr := range page.TextRegions() {
		w.TextBox(box(tr.Box), tr.Text, pdfs.TextStyle{
			Family:     tr.Family,
			Bold:       tr.Bold,
			Size:       tr.Size,
			LineHeight: tr.LineHeight,
			Color:      pdfColor(tr.Color),
			Opacity:    tr.Opacity,
			Align:      tr.Align.String(),
			VAlign:     tr.VAlign.String(),
		})
	}

	for _, s := range page.CropMarks {
		w.Line(s.From.X, s.From.Y, s.To.X, s.To.Y, cropmarks.LineWidth, pdfs.Black)
	}

	if opts.JobTicket != "" {
		if err := drawTicket(w, page, fonts, opts.JobTicket); err != nil {
			log.Printf("[WARN][RENDER] job ticket %s skipped: %v", opts.JobTicket, err)
		}
	}
	if err := w.Err(); err != nil {
		return &Error{Op: "draw", Err: err}
	}
	return nil
}

func drawArtwork[T any](ctx context.Context, w pdfs.Writer[T], bg compose.BackgroundRegion, art ArtworkSource) error {
	a, err := art.Get(ctx, bg.ArtworkRef)
	if err != nil {
		return err
	}
	switch a.Kind {
	case themes.KindPDF:
		if !w.TemplateStore().Has(a.Ref) {
			if err = w.ImportPageAsTemplate(bytes.NewReader(a.Data), 1, a.Ref); err != nil {
				return err
			}
		}
		w.FillTemplate(a.Ref, box(bg.Box))
	case themes.KindPNG, themes.KindJPEG:
		w.FillImage(a.Ref, a.Data, box(bg.Box))
	default:
		return errors.New("unsupported artwork")
	}
	return nil
}

var errNoSlugRoom = errors.New("no room below the trim box")

func drawTicket[T any](w pdfs.Writer[T], page *compose.ComposedPage, fonts FaceSource, ticket string) error {
	top := page.Background.Box.Bottom()
	if len(page.CropMarks) > 0 {
		// below the bottom-left vertical mark
		top = max(top, page.CropMarks[5].To.Y)
	}
	top += geometry.MMToUnits(ticketGapMM)
	b := pdfs.Box{
		X: page.Trim.X,
		Y: top,
		W: geometry.MMToUnits(ticketWidthMM),
		H: geometry.MMToUnits(ticketHeightMM),
	}
	labelH := geometry.MMToUnits(ticketLabelMM)
	if b.Y+b.H+labelH > page.Height || b.X+b.W > page.Width {
		return errNoSlugRoom
	}
	w.Barcode(ticket, b)

	data, ok := fonts.Face(typefaces.FallbackFamily, false)
	if !ok {
		return nil
	}
	w.AddFont(typefaces.FallbackFamily, false, data)
	w.TextBox(pdfs.Box{X: b.X, Y: b.Y + b.H, W: b.W, H: labelH}, ticket, pdfs.TextStyle{
		Family: typefaces.FallbackFamily,
		Size:   ticketLabelPt,
		Align:  "L",
		VAlign: "M",
	})
	return nil
}

func box(r geometry.Rect) pdfs.Box {
	return pdfs.Box{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func pdfColor(c themes.Color) pdfs.Color {
	r, g, b := c.RGB()
	return pdfs.Color{R: r, G: g, B: b}
}
