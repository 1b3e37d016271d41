package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/geometry"
	"github.com/zeptools/gw-cardpress/cards/themes"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
	"github.com/zeptools/gw-cardpress/rw"
)

type fakeArtwork struct {
	data  []byte
	calls int
}

func (f *fakeArtwork) Get(_ context.Context, ref string) (*themes.Artwork, error) {
	f.calls++
	if f.data == nil {
		return nil, themes.ErrArtworkUnavailable
	}
	return &themes.Artwork{Ref: ref, Kind: themes.KindPNG, Data: f.data}, nil
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	for x := 0; x < 4; x++ {
		for y := 0; y < 6; y++ {
			img.Set(x, y, color.RGBA{R: 250, G: 230, B: 240, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newRenderer(t *testing.T, art ArtworkSource) *Renderer {
	t.Helper()
	g, err := geometry.Compute(geometry.DefaultConfig())
	require.NoError(t, err)
	fonts := typefaces.NewResolver(typefaces.DirLocator{Dirs: []string{t.TempDir()}})
	return &Renderer{
		Geometry:   g,
		Compositor: compose.New(themes.Builtin(), fonts),
		Fonts:      fonts,
		Artwork:    art,
		Producer:   "cardpress",
	}
}

var birthday = compose.CardContent{
	Message:     "Happy Birthday!",
	Signature:   "Mia",
	ThemeKey:    "gentle_1",
	FontChoice:  typefaces.ChoiceElegant,
	FooterLabel: "Rose Studio",
}

func TestRenderProducesPDF(t *testing.T) {
	art := &fakeArtwork{data: tinyPNG(t)}
	r := newRenderer(t, art)
	data, err := r.Render(context.Background(), birthday, Options{JobTicket: "ROS-4821"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, 1, art.calls)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := newRenderer(t, &fakeArtwork{data: tinyPNG(t)})
	a, err := r.Render(context.Background(), birthday, Options{JobTicket: "ROS-4821"})
	require.NoError(t, err)
	b, err := r.Render(context.Background(), birthday, Options{JobTicket: "ROS-4821"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderWithoutArtwork(t *testing.T) {
	r := newRenderer(t, &fakeArtwork{})
	data, err := r.Render(context.Background(), birthday, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	r.Artwork = nil
	_, err = r.Render(context.Background(), compose.CardContent{ThemeKey: "xyz", FontChoice: "foo"}, Options{})
	require.NoError(t, err)
}

func TestRenderCancelled(t *testing.T) {
	r := newRenderer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Render(ctx, birthday, Options{})
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "start", re.Op)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderOverSizeLimit(t *testing.T) {
	r := newRenderer(t, &fakeArtwork{data: tinyPNG(t)})
	r.MaxBytes = 1 << 10
	_, err := r.Render(context.Background(), birthday, Options{})
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "output", re.Op)
	assert.ErrorIs(t, err, rw.ErrLimitExceeded)
}

type noFaces struct{}

func (noFaces) Face(string, bool) ([]byte, bool) { return nil, false }

func TestRenderMissingFace(t *testing.T) {
	r := newRenderer(t, nil)
	r.Fonts = noFaces{}
	_, err := r.Render(context.Background(), birthday, Options{})
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "fonts", re.Op)
}

func TestTicketNeedsSlugRoom(t *testing.T) {
	cfg := geometry.DefaultConfig()
	cfg.SheetWidthMM, cfg.SheetHeightMM = 0, 0
	g, err := geometry.Compute(cfg)
	require.NoError(t, err)
	r := newRenderer(t, nil)
	r.Geometry = g
	// ticket is dropped, the card itself still renders
	data, err := r.Render(context.Background(), birthday, Options{JobTicket: "ROS-4821"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
