package conf

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/geometry"
	"github.com/zeptools/gw-cardpress/cards/render"
	"github.com/zeptools/gw-cardpress/cards/themes"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
	"github.com/zeptools/gw-cardpress/orders"
)

// CardsConf is read from .cards.json. Every field is optional.
type CardsConf struct {
	Geometry           geometry.Config `json:"geometry"`
	ThemesFile         string          `json:"themes_file"` // builtin table when empty
	FontDirs           []string        `json:"font_dirs"`   // relative to AppRoot unless absolute
	SystemFonts        bool            `json:"system_fonts"`
	PreloadArtwork     bool            `json:"preload_artwork"`
	ArtworkCacheTTLSec int             `json:"artwork_cache_ttl_sec"` // 0 = no expiry
	Limits             orders.Limits   `json:"limits"`
	Producer           string          `json:"producer"`
	MaxPDFBytes        int64           `json:"max_pdf_bytes"` // 0 = no limit
}

// DefaultMaxPDFBytes keeps a card under the mail API attachment cap
const DefaultMaxPDFBytes = 40 << 20

func DefaultCardsConf() CardsConf {
	return CardsConf{
		Geometry:       geometry.DefaultConfig(),
		FontDirs:       []string{"public/fonts"},
		PreloadArtwork: true,
		Limits:         orders.DefaultLimits(),
		Producer:       "cardpress",
		MaxPDFBytes:    DefaultMaxPDFBytes,
	}
}

// Cards is the wired layout engine
type Cards struct {
	Conf     CardsConf
	Geometry geometry.PageGeometry
	Themes   *themes.Registry
	Fonts    *typefaces.Resolver
	Artwork  *themes.ArtworkStore
	Renderer *render.Renderer
}

// PrepareCards loads .cards.json (optional) and builds the renderer.
// Prerequisite: BackendHttpClient. BackendKVDBClient is used as artwork cache when present.
func (c *Core[B]) PrepareCards() error {
	cc := DefaultCardsConf()
	if _, err := c.loadOptionalJSON(".cards.json", &cc); err != nil {
		return err
	}
	cards, err := c.newCards(cc)
	if err != nil {
		return err
	}
	c.Cards = cards
	// one-shot tools load only the artwork they render
	if cc.PreloadArtwork && !c.tool {
		ctx, cancel := context.WithTimeout(c.RootCtx, time.Minute)
		defer cancel()
		cards.Artwork.Preload(ctx, cards.Themes)
	}
	return nil
}

func (c *Core[B]) newCards(cc CardsConf) (*Cards, error) {
	g, err := geometry.Compute(cc.Geometry)
	if err != nil {
		return nil, err
	}
	reg := themes.Builtin()
	if cc.ThemesFile != "" {
		if reg, err = themes.LoadFile(c.RootPath(cc.ThemesFile)); err != nil {
			return nil, fmt.Errorf("themes: %w", err)
		}
	}
	dirs := make([]string, len(cc.FontDirs))
	for i, d := range cc.FontDirs {
		dirs[i] = c.RootPath(d)
	}
	fonts := typefaces.NewResolver(typefaces.DirLocator{Dirs: dirs, System: cc.SystemFonts})
	fonts.Load()

	art := &themes.ArtworkStore{
		Fetcher:   &themes.HTTPFetcher{Client: c.BackendHttpClient},
		KeyPrefix: c.AppName + "_artwork:",
		CacheTTL:  time.Duration(cc.ArtworkCacheTTLSec) * time.Second,
	}
	if c.BackendKVDBClient != nil {
		art.Cache = c.BackendKVDBClient
	}
	log.Printf("[INFO][CARDS] %d themes, default %s, card %gx%g mm, bleed %g mm",
		len(reg.IDs()), reg.DefaultID(), g.CardWidthMM, g.CardHeightMM, g.BleedMM)
	return &Cards{
		Conf:     cc,
		Geometry: g,
		Themes:   reg,
		Fonts:    fonts,
		Artwork:  art,
		Renderer: &render.Renderer{
			Geometry:   g,
			Compositor: compose.New(reg, fonts),
			Fonts:      fonts,
			Artwork:    art,
			Producer:   cc.Producer,
			MaxBytes:   cc.MaxPDFBytes,
		},
	}, nil
}
