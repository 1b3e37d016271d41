package themes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zeptools/gw-cardpress/db/kvdb"
)

// ArtworkKind is the decoded format of a background file
type ArtworkKind string

const (
	KindPNG  ArtworkKind = "PNG"
	KindJPEG ArtworkKind = "JPG"
	KindPDF  ArtworkKind = "PDF"
)

// ErrArtworkUnavailable marks a background that failed to load.
// The failure is permanent for the life of the process.
var ErrArtworkUnavailable = errors.New("themes: artwork unavailable")

const maxArtworkBytes = 20 << 20

type Artwork struct {
	Ref  string
	Kind ArtworkKind
	Data []byte
}

// Fetcher reads raw artwork bytes for a reference
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPFetcher loads http(s) URLs with Client and anything else from disk
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return os.ReadFile(strings.TrimPrefix(ref, "file://"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Printf("[WARN][THEMES] %v", err)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP status %d", ref, res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxArtworkBytes))
}

type artworkSlot struct {
	once sync.Once
	art  *Artwork
	err  error
}

// ArtworkStore loads each background at most once per process.
// Bytes are also kept in the KV database so restarts skip the CDN.
type ArtworkStore struct {
	Fetcher   Fetcher
	Cache     kvdb.Client // optional
	KeyPrefix string      // e.g. "cardpress_artwork:"
	CacheTTL  time.Duration
	Timeout   time.Duration // per fetch, 0 = 20s

	slots sync.Map // ref -> *artworkSlot
}

// Get returns the artwork for ref. A failed load stays failed.
func (s *ArtworkStore) Get(ctx context.Context, ref string) (*Artwork, error) {
	if ref == "" {
		return nil, ErrArtworkUnavailable
	}
	v, _ := s.slots.LoadOrStore(ref, &artworkSlot{})
	slot := v.(*artworkSlot)
	slot.once.Do(func() {
		slot.art, slot.err = s.load(ctx, ref)
		if slot.err != nil {
			log.Printf("[WARN][THEMES] artwork %s unavailable, using fill colour: %v", ref, slot.err)
			slot.err = fmt.Errorf("%w: %v", ErrArtworkUnavailable, slot.err)
		}
	})
	return slot.art, slot.err
}

// Preload warms every theme of reg and returns how many failed
func (s *ArtworkStore) Preload(ctx context.Context, reg *Registry) int {
	failed := 0
	for _, t := range reg.Themes() {
		if _, err := s.Get(ctx, t.BackgroundRef); err != nil {
			failed++
		}
	}
	log.Printf("[INFO][THEMES] %d artworks preloaded, %d unavailable", len(reg.IDs())-failed, failed)
	return failed
}

func (s *ArtworkStore) cacheKey(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return s.KeyPrefix + hex.EncodeToString(sum[:])
}

func (s *ArtworkStore) load(ctx context.Context, ref string) (*Artwork, error) {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	// the outcome is kept for every later caller, so the first caller's
	// cancellation must not end the load
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if s.Cache != nil {
		val, found, err := s.Cache.Get(ctx, s.cacheKey(ref))
		if err != nil {
			log.Printf("[WARN][THEMES] artwork cache read: %v", err)
		} else if found {
			if art, err := decodeArtwork(ref, []byte(val)); err == nil {
				return art, nil
			}
		}
	}
	if s.Fetcher == nil {
		return nil, errors.New("no fetcher configured")
	}
	data, err := s.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	art, err := decodeArtwork(ref, data)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err = s.Cache.Set(ctx, s.cacheKey(ref), data, s.CacheTTL); err != nil {
			log.Printf("[WARN][THEMES] artwork cache write: %v", err)
		}
	}
	return art, nil
}

func decodeArtwork(ref string, data []byte) (*Artwork, error) {
	var kind ArtworkKind
	switch http.DetectContentType(data) {
	case "image/png":
		kind = KindPNG
	case "image/jpeg":
		kind = KindJPEG
	case "application/pdf":
		kind = KindPDF
	default:
		return nil, fmt.Errorf("unsupported artwork format for %s", ref)
	}
	return &Artwork{Ref: ref, Kind: kind, Data: data}, nil
}
