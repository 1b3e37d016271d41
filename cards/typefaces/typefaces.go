// Package typefaces maps the customer's font choice to an embeddable typeface.
//
// Custom families are loaded once per process. If any of them fails, every
// choice resolves to the embedded Go fonts for the rest of the process, so a
// document never mixes custom and fallback glyphs.
package typefaces

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

const (
	ChoiceModern      = "font-inter"
	ChoiceElegant     = "font-playfair"
	ChoiceHandwritten = "font-vibes"
	DefaultChoice     = ChoiceModern

	// FallbackFamily is registered from the embedded Go fonts and always loads
	FallbackFamily = "GoRegular"
	// BrandFamily sets the footer label, bold
	BrandFamily = "Roboto"
)

// Family is a custom typeface and its font files
type Family struct {
	Name    string `json:"name"`
	Regular string `json:"regular"`
	Bold    string `json:"bold,omitempty"` // optional
}

// DefaultFamilies are the families the card builder offers
var DefaultFamilies = []Family{
	{Name: "Roboto", Regular: "Roboto-Regular.ttf", Bold: "Roboto-Bold.ttf"},
	{Name: "MarckScript", Regular: "MarckScript-Regular.ttf"},
	{Name: "GreatVibes", Regular: "GreatVibes-Regular.ttf"},
}

// ChoiceInfo describes one selectable typeface
type ChoiceInfo struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Family string `json:"family"`
}

var choices = []ChoiceInfo{
	{ID: ChoiceModern, Label: "Modern", Family: "Roboto"},
	{ID: ChoiceElegant, Label: "Elegant", Family: "MarckScript"},
	{ID: ChoiceHandwritten, Label: "Handwritten", Family: "GreatVibes"},
}

// Choices lists the font choices in display order
func Choices() []ChoiceInfo {
	return append([]ChoiceInfo(nil), choices...)
}

// KnownChoice reports whether id is one of Choices
func KnownChoice(id string) bool {
	for _, c := range choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ResolvedFont names the family to use. Loaded is false when the fallback is in effect.
type ResolvedFont struct {
	Family string `json:"family"`
	Loaded bool   `json:"loaded"`
}

// Face is one font file ready to embed
type Face struct {
	Family string
	Bold   bool
	Data   []byte
}

// AssetLoadError records a font file that could not be used
type AssetLoadError struct {
	Family string
	File   string
	Err    error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("typefaces: family %s file %q: %v", e.Family, e.File, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

type faceKey struct {
	family string
	bold   bool
}

// snapshot is immutable once published
type snapshot struct {
	loaded   bool
	faces    map[faceKey][]byte
	failures []error
}

// Resolver owns the process-wide font state.
// The zero value is not usable; build it with NewResolver.
type Resolver struct {
	Families []Family
	Locator  Locator

	once sync.Once
	snap *snapshot
}

func NewResolver(locator Locator) *Resolver {
	return &Resolver{Families: DefaultFamilies, Locator: locator}
}

// Load runs the single load attempt. Later calls return the same outcome.
func (r *Resolver) Load() bool {
	return r.state().loaded
}

func (r *Resolver) state() *snapshot {
	r.once.Do(func() {
		r.snap = r.load()
	})
	return r.snap
}

func (r *Resolver) load() *snapshot {
	s := &snapshot{faces: map[faceKey][]byte{
		{FallbackFamily, false}: goregular.TTF,
		{FallbackFamily, true}:  gobold.TTF,
	}}
	custom := map[faceKey][]byte{}
	for _, fam := range r.Families {
		if err := r.loadFace(custom, fam.Name, false, fam.Regular); err != nil {
			s.failures = append(s.failures, err)
		}
		if fam.Bold != "" {
			if err := r.loadFace(custom, fam.Name, true, fam.Bold); err != nil {
				s.failures = append(s.failures, err)
			}
		}
	}
	if len(s.failures) > 0 {
		for _, err := range s.failures {
			log.Printf("[WARN][FONTS] %v", err)
		}
		log.Printf("[WARN][FONTS] custom typefaces unavailable, every choice uses %s", FallbackFamily)
		return s
	}
	for k, v := range custom {
		s.faces[k] = v
	}
	s.loaded = true
	log.Printf("[INFO][FONTS] %d custom families loaded", len(r.Families))
	return s
}

func (r *Resolver) loadFace(dst map[faceKey][]byte, family string, bold bool, file string) error {
	if r.Locator == nil {
		return &AssetLoadError{Family: family, File: file, Err: fmt.Errorf("no font locator")}
	}
	path, err := r.Locator.Locate(file)
	if err != nil {
		return &AssetLoadError{Family: family, File: file, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &AssetLoadError{Family: family, File: file, Err: err}
	}
	if err = validate(data); err != nil {
		return &AssetLoadError{Family: family, File: path, Err: err}
	}
	dst[faceKey{family, bold}] = data
	return nil
}

// validate parses the font tables so a truncated or non-font file is caught at load time
func validate(data []byte) error {
	f, err := sfnt.Parse(data)
	if err != nil {
		return err
	}
	if f.NumGlyphs() == 0 {
		return fmt.Errorf("font has no glyphs")
	}
	return nil
}

func familyOf(choice string) string {
	for _, c := range choices {
		if c.ID == choice {
			return c.Family
		}
	}
	return familyOf(DefaultChoice)
}

// Resolve maps a font choice to a family. Unknown choices resolve as DefaultChoice.
func (r *Resolver) Resolve(choice string) ResolvedFont {
	s := r.state()
	if !s.loaded {
		return ResolvedFont{Family: FallbackFamily}
	}
	return ResolvedFont{Family: familyOf(choice), Loaded: true}
}

// Brand is the family for the footer label
func (r *Resolver) Brand() ResolvedFont {
	s := r.state()
	if !s.loaded {
		return ResolvedFont{Family: FallbackFamily}
	}
	return ResolvedFont{Family: BrandFamily, Loaded: true}
}

// Face returns font bytes. A missing bold face falls back to the regular one.
func (r *Resolver) Face(family string, bold bool) ([]byte, bool) {
	s := r.state()
	if data, ok := s.faces[faceKey{family, bold}]; ok {
		return data, true
	}
	data, ok := s.faces[faceKey{family, false}]
	return data, ok
}

// Faces lists every usable face in a stable order
func (r *Resolver) Faces() []Face {
	s := r.state()
	list := make([]Face, 0, len(s.faces))
	for k, v := range s.faces {
		list = append(list, Face{Family: k.family, Bold: k.bold, Data: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Family != list[j].Family {
			return list[i].Family < list[j].Family
		}
		return !list[i].Bold && list[j].Bold
	})
	return list
}

// Failures returns the load errors, empty when custom families are in use
func (r *Resolver) Failures() []error {
	return append([]error(nil), r.state().failures...)
}
