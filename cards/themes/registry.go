package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Registry is a read-only table of themes built once at startup
type Registry struct {
	themes    map[string]Theme
	order     []string
	defaultID string
}

// Category groups theme ids for the card builder carousel
type Category struct {
	Name string   `json:"name"`
	IDs  []string `json:"ids"`
}

// NewRegistry checks ids and the default, and keeps the given order
func NewRegistry(defaultID string, themes ...Theme) (*Registry, error) {
	r := &Registry{
		themes:    make(map[string]Theme, len(themes)),
		order:     make([]string, 0, len(themes)),
		defaultID: defaultID,
	}
	for _, t := range themes {
		if t.Category == "" || t.Variant < 1 {
			return nil, fmt.Errorf("theme %q: category and a variant >= 1 are required", t.ID)
		}
		want := MakeID(t.Category, t.Variant)
		if t.ID == "" {
			t.ID = want
		}
		if t.ID != want {
			return nil, fmt.Errorf("theme id %q does not match %q", t.ID, want)
		}
		if _, dup := r.themes[t.ID]; dup {
			return nil, fmt.Errorf("duplicate theme id %q", t.ID)
		}
		r.themes[t.ID] = t
		r.order = append(r.order, t.ID)
	}
	if _, ok := r.themes[defaultID]; !ok {
		return nil, fmt.Errorf("default theme %q is not registered", defaultID)
	}
	return r, nil
}

// Resolve never fails. Unknown or empty keys get the default theme.
func (r *Registry) Resolve(key string) Theme {
	if t, ok := r.themes[key]; ok {
		return t
	}
	return r.themes[r.defaultID]
}

func (r *Registry) Lookup(key string) (Theme, bool) {
	t, ok := r.themes[key]
	return t, ok
}

func (r *Registry) Default() Theme {
	return r.themes[r.defaultID]
}

func (r *Registry) DefaultID() string {
	return r.defaultID
}

func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Themes() []Theme {
	list := make([]Theme, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.themes[id])
	}
	return list
}

// Categories in first-seen order, ids in registration order
func (r *Registry) Categories() []Category {
	var cats []Category
	index := map[string]int{}
	for _, id := range r.order {
		t := r.themes[id]
		i, ok := index[t.Category]
		if !ok {
			i = len(cats)
			index[t.Category] = i
			cats = append(cats, Category{Name: t.Category})
		}
		cats[i].IDs = append(cats[i].IDs, id)
	}
	return cats
}

type fileFormat struct {
	Default string  `json:"default"`
	Themes  []Theme `json:"themes"`
}

// LoadFile builds a registry from a JSON theme table
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileFormat
	if err = json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("theme file %s: %w", path, err)
	}
	if len(f.Themes) == 0 {
		return nil, errors.New("theme file has no themes")
	}
	return NewRegistry(f.Default, f.Themes...)
}
