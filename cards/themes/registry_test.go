package themes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinResolve(t *testing.T) {
	r := Builtin()

	g := r.Resolve("gentle_1")
	assert.Equal(t, "gentle_1", g.ID)
	assert.Equal(t, "#fff0f5", g.BleedFill.Hex())
	assert.Equal(t, "#334155", g.TextColor.Hex())

	w := r.Resolve("warm_4")
	assert.Equal(t, "warm", w.Category)
	assert.Equal(t, 4, w.Variant)
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	r := Builtin()
	def := r.Resolve(DefaultThemeID)
	for _, key := range []string{"nonexistent-key", "", "xyz", "gentle_0", "GENTLE_1"} {
		assert.Equal(t, def, r.Resolve(key), key)
	}
	_, ok := r.Lookup("gentle_0")
	assert.False(t, ok)
}

func TestRegistryIssuesIDs(t *testing.T) {
	r := Builtin()
	ids := r.IDs()
	assert.Len(t, ids, 14)
	assert.Equal(t, "gentle_1", ids[0])

	cats := r.Categories()
	require.Len(t, cats, 4)
	assert.Equal(t, "gentle", cats[0].Name)
	assert.Equal(t, []string{"fun_1", "fun_2", "fun_3", "fun_4"}, cats[1].IDs)

	// callers get a copy
	ids[0] = "mutated"
	assert.Equal(t, "gentle_1", r.IDs()[0])
}

func TestNewRegistryValidation(t *testing.T) {
	c := MustParseColor("#ffffff")
	_, err := NewRegistry("a_1", Theme{Category: "b", Variant: 1, TextColor: c, BleedFill: c})
	assert.Error(t, err, "default must exist")

	_, err = NewRegistry("a_1",
		Theme{Category: "a", Variant: 1},
		Theme{Category: "a", Variant: 1},
	)
	assert.Error(t, err, "duplicates rejected")

	_, err = NewRegistry("a_1", Theme{ID: "a_0", Category: "a", Variant: 1})
	assert.Error(t, err, "id must match category and variant")

	_, err = NewRegistry("a_0", Theme{Category: "a", Variant: 0})
	assert.Error(t, err, "variants count from 1")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "themes.json")
	body := `{
	  "default": "spring_1",
	  "themes": [
	    {"category": "spring", "variant": 1, "background": "/srv/art/s1.png", "text_color": "#112233", "bleed_fill": "#fff"},
	    {"category": "spring", "variant": 2, "background": "/srv/art/s2.pdf", "text_color": "#000000", "bleed_fill": "#eeeeee"}
	  ]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"spring_1", "spring_2"}, r.IDs())
	assert.Equal(t, "#112233", r.Resolve("missing").TextColor.Hex())
	red, green, blue := r.Resolve("spring_1").BleedFill.RGB()
	assert.Equal(t, [3]int{255, 255, 255}, [3]int{red, green, blue})
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("94a3b8")
	require.NoError(t, err)
	r, g, b := c.RGB()
	assert.Equal(t, [3]int{0x94, 0xa3, 0xb8}, [3]int{r, g, b})

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}
