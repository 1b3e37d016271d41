package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/cards/themes"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
)

func TestThemesList(t *testing.T) {
	h := &Handlers{Themes: themes.Builtin()}
	rec := httptest.NewRecorder()
	h.ThemesList(rec, httptest.NewRequest(http.MethodGet, "/api/themes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got ThemesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "gentle_1", got.Default)
	assert.Len(t, got.Themes, 14)
	require.NotEmpty(t, got.Categories)
	assert.Equal(t, "gentle", got.Categories[0].Name)
	assert.Equal(t, []string{"gentle_1", "gentle_2", "gentle_3"}, got.Categories[0].IDs)
	assert.Equal(t, "#fff0f5", got.Themes[0].BleedFill.Hex())
}

func TestFontsList(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handlers{}).FontsList(rec, httptest.NewRequest(http.MethodGet, "/api/fonts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got FontsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, typefaces.DefaultChoice, got.Default)
	require.Len(t, got.Fonts, 3)
	assert.Equal(t, "font-vibes", got.Fonts[2].ID)
}
