// Package catalog serves the design and font lists the card builder offers.
package catalog

import (
	"net/http"

	"github.com/zeptools/gw-cardpress/cards/themes"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
	"github.com/zeptools/gw-cardpress/responses"
)

type ThemesResponse struct {
	Default    string            `json:"default"`
	Categories []themes.Category `json:"categories"`
	Themes     []themes.Theme    `json:"themes"`
}

type FontsResponse struct {
	Default string                 `json:"default"`
	Fonts   []typefaces.ChoiceInfo `json:"fonts"`
}

type Handlers struct {
	Themes *themes.Registry
}

// ThemesList serves GET /api/themes
func (h *Handlers) ThemesList(w http.ResponseWriter, _ *http.Request) {
	responses.EncodeWriteJSON(w, http.StatusOK, ThemesResponse{
		Default:    h.Themes.DefaultID(),
		Categories: h.Themes.Categories(),
		Themes:     h.Themes.Themes(),
	})
}

// FontsList serves GET /api/fonts
func (h *Handlers) FontsList(w http.ResponseWriter, _ *http.Request) {
	responses.EncodeWriteJSON(w, http.StatusOK, FontsResponse{
		Default: typefaces.DefaultChoice,
		Fonts:   typefaces.Choices(),
	})
}
