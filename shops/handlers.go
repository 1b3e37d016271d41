package shops

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/zeptools/gw-cardpress/constraints"
	"github.com/zeptools/gw-cardpress/requests"
	"github.com/zeptools/gw-cardpress/responses"
)

// MaxLogoBytes caps logo uploads
const MaxLogoBytes = 5 << 20

// LogoStorage keeps shop logos off-site
type LogoStorage interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
	Destroy(ctx context.Context, url string) error
}

type Handlers struct {
	Store Store
	Logos LogoStorage // nil disables uploads and logo cleanup
}

// PublicGet serves GET /api/shops/{slug}; inactive shops read as missing.
func (h *Handlers) PublicGet(w http.ResponseWriter, r *http.Request) {
	shop, err := h.Store.FindBySlug(r.Context(), strings.ToLower(r.PathValue("slug")))
	if err == nil && !shop.IsActive {
		err = ErrNotFound
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, shop.Public())
}

func (h *Handlers) AdminList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, list)
}

func (h *Handlers) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := constraints.ParseUID[int64](r.PathValue("id"))
	if err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	shop, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, shop)
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := requests.DecodeJSON(w, r, &in); err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	if err := in.Normalize(); err != nil {
		writeErr(w, err)
		return
	}
	shop := in.New()
	if err := h.Store.Create(r.Context(), shop); err != nil {
		writeErr(w, err)
		return
	}
	log.Printf("[INFO][SHOPS] created shop %d %q", shop.ID, shop.Slug)
	responses.EncodeWriteJSON(w, http.StatusCreated, shop)
}

// Update replaces the shop fields and destroys a logo that is no longer referenced.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := constraints.ParseUID[int64](r.PathValue("id"))
	if err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	var in Input
	if err = requests.DecodeJSON(w, r, &in); err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	if err = in.Normalize(); err != nil {
		writeErr(w, err)
		return
	}
	shop, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	oldLogo := shop.LogoURL.ForceValue()
	in.Apply(shop)
	if err = h.Store.Update(r.Context(), shop); err != nil {
		writeErr(w, err)
		return
	}
	if oldLogo != "" && oldLogo != shop.LogoURL.ForceValue() {
		h.destroyLogo(r.Context(), oldLogo)
	}
	responses.EncodeWriteJSON(w, http.StatusOK, shop)
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := constraints.ParseUID[int64](r.PathValue("id"))
	if err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	shop, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err = h.Store.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	if logo := shop.LogoURL.ForceValue(); logo != "" {
		h.destroyLogo(r.Context(), logo)
	}
	responses.EncodeWriteJSON(w, http.StatusOK, responses.Message{Type: "info", Message: "shop deleted"})
}

// Upload serves POST /api/admin/upload (multipart field "file").
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Logos == nil {
		responses.WriteSimpleErrorJSON(w, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxLogoBytes+(64<<10))
	file, header, err := r.FormFile("file")
	if err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, "file not found")
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(io.LimitReader(file, MaxLogoBytes+1))
	if err != nil || len(data) > MaxLogoBytes {
		responses.WriteErrorJSON(w, http.StatusRequestEntityTooLarge, responses.CodeValidation, "file too large")
		return
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		responses.WriteErrorJSON(w, http.StatusUnsupportedMediaType, responses.CodeValidation, "only images are accepted")
		return
	}
	url, err := h.Logos.Upload(r.Context(), header.Filename, data)
	if err != nil {
		log.Printf("[ERROR][SHOPS] logo upload: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusBadGateway, "upload failed")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handlers) destroyLogo(ctx context.Context, url string) {
	if h.Logos == nil {
		return
	}
	if err := h.Logos.Destroy(ctx, url); err != nil {
		log.Printf("[WARN][SHOPS] logo %s not destroyed: %v", url, err)
	}
}

func writeErr(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, verr.Error())
	case errors.Is(err, ErrNotFound):
		responses.WriteErrorJSON(w, http.StatusNotFound, responses.CodeNotFound, err.Error())
	case errors.Is(err, ErrDuplicateSlug):
		responses.WriteErrorJSON(w, http.StatusConflict, responses.CodeConflict, err.Error())
	default:
		log.Printf("[ERROR][SHOPS] %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}
