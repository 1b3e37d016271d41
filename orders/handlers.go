package orders

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/zeptools/gw-cardpress/cards/render"
	"github.com/zeptools/gw-cardpress/constraints"
	"github.com/zeptools/gw-cardpress/requests"
	"github.com/zeptools/gw-cardpress/responses"
)

const AdminPageSize = 10

type Handlers struct {
	Service *Service
}

type submitResponse struct {
	Success bool   `json:"success"`
	OrderID int64  `json:"order_id"`
	ShortID string `json:"short_id"`
	Status  Status `json:"status"`
}

// Submit serves POST /api/orders
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := requests.DecodeJSON(w, r, &sub); err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	o, err := h.Service.Submit(r.Context(), sub)
	if err != nil {
		writeErr(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusCreated, submitResponse{
		Success: true,
		OrderID: o.ID,
		ShortID: o.ShortID,
		Status:  o.Status,
	})
}

// Preview serves POST /api/preview
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := requests.DecodeJSON(w, r, &sub); err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	pdf, err := h.Service.Preview(r.Context(), sub)
	if err != nil {
		writeErr(w, err)
		return
	}
	responses.WritePDFBytesWithFilename(w, "preview.pdf", pdf)
}

type pageResponse struct {
	Orders     any   `json:"orders"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// AdminList serves GET /api/admin/orders?page=N, newest first
func (h *Handlers) AdminList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, "page: must be a positive integer")
			return
		}
		page = n
	}
	ctx := r.Context()
	total, err := h.Service.Orders.Count(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	list, err := h.Service.Orders.ListPage(ctx, page, AdminPageSize)
	if err != nil {
		writeErr(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, pageResponse{
		Orders:     list,
		Page:       page,
		PageSize:   AdminPageSize,
		Total:      total,
		TotalPages: (total + AdminPageSize - 1) / AdminPageSize,
	})
}

// Download serves GET /api/admin/orders/{id}/download
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	id, err := constraints.ParseUID[int64](r.PathValue("id"))
	if err != nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
		return
	}
	pdf, filename, err := h.Service.RenderByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	responses.WritePDFAttachment(w, filename, pdf)
}

func writeErr(w http.ResponseWriter, err error) {
	var verr *ValidationError
	var rerr *render.Error
	switch {
	case errors.As(err, &verr):
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, verr.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrShopNotFound):
		responses.WriteErrorJSON(w, http.StatusNotFound, responses.CodeNotFound, err.Error())
	case errors.As(err, &rerr):
		log.Printf("[ERROR][ORDERS] %v", err)
		responses.WriteErrorJSON(w, http.StatusInternalServerError, responses.CodeDelivery, "card could not be rendered")
	default:
		log.Printf("[ERROR][ORDERS] %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}
