package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-mandi/internal/common"
	"github.com/noah-isme/backend-mandi/internal/pricing"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc *Service
	V   *validator.Validate
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := common.UserID(r.Context())
	if !ok || raw == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func productIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// Get returns the server-confirmed cart contents and totals preview. This is
// the authoritative state clients render; optimistic local quantities must be
// overwritten by it.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	views, totals, err := h.Svc.View(r.Context(), uID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cartBody(views, totals)})
}

// AddItem adds unit-sets of a product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var payload struct {
		ProductID string `json:"productId" validate:"required,uuid"`
		Sets      int64  `json:"sets" validate:"required,gt=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.V != nil {
		if err := h.V.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	pID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if _, err := h.Svc.Add(r.Context(), uID, pID, payload.Sets); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// UpdateItem sets the line quantity directly, in base units.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	pID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Qty int64 `json:"qty" validate:"gte=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.V != nil {
		if err := h.V.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	if _, err := h.Svc.SetQuantity(r.Context(), uID, pID, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// Increment steps the line up by one unit set.
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, 1)
}

// Decrement steps the line down by one unit set, removing it at zero.
func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, -1)
}

func (h *Handler) step(w http.ResponseWriter, r *http.Request, direction int) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	pID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	if _, err := h.Svc.Step(r.Context(), uID, pID, direction); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// RemoveItem deletes a cart line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	pID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Remove(r.Context(), uID, pID); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

func cartBody(views []LineView, totals pricing.Totals) map[string]any {
	items := make([]map[string]any, 0, len(views))
	for _, v := range views {
		items = append(items, map[string]any{
			"productId":   v.ProductID.String(),
			"name":        v.Name,
			"qty":         v.Qty,
			"sets":        v.Sets,
			"unitPrice":   common.MoneyString(v.UnitPrice),
			"tierMinimum": v.TierMinimum,
			"total":       common.MoneyString(v.Total),
			"unavailable": v.Unavailable,
		})
	}
	return map[string]any{
		"items": items,
		"pricing": map[string]any{
			"subtotal": common.MoneyString(totals.Subtotal),
			"tax":      common.MoneyString(totals.Tax),
			"total":    common.MoneyString(totals.Total),
		},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		common.JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, ErrStockExceeded):
		common.JSONError(w, http.StatusConflict, "STOCK_EXCEEDED", err.Error(), nil)
	case errors.Is(err, ErrProductUnavailable):
		common.JSONError(w, http.StatusNotFound, "PRODUCT_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, pricing.ErrInvalidQuantity), errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}
