// Package order exposes order history for buyers and fulfillment transitions
// for the admin back office.
package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-mandi/internal/common"
	"github.com/noah-isme/backend-mandi/internal/db"
)

// Handler serves buyer-facing order endpoints.
type Handler struct {
	Store *db.Store
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

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// List pages the caller's order history.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	offset := int32((page - 1) * perPage)
	orders, total, err := h.Store.ListOrdersForUser(r.Context(), uID, int32(perPage), offset)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	response := make([]map[string]any, 0, len(orders))
	for _, ord := range orders {
		response = append(response, orderSummary(ord))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": response,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

// Get returns one order with its line snapshots.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	oID, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	ord, err := h.Store.GetOrderForUser(r.Context(), oID, uID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	items, err := h.Store.ListOrderItems(r.Context(), ord.ID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order items", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": orderDetail(ord, items)})
}

// Cancel cancels the caller's own order while it is still PLACED.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	uID, ok := h.userID(w, r)
	if !ok {
		return
	}
	oID, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	ord, err := h.Store.GetOrderForUser(r.Context(), oID, uID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order lookup failed", nil)
		return
	}
	if ord.Status != db.OrderStatusPlaced {
		common.JSONError(w, http.StatusBadRequest, "INVALID_STATE", "only placed orders can be canceled", nil)
		return
	}
	if err := h.Store.UpdateOrderStatus(r.Context(), ord.ID, db.OrderStatusCanceled); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to cancel order", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": db.OrderStatusCanceled}})
}

func orderSummary(ord db.Order) map[string]any {
	return map[string]any{
		"id":              ord.ID.String(),
		"status":          ord.Status,
		"paymentMode":     ord.PaymentMode,
		"subtotal":        common.MoneyString(ord.Subtotal),
		"tax":             common.MoneyString(ord.Tax),
		"deliveryCharges": common.MoneyString(ord.DeliveryCharges),
		"codCharges":      common.MoneyString(ord.CODCharges),
		"discount":        common.MoneyString(ord.Discount),
		"total":           common.MoneyString(ord.Total),
		"amountPaid":      common.MoneyString(ord.AmountPaid),
		"amountPending":   common.MoneyString(ord.AmountPending),
		"createdAt":       ord.CreatedAt,
	}
}

func orderDetail(ord db.Order, items []db.OrderItem) map[string]any {
	responseItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		responseItems = append(responseItems, map[string]any{
			"id":          it.ID.String(),
			"productId":   it.ProductID.String(),
			"name":        it.Name,
			"qty":         it.Qty,
			"unitPrice":   common.MoneyString(it.UnitPrice),
			"netAmount":   common.MoneyString(it.NetAmount),
			"taxAmount":   common.MoneyString(it.TaxAmount),
			"totalAmount": common.MoneyString(it.TotalAmount),
		})
	}
	detail := orderSummary(ord)
	detail["items"] = responseItems
	detail["notes"] = ord.Notes
	detail["address"] = jsonValue(ord.Address)
	return detail
}

func jsonValue(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return json.RawMessage(clone)
}
