package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-mandi/internal/common"
	"github.com/noah-isme/backend-mandi/internal/db"
	"github.com/noah-isme/backend-mandi/internal/events"
	"github.com/noah-isme/backend-mandi/internal/obs"
)

// AdminHandler provides administrative order management endpoints.
type AdminHandler struct {
	Store  *db.Store
	Events *events.Bus
	Logger zerolog.Logger
}

// List pages all orders, optionally filtered by status.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	offset := int32((page - 1) * perPage)

	var status *string
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		if orderStatusRank(raw) == unknownStatusRank {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unsupported status filter", nil)
			return
		}
		status = &raw
	}

	orders, total, err := h.Store.ListOrders(r.Context(), status, int32(perPage), offset)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	response := make([]map[string]any, 0, len(orders))
	for _, ord := range orders {
		summary := orderSummary(ord)
		summary["userId"] = ord.UserID.String()
		response = append(response, summary)
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

// Get returns one order with items, regardless of owner.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	oID, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	ord, err := h.Store.GetOrder(r.Context(), oID)
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
	detail := orderDetail(ord, items)
	detail["userId"] = ord.UserID.String()
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

// PatchStatus advances the order through the fulfillment state machine.
// Transitions only move forward; a canceled or delivered order is terminal.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	oID, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	target := strings.ToUpper(strings.TrimSpace(req.Status))
	if target == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "status is required", nil)
		return
	}
	if !isAllowedAdminTarget(target) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unsupported status", nil)
		return
	}
	ord, err := h.Store.GetOrder(r.Context(), oID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	if target != db.OrderStatusCanceled && orderStatusRank(ord.Status) >= orderStatusRank(target) {
		common.JSONError(w, http.StatusConflict, "INVALID_STATE", "cannot transition to equal or previous state", nil)
		return
	}
	if ord.Status == db.OrderStatusCanceled || ord.Status == db.OrderStatusDelivered {
		common.JSONError(w, http.StatusConflict, "INVALID_STATE", "order is in a terminal state", nil)
		return
	}
	if err := h.Store.UpdateOrderStatus(r.Context(), ord.ID, target); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update order status", nil)
		return
	}
	obs.ObserveOrderStatus(target)
	h.emitTransition(r, ord.ID, target)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) emitTransition(r *http.Request, orderID uuid.UUID, status string) {
	if h.Events == nil {
		return
	}
	topic := ""
	switch status {
	case db.OrderStatusConfirmed:
		topic = events.TopicOrderConfirmed
	case db.OrderStatusShipped:
		topic = events.TopicOrderShipped
	case db.OrderStatusDelivered:
		topic = events.TopicOrderDelivered
	case db.OrderStatusCanceled:
		topic = events.TopicOrderCanceled
	}
	if topic == "" {
		return
	}
	if _, err := h.Events.Emit(r.Context(), topic, orderID, map[string]any{
		"orderId": orderID.String(),
		"status":  status,
	}); err != nil {
		h.Logger.Warn().Err(err).Str("order_id", orderID.String()).Str("topic", topic).Msg("emit status transition")
	}
}

func isAllowedAdminTarget(status string) bool {
	switch status {
	case db.OrderStatusConfirmed, db.OrderStatusShipped, db.OrderStatusDelivered, db.OrderStatusCanceled:
		return true
	}
	return false
}

const unknownStatusRank = -2

func orderStatusRank(status string) int {
	switch status {
	case db.OrderStatusPlaced:
		return 0
	case db.OrderStatusConfirmed:
		return 1
	case db.OrderStatusShipped:
		return 2
	case db.OrderStatusDelivered:
		return 3
	case db.OrderStatusCanceled:
		return -1
	default:
		return unknownStatusRank
	}
}
