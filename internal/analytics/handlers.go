package analytics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/backend-mandi/internal/common"
)

// Handler exposes sales aggregates to administrators.
type Handler struct {
	Svc *Service
}

type salesDayView struct {
	Day     string `json:"day"`
	Orders  int64  `json:"orders"`
	Units   int64  `json:"units"`
	Revenue string `json:"revenue"`
}

type topProductView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
	Revenue   string `json:"revenue"`
}

// Sales serves GET /admin/analytics/sales with optional from/to bounds
// (YYYY-MM-DD, to exclusive).
func (h Handler) Sales(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "analytics service not configured", nil)
		return
	}
	from, to, err := h.window(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	rows, err := h.Svc.SalesDaily(r.Context(), from, to)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute sales summary", nil)
		return
	}
	views := make([]salesDayView, 0, len(rows))
	for _, row := range rows {
		views = append(views, salesDayView{
			Day:     row.Day.Format("2006-01-02"),
			Orders:  row.Orders,
			Units:   row.Units,
			Revenue: common.MoneyString(row.Revenue),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// TopProducts serves GET /admin/analytics/top-products.
func (h Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "analytics service not configured", nil)
		return
	}
	from, to, err := h.window(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	limit := 10
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	rows, err := h.Svc.TopProducts(r.Context(), from, to, int32(limit))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute product ranking", nil)
		return
	}
	views := make([]topProductView, 0, len(rows))
	for _, row := range rows {
		views = append(views, topProductView{
			ProductID: row.ProductID.String(),
			Name:      row.Name,
			Units:     row.Units,
			Revenue:   common.MoneyString(row.Revenue),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

func (h Handler) window(r *http.Request) (time.Time, time.Time, error) {
	from, to := h.Svc.DefaultRange()
	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			return time.Time{}, time.Time{}, errDate("from")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			return time.Time{}, time.Time{}, errDate("to")
		}
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errWindow{}
	}
	return from, to, nil
}

type errWindow struct{}

func (errWindow) Error() string { return "to must be after from" }

type errDate string

func (e errDate) Error() string { return string(e) + " must be formatted as YYYY-MM-DD" }
