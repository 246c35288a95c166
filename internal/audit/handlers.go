package audit

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-mandi/internal/common"
)

// Handler exposes the audit trail to administrators.
type Handler struct {
	Store Store
}

type auditEntry struct {
	ID         uuid.UUID `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID *string   `json:"resourceId,omitempty"`
	Method     string    `json:"method"`
	Route      *string   `json:"route,omitempty"`
	Status     int32     `json:"status"`
	IP         *string   `json:"ip,omitempty"`
	RequestID  *string   `json:"requestId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// List pages the trail newest first. An optional action filter narrows the
// result to one route.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "audit store not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	if perPage > 200 {
		perPage = 200
	}
	var action *string
	if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
		action = &raw
	}

	logs, total, err := h.Store.ListAuditLogs(r.Context(), action, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to fetch audit logs", nil)
		return
	}

	entries := make([]auditEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, auditEntry{
			ID:         l.ID,
			Actor:      l.Actor,
			Action:     l.Action,
			Resource:   l.Resource,
			ResourceID: l.ResourceID,
			Method:     l.Method,
			Route:      l.Route,
			Status:     l.Status,
			IP:         l.IP,
			RequestID:  l.RequestID,
			CreatedAt:  l.CreatedAt,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": entries,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}
