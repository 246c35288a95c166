package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-mandi/internal/common"
)

// Handler exposes the public catalog endpoints.
type Handler struct {
	Svc *Service
}

// ListProducts serves the paged storefront listing.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	params := ListParams{}
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid category id", nil)
			return
		}
		params.CategoryID = &id
	}
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "page must be a positive integer", nil)
			return
		}
		params.Page = page
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be a positive integer", nil)
			return
		}
		params.Limit = limit
	}

	result, err := h.Svc.ListProducts(r.Context(), params)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": result.Items,
		"pagination": common.Pagination{
			Page:       result.Page,
			PerPage:    result.Limit,
			TotalItems: int(result.Total),
		},
	})
}

// GetProduct serves the product detail with its tier table.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	view, err := h.Svc.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// PreviewPrice resolves the tier price for ?sets=N.
func (h *Handler) PreviewPrice(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	sets, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("sets")), 10, 64)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "sets must be a positive integer", nil)
		return
	}
	preview, err := h.Svc.PreviewPrice(r.Context(), chi.URLParam(r, "slug"), sets)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": preview})
}

// ListCategories serves the category index.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	cats, err := h.Svc.ListCategories(r.Context())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	response := make([]map[string]any, 0, len(cats))
	for _, c := range cats {
		response = append(response, map[string]any{
			"id":   c.ID.String(),
			"name": c.Name,
			"slug": c.Slug,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": response})
}

// ListBanners serves the storefront banners.
func (h *Handler) ListBanners(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	banners, err := h.Svc.ListBanners(r.Context())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	response := make([]map[string]any, 0, len(banners))
	for _, b := range banners {
		response = append(response, map[string]any{
			"id":        b.ID.String(),
			"title":     b.Title,
			"imageUrl":  b.ImageURL,
			"targetUrl": b.TargetURL,
			"position":  b.Position,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": response})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
}
