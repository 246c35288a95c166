package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-mandi/internal/common"
	"github.com/noah-isme/backend-mandi/internal/db"
)

// AdminHandler provides the back-office catalog management endpoints.
type AdminHandler struct {
	Store *db.Store
	Svc   *Service
	V     *validator.Validate
	// DefaultGST applies when a product payload omits gstPercent.
	DefaultGST decimal.Decimal
}

type tierPayload struct {
	MinimumSets int64  `json:"minimumSets" validate:"required,gt=0"`
	MaximumSets *int64 `json:"maximumSets"`
	UnitPrice   string `json:"unitPrice" validate:"required"`
}

type productPayload struct {
	Name          string  `json:"name" validate:"required"`
	Slug          string  `json:"slug" validate:"required"`
	CategoryID    *string `json:"categoryId"`
	UnitSet       int64   `json:"unitSet" validate:"required,gt=0"`
	PerPiecePrice string  `json:"perPiecePrice" validate:"required"`
	Stock         int64   `json:"stock" validate:"gte=0"`
	GSTPercent    string  `json:"gstPercent"`
	Active        bool    `json:"active"`
}

func (h *AdminHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (db.CreateProductParams, bool) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return db.CreateProductParams{}, false
	}
	if h.V != nil {
		if err := h.V.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return db.CreateProductParams{}, false
		}
	}
	price, err := decimal.NewFromString(payload.PerPiecePrice)
	if err != nil || price.IsNegative() {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "perPiecePrice must be a non-negative decimal", nil)
		return db.CreateProductParams{}, false
	}
	gst := h.DefaultGST
	if gst.IsNegative() {
		gst = decimal.Zero
	}
	if strings.TrimSpace(payload.GSTPercent) != "" {
		gst, err = decimal.NewFromString(payload.GSTPercent)
		if err != nil || gst.IsNegative() {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "gstPercent must be a non-negative decimal", nil)
			return db.CreateProductParams{}, false
		}
	}
	params := db.CreateProductParams{
		Name:          strings.TrimSpace(payload.Name),
		Slug:          strings.TrimSpace(payload.Slug),
		UnitSet:       payload.UnitSet,
		PerPiecePrice: price,
		Stock:         payload.Stock,
		GSTPercent:    gst,
		Active:        payload.Active,
	}
	if payload.CategoryID != nil && strings.TrimSpace(*payload.CategoryID) != "" {
		id, err := uuid.Parse(*payload.CategoryID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid category id", nil)
			return db.CreateProductParams{}, false
		}
		params.CategoryID = &id
	}
	return params, true
}

// CreateProduct inserts a catalog product.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	params, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.Store.CreateProduct(r.Context(), params)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create product", nil)
		return
	}
	h.invalidate(r, product.Slug)
	common.JSON(w, http.StatusCreated, map[string]any{"data": productView(product)})
}

// UpdateProduct overwrites a product's writable fields.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	params, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.Store.UpdateProduct(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update product", nil)
		return
	}
	h.invalidate(r, product.Slug)
	common.JSON(w, http.StatusOK, map[string]any{"data": productView(product)})
}

// ReplaceTiers swaps the product's bulk tier table. Rows are validated on
// write; the read path still skips anything malformed that predates this
// check.
func (h *AdminHandler) ReplaceTiers(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Tiers []tierPayload `json:"tiers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	tiers := make([]db.ProductTier, 0, len(payload.Tiers))
	for _, t := range payload.Tiers {
		if h.V != nil {
			if err := h.V.Struct(t); err != nil {
				common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
				return
			}
		}
		price, err := decimal.NewFromString(t.UnitPrice)
		if err != nil || !price.IsPositive() {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "tier unitPrice must be a positive decimal", nil)
			return
		}
		if t.MaximumSets != nil && *t.MaximumSets < t.MinimumSets {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "tier maximumSets must not be below minimumSets", nil)
			return
		}
		tiers = append(tiers, db.ProductTier{
			MinimumSets: t.MinimumSets,
			MaximumSets: t.MaximumSets,
			UnitPrice:   price,
		})
	}
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	if err := h.Store.ReplaceProductTiers(r.Context(), id, tiers); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to replace tiers", nil)
		return
	}
	h.invalidate(r, product.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock applies a signed stock delta.
func (h *AdminHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Delta int64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.Delta == 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "delta must not be zero", nil)
		return
	}
	stock, err := h.Store.AdjustStock(r.Context(), id, payload.Delta)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusConflict, "INVALID_STATE", "stock cannot go below zero", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to adjust stock", nil)
		return
	}
	if product, err := h.Store.GetProduct(r.Context(), id); err == nil {
		h.invalidate(r, product.Slug)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"stock": stock}})
}

// CreateCategory inserts a category.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	var payload struct {
		Name string `json:"name" validate:"required"`
		Slug string `json:"slug" validate:"required"`
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
	cat, err := h.Store.CreateCategory(r.Context(), strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Slug))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create category", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
		"id":   cat.ID.String(),
		"name": cat.Name,
		"slug": cat.Slug,
	}})
}

// DeleteCategory removes a category.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "category not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete category", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateBanner inserts a storefront banner.
func (h *AdminHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	var payload struct {
		Title     string  `json:"title" validate:"required"`
		ImageURL  string  `json:"imageUrl" validate:"required,url"`
		TargetURL *string `json:"targetUrl"`
		Position  int32   `json:"position"`
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
	banner, err := h.Store.CreateBanner(r.Context(), strings.TrimSpace(payload.Title), strings.TrimSpace(payload.ImageURL), payload.TargetURL, payload.Position)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create banner", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
		"id":       banner.ID.String(),
		"title":    banner.Title,
		"imageUrl": banner.ImageURL,
		"position": banner.Position,
	}})
}

// DeleteBanner removes a banner.
func (h *AdminHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteBanner(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "banner not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete banner", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) invalidate(r *http.Request, slug string) {
	if h.Svc != nil {
		h.Svc.InvalidateProduct(r.Context(), slug)
	}
}

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
