package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decodeRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
}

func TestDecodeProductAppliesDefaultGST(t *testing.T) {
	h := &AdminHandler{V: validator.New(), DefaultGST: decimal.RequireFromString("5")}

	rec := httptest.NewRecorder()
	params, ok := h.decodeProduct(rec, decodeRequest(
		`{"name":"Toor Dal 1kg","slug":"toor-dal-1kg","unitSet":12,"perPiecePrice":"155.00","stock":100,"active":true}`))
	require.True(t, ok)
	require.True(t, params.GSTPercent.Equal(decimal.NewFromInt(5)))
}

func TestDecodeProductExplicitGSTWins(t *testing.T) {
	h := &AdminHandler{V: validator.New(), DefaultGST: decimal.RequireFromString("5")}

	rec := httptest.NewRecorder()
	params, ok := h.decodeProduct(rec, decodeRequest(
		`{"name":"Bathing Soap","slug":"bathing-soap","unitSet":15,"perPiecePrice":"130.00","stock":50,"gstPercent":"18","active":true}`))
	require.True(t, ok)
	require.True(t, params.GSTPercent.Equal(decimal.NewFromInt(18)))
}

func TestDecodeProductRejectsNegativePrice(t *testing.T) {
	h := &AdminHandler{V: validator.New()}

	rec := httptest.NewRecorder()
	_, ok := h.decodeProduct(rec, decodeRequest(
		`{"name":"Bad","slug":"bad","unitSet":5,"perPiecePrice":"-1","stock":0,"active":true}`))
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
