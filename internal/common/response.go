package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload inside the {"error": ...} envelope every failing
// endpoint returns. Details is optional structured context, such as the
// clamped quantity on a stock conflict.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON encodes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders the error envelope. Codes are stable strings like
// BAD_REQUEST or STOCK_EXCEEDED that clients branch on.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
