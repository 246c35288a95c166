package common

import "errors"

// AppError carries a machine-readable code and HTTP status alongside the
// underlying error. Handlers map domain sentinels (stock exceeded, not found,
// invalid quantity) into these before rendering, so the wire shape stays the
// same across catalog, cart, and order endpoints.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error so errors.Is still matches the domain
// sentinel after the handler layer has attached a code.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError wraps err with a code, message, and HTTP status.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError reports whether an AppError sits anywhere in err's chain.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
