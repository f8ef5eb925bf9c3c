package backend

import (
	"fmt"
	"net/http"

	dErrors "dladmin/pkg/domain-errors"
)

// FieldError is one field-level rejection reported by the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Code maps the response status to a domain error code.
func (e *APIError) Code() dErrors.Code {
	switch {
	case e.Status == http.StatusNotFound:
		return dErrors.CodeNotFound
	case e.Status == http.StatusConflict:
		return dErrors.CodeConflict
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return dErrors.CodeUnavailable
	case e.Status >= 400 && e.Status < 500:
		return dErrors.CodeUnprocessable
	default:
		return dErrors.CodeUnavailable
	}
}
