// Package errors renders API failures as RFC 7807 problem documents.
package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// ProblemDetail is the application/problem+json body returned for every failed request.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Extensions carries machine-readable context such as field errors or the
	// quantity still available for a rejected item.
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// Is reports whether target is a problem of the same type, so templates work with errors.Is.
func (p ProblemDetail) Is(target error) bool {
	other, ok := target.(ProblemDetail)
	return ok && other.Type == p.Type
}

// WithDetail returns a copy carrying a human-readable detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithInstance returns a copy pointing at the request path that failed.
func (p ProblemDetail) WithInstance(instance string) ProblemDetail {
	p.Instance = instance
	return p
}

// WithExtension returns a copy with key set. Templates are never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	maps.Copy(ext, p.Extensions)
	ext[key] = value
	p.Extensions = ext
	return p
}

// Generic problem types. Domain adapters register their own alongside these.
const (
	TypeValidation   = "/problems/validation-error"
	TypeBadRequest   = "/problems/bad-request"
	TypeUnauthorized = "/problems/unauthorized"
	TypeForbidden    = "/problems/forbidden"
	TypeNotFound     = "/problems/not-found"
	TypeConflict     = "/problems/conflict"
	TypeInternal     = "/problems/internal-error"
)

// Template builds a problem with no detail, for use as a package-level value.
func Template(problemType, title string, status int) ProblemDetail {
	return ProblemDetail{Type: problemType, Title: title, Status: status}
}

var (
	ErrValidation   = Template(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest   = Template(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrUnauthorized = Template(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrForbidden    = Template(TypeForbidden, "Forbidden", http.StatusForbidden)
	ErrNotFound     = Template(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrConflict     = Template(TypeConflict, "Conflict", http.StatusConflict)
	ErrInternal     = Template(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
)

// NewValidationProblem reports field-level failures keyed by JSON path, e.g. items[0].quantity.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}
