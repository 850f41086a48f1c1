package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation indicates a malformed request parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a route or page that does not exist
type ErrNotFound struct {
	Path string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// ErrRender indicates a template failed to execute
type ErrRender struct {
	Page  string
	Cause error
}

func (e *ErrRender) Error() string {
	return fmt.Sprintf("render %s: %v", e.Page, e.Cause)
}

func (e *ErrRender) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		notFound   *ErrNotFound
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
