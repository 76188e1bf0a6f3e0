// Package server provides the HTTP REST API for the lint engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrRulesUnavailable indicates the rule library could not serve a request
type ErrRulesUnavailable struct {
	ProfileID string
}

func (e *ErrRulesUnavailable) Error() string {
	return fmt.Sprintf("rules unavailable for profile: %s", e.ProfileID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
