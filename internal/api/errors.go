package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Malformed requests
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrMalformedForm):
		return http.StatusBadRequest

	// Invalid content
	case isValidationError(err):
		return http.StatusUnprocessableEntity

	// Default: internal server error, including an unavailable store
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrEmptyContent) ||
		errors.Is(err, store.ErrInvalidEntity) ||
		errors.As(err, &validationErr) ||
		errors.As(err, &fieldErrs)
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, shared.ErrMalformedForm):
		return "Malformed form data"

	case errors.As(err, &fieldErrs):
		return SanitizeValidationError(fieldErrs)

	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyContent):
		return "Invalid deck or card data"

	case errors.Is(err, store.ErrStoreUnavailable):
		return "The deck store is unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag(), fe.Param()))
	}
	return "Invalid request format"
}

func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", param)
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	default:
		return "is invalid"
	}
}

// HandleAPIError maps err to a status code and writes an error fragment,
// logging the detailed error. An empty userMessage selects the safe message
// for the error.
func HandleAPIError(
	rs *shared.Responder,
	w http.ResponseWriter,
	r *http.Request,
	err error,
	userMessage string,
) {
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	rs.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), userMessage, err)
}
