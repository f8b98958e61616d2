package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// MaxFormBytes bounds the size of a form body.
const MaxFormBytes = 64 << 10

// ErrMalformedForm is returned when a request body cannot be parsed as a form.
var ErrMalformedForm = errors.New("malformed form")

var (
	// Global validator instance for reuse
	validate = validator.New()

	// Decoders cache struct metadata and are safe for concurrent use.
	formDecoder = form.NewDecoder()
)

// DeckForm is the form submitted to create or rename a deck.
type DeckForm struct {
	Name string `form:"name" validate:"required,max=200"`
}

// CardForm is the form submitted to create or edit a card.
type CardForm struct {
	Front string `form:"front" validate:"required,max=4096"`
	Back  string `form:"back"  validate:"required,max=4096"`
}

// DecodeForm parses the request's form body into v, which must be a pointer
// to a struct whose fields carry `form` tags.
func DecodeForm(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedForm, err)
	}
	if err := formDecoder.Decode(v, r.PostForm); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedForm, err)
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v any) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}
