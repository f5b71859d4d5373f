package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// Pagination defaults for list endpoints.
const (
	DefaultLimit = 25
)

// Validator collects field errors for one request.
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Err returns the collected errors, or nil when every check passed.
func (v *Validator) Err() error {
	if !v.errors.HasErrors() {
		return nil
	}
	return v.errors
}

// Required rejects blank values.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength rejects values longer than max bytes.
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// OneOf rejects values outside allowed. Empty values pass; pair with
// Required when the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom adds message to field when valid is false.
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeAndValidate decodes the JSON body into a T. A missing or
// malformed body is a 400.
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T
	if r.Body == nil {
		return nil, apperrors.NewBadRequestError(io.EOF, "Request body is required")
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewBadRequestError(err, "Request body is required")
		}
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}
	return &req, nil
}

// Page is a limit/offset window over a list.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads ?limit= and ?offset=. Invalid values fall back to the
// defaults and the limit is capped at maxLimit.
func ParsePage(r *http.Request, maxLimit int) Page {
	page := Page{Limit: DefaultLimit}
	query := r.URL.Query()

	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		page.Limit = limit
	}
	page.Limit = min(page.Limit, maxLimit)
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset >= 0 {
		page.Offset = offset
	}
	return page
}

// OptionalQuery returns the query value, or nil when absent or empty.
func OptionalQuery(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}
