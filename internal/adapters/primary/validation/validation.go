package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Validator collects field errors for a request.
type Validator struct {
	errors *apperrors.ValidationErrors
}

func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Err returns the collected errors, or nil when there are none.
func (v *Validator) Err() error {
	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength counts runes, not bytes.
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len([]rune(value)) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// OneOf accepts an empty value; pair it with Required when needed.
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

func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeAndValidate decodes a JSON body into T, rejecting unknown fields.
func DecodeAndValidate[T any](w http.ResponseWriter, r *http.Request) (*T, error) {
	var req T

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewBadRequestError(err, "Request body is required")
		}
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}

	return &req, nil
}

// ParseIntQueryParam returns defaultValue for missing, malformed or
// negative values.
func ParseIntQueryParam(r *http.Request, key string, defaultValue int) int {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}

	return value
}

// ParseLimit reads ?limit= clamped to [1, max].
func ParseLimit(r *http.Request, defaultValue, max int) int {
	limit := ParseIntQueryParam(r, "limit", defaultValue)
	if limit <= 0 {
		limit = defaultValue
	}
	if limit > max {
		limit = max
	}
	return limit
}

// ParseTimeQueryParam reads an RFC 3339 timestamp or a YYYY-MM-DD date.
// Dates are taken at the start of the day in loc, or at its last
// millisecond when endOfDay is set. A missing parameter yields nil.
func ParseTimeQueryParam(r *http.Request, key string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	d, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err, fmt.Sprintf("Parameter %q must be a date (YYYY-MM-DD) or RFC 3339 timestamp", key))
	}
	if endOfDay {
		d = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	}
	return &d, nil
}
