package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

const maxBodyBytes = 1 << 20

// ValidationError carries field level problems back to the client.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a problem for field; the first problem per field wins.
func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = reason
	}
}

// OrNil returns nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DecodeJSON decodes the request body into v, rejecting unknown fields and
// trailing data. Malformed input comes back as a *ValidationError.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		verr := &ValidationError{}
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			verr.Add("body", "request body is empty")
		case errors.As(err, &typeErr):
			verr.Add(typeErr.Field, fmt.Sprintf("must be %s", typeErr.Type.String()))
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			verr.Add(strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`), "unknown field")
		default:
			verr.Add("body", "malformed JSON")
		}
		return verr
	}

	if dec.More() {
		return &ValidationError{Fields: map[string]string{"body": "unexpected trailing data"}}
	}
	return nil
}
