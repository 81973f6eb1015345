package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "Empty", body: "", wantField: "body"},
		{name: "Malformed", body: "{", wantField: "body"},
		{name: "WrongType", body: `{"quantity":"two"}`, wantField: "quantity"},
		{name: "UnknownField", body: `{"price":1}`, wantField: "price"},
		{name: "Trailing", body: `{"name":"a"}{"name":"b"}`, wantField: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sample

			err := DecodeJSON(req, &v)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.wantField)
		})
	}

	t.Run("Valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"1984","quantity":2}`))
		var v sample

		require.NoError(t, DecodeJSON(req, &v))
		assert.Equal(t, sample{Name: "1984", Quantity: 2}, v)
	})
}

func TestValidationError(t *testing.T) {
	var verr ValidationError
	assert.Nil(t, verr.OrNil())

	verr.Add("email", "is required")
	verr.Add("email", "is invalid")
	verr.Add("city", "is required")

	assert.Equal(t, "is required", verr.Fields["email"])
	assert.Equal(t, "validation failed: city: is required, email: is required", verr.Error())
	assert.Error(t, verr.OrNil())
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, "empty_cart", "Cart is empty")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "empty_cart", body.Error)
	assert.Equal(t, "Cart is empty", body.Message)
	assert.Nil(t, body.Details)
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidationError(w, &ValidationError{Fields: map[string]string{"paymentMethod": "is required"}})

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_data", body.Error)
	assert.Equal(t, "is required", body.Details["paymentMethod"])
}
