package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorIsSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"fetch", NewFetchError("get confirmed", errors.New("dial tcp")), ErrFetchFailure},
		{"malformed", NewMalformedError("missing header", nil), ErrMalformedInput},
		{"parsing", NewParsingError("bad cell", nil), ErrParseFailure},
		{"misaligned", NewMisalignedError("length differs"), ErrMisalignedSeries},
		{"not found", NewNotFoundError("country"), ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			wrapped := fmt.Errorf("refresh: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.False(t, errors.Is(tt.err, ErrStorage))
		})
	}
}

func TestAppErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewFetchError("fetch deaths", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "[FETCH] fetch deaths: connection refused", err.Error())
	assert.Equal(t, ErrTypeFetch, TypeOf(fmt.Errorf("wrap: %w", err)))
	assert.Equal(t, ErrorType(""), TypeOf(cause))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewParsingError("not a count", nil).WithContext("row", 3).WithContext("column", "1/22/20")

	assert.Equal(t, 3, err.Context["row"])
	assert.Equal(t, "1/22/20", err.Context["column"])
	assert.Equal(t, "[PARSING] not a count", err.Error())
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"fetch", NewFetchError("x", nil), http.StatusBadGateway, "FETCH_FAILED"},
		{"malformed", NewMalformedError("x", nil), http.StatusUnprocessableEntity, "MALFORMED_INPUT"},
		{"parse", NewParsingError("x", nil), http.StatusUnprocessableEntity, "PARSE_FAILED"},
		{"misaligned", NewMisalignedError("x"), http.StatusUnprocessableEntity, "MISALIGNED_SERIES"},
		{"validation", NewValidationError("x"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"not found", NewNotFoundError("x"), http.StatusNotFound, "NOT_FOUND"},
		{"no data", NewNoDataError(), http.StatusServiceUnavailable, "NO_DATA"},
		{"api error passes through", ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.ErrorCode)
		})
	}
}
