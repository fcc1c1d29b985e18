package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/catalogd/catalog-server/internal/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	result := decode(t, w)
	assert.Equal(t, EnvelopeVersion, result.Version)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestInternalError(t *testing.T) {
	w := httptest.NewRecorder()

	InternalError(w, "internal server error", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	result := decode(t, w)
	assert.False(t, result.Success)
	assert.Equal(t, "internal server error", result.Error)
	assert.Equal(t, string(domainerrors.CodeInternal), result.Code)
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()

	NotFound(w, "resource not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	result := decode(t, w)
	assert.False(t, result.Success)
	assert.Equal(t, "resource not found", result.Error)
	assert.Equal(t, string(domainerrors.CodeNotFound), result.Code)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   domainerrors.Code
		wantError  string
	}{
		{
			name:       "coded conflict",
			err:        domainerrors.Conflict("a store with that name already exists"),
			wantStatus: http.StatusBadRequest,
			wantCode:   domainerrors.CodeConflict,
			wantError:  "a store with that name already exists",
		},
		{
			name:       "internal keeps message, hides cause",
			err:        domainerrors.Internal("failed to create store").WithCause(errors.New("disk I/O error")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domainerrors.CodeInternal,
			wantError:  "failed to create store",
		},
		{
			name:       "uncoded error",
			err:        errors.New("SQL logic error: no such table"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domainerrors.CodeInternal,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			HandleError(w, tt.err, logger)

			assert.Equal(t, tt.wantStatus, w.Code)
			result := decode(t, w)
			assert.False(t, result.Success)
			assert.Equal(t, string(tt.wantCode), result.Code)
			assert.Equal(t, tt.wantError, result.Error)
			assert.NotContains(t, w.Body.String(), "I/O")
			assert.NotContains(t, w.Body.String(), "SQL")
		})
	}
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		status          int
		expectedSuccess bool
	}{
		{200, true},
		{201, true},
		{202, true},
		{399, true},
		{400, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()

			JSON(w, tt.status, nil, nil)

			assert.Equal(t, tt.expectedSuccess, decode(t, w).Success, "status %d", tt.status)
		})
	}
}

func TestEnvelope_OmitEmpty(t *testing.T) {
	tests := []struct {
		name        string
		envelope    Envelope
		contains    []string
		notContains []string
	}{
		{
			name:        "success with data",
			envelope:    Envelope{Version: EnvelopeVersion, Success: true, Data: "test"},
			contains:    []string{`"v":1`, `"success":true`, `"data":"test"`},
			notContains: []string{`"error":`, `"code":`, `"details":`},
		},
		{
			name:        "error without data",
			envelope:    Envelope{Version: EnvelopeVersion, Error: "something failed", Code: "INTERNAL"},
			contains:    []string{`"success":false`, `"error":"something failed"`, `"code":"INTERNAL"`},
			notContains: []string{`"data":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.envelope)
			require.NoError(t, err)

			jsonStr := string(data)
			for _, s := range tt.contains {
				assert.Contains(t, jsonStr, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, jsonStr, s)
			}
		})
	}
}
