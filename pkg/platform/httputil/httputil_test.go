package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "presale/pkg/domain-errors"
	"presale/pkg/testutil"
)

type errorBody struct {
	Error       string  `json:"error"`
	Description *string `json:"error_description"`
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string // empty means the description must be absent
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "askingPrice must be positive"), http.StatusBadRequest, "validation_error", "askingPrice must be positive"},
		{"not authenticated", dErrors.New(dErrors.CodeUnauthorized, "login required"), http.StatusUnauthorized, "unauthorized", "login required"},
		{"pool for members", dErrors.New(dErrors.CodeForbidden, "lead pool requires a verified agent"), http.StatusForbidden, "forbidden", "lead pool requires a verified agent"},
		{"taken username", dErrors.New(dErrors.CodeConflict, "username already taken"), http.StatusConflict, "conflict", "username already taken"},
		{"rejected licence", dErrors.New(dErrors.CodeInvariantViolation, "licence could not be verified"), http.StatusUnprocessableEntity, "invariant_violation", "licence could not be verified"},
		{"registry down", dErrors.New(dErrors.CodeUnavailable, "try again later"), http.StatusServiceUnavailable, "service_unavailable", "try again later"},
		{"wrapped coded error", fmt.Errorf("handler: %w", dErrors.New(dErrors.CodeNotFound, "listing not found")), http.StatusNotFound, "not_found", "listing not found"},
		{"internal hides detail", dErrors.New(dErrors.CodeInternal, "pq: connection refused"), http.StatusInternalServerError, "internal_error", ""},
		{"uncoded error", io.ErrUnexpectedEOF, http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := testutil.UnmarshalResponse[errorBody](t, rec)
			assert.Equal(t, tt.wantCode, body.Error)
			if tt.wantDesc == "" {
				assert.Nil(t, body.Description)
				return
			}
			require.NotNil(t, body.Description)
			assert.Equal(t, tt.wantDesc, *body.Description)
		})
	}
}

func TestWriteJSONWithoutBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

type claimRequest struct {
	LicenseNumber string `json:"licenseNumber"`
}

func (r *claimRequest) Validate() error {
	r.LicenseNumber = strings.ToUpper(strings.TrimSpace(r.LicenseNumber))
	if r.LicenseNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "licenseNumber is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	decode := func(body io.Reader) (*claimRequest, bool, *httptest.ResponseRecorder) {
		r := httptest.NewRequest(http.MethodPost, "/api/verify-realtor", body)
		rec := httptest.NewRecorder()
		out, ok := DecodeAndPrepare[claimRequest](rec, r, logger, context.Background(), "req-1")
		return out, ok, rec
	}

	t.Run("normalizes a valid body", func(t *testing.T) {
		out, ok, _ := decode(strings.NewReader(`{"licenseNumber":" x123456 "}`))
		require.True(t, ok)
		assert.Equal(t, "X123456", out.LicenseNumber)
	})

	t.Run("unknown fields are a bad request", func(t *testing.T) {
		_, ok, rec := decode(strings.NewReader(`{"licenseNumber":"X1","role":"ADMIN"}`))
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid json payload")
		assert.Contains(t, logs.String(), "req-1")
	})

	t.Run("truncated json is a bad request", func(t *testing.T) {
		_, ok, rec := decode(strings.NewReader(`{"licenseNumber":`))
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty body still validates", func(t *testing.T) {
		_, ok, rec := decode(http.NoBody)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "licenseNumber is required")
	})
}
