package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presale/internal/licensing/models"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/testutil"
)

type stubService struct {
	result models.Result
	role   id.Role
	err    error

	calls      int
	gotUser    id.UserID
	gotLicense string
	gotClaimed string
}

func (s *stubService) VerifyRealtor(_ context.Context, userID id.UserID, licenseNumber, claimedName string) (models.Result, id.Role, error) {
	s.calls++
	s.gotUser = userID
	s.gotLicense = licenseNumber
	s.gotClaimed = claimedName
	return s.result, s.role, s.err
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)
	return r
}

func TestHandleVerifyRealtor(t *testing.T) {
	userID := id.NewUserID()
	body := map[string]string{"licenseNumber": " 12345 ", "name": " Carly Smith "}

	t.Run("success upgrades and returns canonical details", func(t *testing.T) {
		svc := &stubService{
			result: models.Valid(models.Details{Name: "Carly Miller Smith", LicenseStatus: "Licensed", Brokerage: "Oakwyn"}),
			role:   id.RoleAgent,
		}
		req := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPost, "/api/verify-realtor", body), userID, id.RoleGuest)
		rr := testutil.DoRequest(newRouter(svc), req)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[VerifyRealtorResponse](t, rr)
		assert.True(t, resp.IsValid)
		assert.Equal(t, "Carly Miller Smith", resp.Details.Name)
		assert.Equal(t, "AGENT", resp.Role)
		assert.Equal(t, userID, svc.gotUser)
		assert.Equal(t, "12345", svc.gotLicense)
		assert.Equal(t, "Carly Smith", svc.gotClaimed)
	})

	t.Run("business failures share one public message", func(t *testing.T) {
		var messages []string
		for _, reason := range []models.Reason{
			models.ReasonNotFound,
			models.ReasonInactive,
			models.ReasonNameMismatch,
			models.ReasonUnparseable,
		} {
			svc := &stubService{result: models.Invalid(reason), role: id.RoleGuest}
			req := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPost, "/api/verify-realtor", body), userID, id.RoleGuest)
			rr := testutil.DoRequest(newRouter(svc), req)

			require.Equal(t, http.StatusUnprocessableEntity, rr.Code, string(reason))
			resp := testutil.UnmarshalResponse[VerifyRealtorResponse](t, rr)
			assert.False(t, resp.IsValid)
			assert.Nil(t, resp.Details)
			assert.Empty(t, resp.Role)
			messages = append(messages, resp.Error)
		}
		for _, m := range messages {
			assert.Equal(t, genericFailure, m)
		}
	})

	t.Run("registry outage is 503 with its own message", func(t *testing.T) {
		svc := &stubService{result: models.Invalid(models.ReasonServiceUnavailable)}
		req := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPost, "/api/verify-realtor", body), userID, id.RoleGuest)
		rr := testutil.DoRequest(newRouter(svc), req)

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		resp := testutil.UnmarshalResponse[VerifyRealtorResponse](t, rr)
		assert.Equal(t, "Verification service unavailable.", resp.Error)
	})

	t.Run("guest without session is rejected before the service", func(t *testing.T) {
		svc := &stubService{}
		req := testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPost, "/api/verify-realtor", body))
		rr := testutil.DoRequest(newRouter(svc), req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("invalid input never reaches the registry", func(t *testing.T) {
		cases := []map[string]string{
			{"licenseNumber": "", "name": "Carly Smith"},
			{"licenseNumber": "12345", "name": "  "},
			{"licenseNumber": "../etc", "name": "Carly Smith"},
			{"licenseNumber": strings.Repeat("1", 33), "name": "Carly Smith"},
		}
		for _, c := range cases {
			svc := &stubService{}
			req := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPost, "/api/verify-realtor", c), userID, id.RoleGuest)
			rr := testutil.DoRequest(newRouter(svc), req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Zero(t, svc.calls)
		}
	})

	t.Run("store failure surfaces as coded error", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeNotFound, "user not found")}
		req := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPost, "/api/verify-realtor", body), userID, id.RoleGuest)
		rr := testutil.DoRequest(newRouter(svc), req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
