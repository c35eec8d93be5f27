package service

//go:generate mockgen -source=../providers/provider.go -destination=../providers/mocks/mocks.go -package=mocks Fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"presale/internal/licensing/extract"
	"presale/internal/licensing/metrics"
	"presale/internal/licensing/models"
	"presale/internal/licensing/providers"
	"presale/internal/licensing/providers/bcfsa"
	"presale/internal/licensing/providers/mocks"
	"presale/pkg/platform/circuit"
)

const activeProfile = `<html><body>
<h2 class="text-h2-alt">Carly Miller Smith</h2>
<dl>
  <dt>Licence Status:</dt><dd>Licensed - Active</dd>
  <dt>Business Name:</dt><dd>Oakwyn Realty Ltd.</dd>
  <dt>Known As:</dt><dd>Carly Mills</dd>
</dl>
</body></html>`

func profileWithStatus(status string) []byte {
	return []byte(`<h2 class="text-h2-alt">Carly Smith</h2><dl><dt>Licence Status:</dt><dd>` + status + `</dd></dl>`)
}

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	fetcher *mocks.MockFetcher
	metrics *metrics.Metrics
	logs    *bytes.Buffer
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.fetcher = mocks.NewMockFetcher(s.ctrl)
	s.fetcher.EXPECT().ID().Return("bcfsa").AnyTimes()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.service = s.newService()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	logger := slog.New(slog.NewTextHandler(s.logs, nil))
	opts = append([]Option{WithLogger(logger), WithMetrics(s.metrics)}, opts...)
	svc, err := New(s.fetcher, extract.NewHTMLExtractor(), opts...)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) TestVerify_Success() {
	ctx := context.Background()

	s.Run("returns canonical registry name", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return([]byte(activeProfile), nil)

		result := s.service.Verify(ctx, "12345", "Carly Smith")
		s.True(result.IsValid)
		s.Empty(result.Error)
		s.Require().NotNil(result.Details)
		s.Equal(models.Details{
			Name:          "Carly Miller Smith",
			LicenseStatus: "Licensed - Active",
			Brokerage:     "Oakwyn Realty Ltd.",
		}, *result.Details)
	})

	s.Run("alias name matches", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return([]byte(activeProfile), nil)

		result := s.service.Verify(ctx, "12345", "Carly Mills")
		s.True(result.IsValid)
		s.Equal("Carly Miller Smith", result.Details.Name)
	})

	s.Run("initials are tolerated", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return([]byte(activeProfile), nil)

		s.True(s.service.Verify(ctx, "12345", "C. Smith").IsValid)
	})

	s.Equal(3.0, testutil.ToFloat64(s.metrics.Outcomes.WithLabelValues("verified")))
}

func (s *ServiceSuite) TestVerify_Failures() {
	ctx := context.Background()

	s.Run("not found", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "00000").
			Return(nil, providers.NewProviderError(providers.ErrorNotFound, "bcfsa", "licence number not found", nil))

		result := s.service.Verify(ctx, "00000", "Carly Smith")
		s.False(result.IsValid)
		s.Nil(result.Details)
		s.Equal(models.ReasonNotFound, result.Reason)
		s.Equal("License number not found", result.Error)
	})

	s.Run("network failure is service unavailable", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").
			Return(nil, providers.NewProviderError(providers.ErrorProviderOutage, "bcfsa", "registry request failed", errors.New("dial tcp: connection refused")))

		result := s.service.Verify(ctx, "12345", "Carly Smith")
		s.Equal(models.Result{Error: "Verification service unavailable.", Reason: models.ReasonServiceUnavailable}, result)
		s.NotContains(result.Error, "connection refused")
		s.Contains(s.logs.String(), "level=ERROR")
	})

	s.Run("uncategorized error is service unavailable", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return(nil, errors.New("boom"))

		s.Equal(models.ReasonServiceUnavailable, s.service.Verify(ctx, "12345", "Carly Smith").Reason)
	})

	s.Run("suspended licence is inactive", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return(profileWithStatus("Suspended"), nil)

		result := s.service.Verify(ctx, "12345", "Carly Smith")
		s.Equal(models.ReasonInactive, result.Reason)
		s.Equal("License is not active or not found.", result.Error)
	})

	s.Run("cancelled licence is inactive", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return(profileWithStatus("Cancelled"), nil)

		s.Equal(models.ReasonInactive, s.service.Verify(ctx, "12345", "Carly Smith").Reason)
	})

	s.Run("missing status is inactive", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return([]byte(`<h1>Carly Smith</h1>`), nil)

		s.Equal(models.ReasonInactive, s.service.Verify(ctx, "12345", "Carly Smith").Reason)
	})

	s.Run("name mismatch", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return(profileWithStatus("Licensed"), nil)

		result := s.service.Verify(ctx, "12345", "John Doe")
		s.Equal(models.ReasonNameMismatch, result.Reason)
		s.Equal("Name does not match our records for this license.", result.Error)
	})

	s.Run("unparseable profile is logged as a defect", func() {
		s.logs.Reset()
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").
			Return([]byte(`<h1>Real Estate Professional Information</h1>`), nil)

		result := s.service.Verify(ctx, "12345", "Carly Smith")
		s.Equal(models.ReasonUnparseable, result.Reason)
		s.Equal("Could not parse realtor name from registry", result.Error)
		s.Contains(s.logs.String(), "level=WARN")
		s.Contains(s.logs.String(), "parse defect")
	})

	s.Run("panic is recovered", func() {
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").DoAndReturn(
			func(context.Context, string) ([]byte, error) { panic("nil map") },
		)

		var result models.Result
		s.NotPanics(func() { result = s.service.Verify(ctx, "12345", "Carly Smith") })
		s.Equal(models.ReasonServiceUnavailable, result.Reason)
	})
}

func (s *ServiceSuite) TestVerify_CircuitBreaker() {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	breaker := circuit.New("bcfsa",
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	svc := s.newService(WithBreaker(breaker))
	outage := providers.NewProviderError(providers.ErrorTimeout, "bcfsa", "registry request timed out", nil)

	s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return(nil, outage).Times(2)
	svc.Verify(ctx, "12345", "Carly Smith")
	svc.Verify(ctx, "12345", "Carly Smith")
	s.True(breaker.IsOpen())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BreakerOpen))

	s.Run("open circuit makes no registry call", func() {
		result := svc.Verify(ctx, "12345", "Carly Smith")
		s.Equal(models.ReasonServiceUnavailable, result.Reason)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RegistryCallsDenied))
	})

	s.Run("trial call after cooldown closes the circuit", func() {
		now = now.Add(time.Minute)
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return([]byte(activeProfile), nil)

		s.True(svc.Verify(ctx, "12345", "Carly Smith").IsValid)
		s.False(breaker.IsOpen())
		s.Equal(0.0, testutil.ToFloat64(s.metrics.BreakerOpen))
	})

	s.Run("not found does not count against the registry", func() {
		notFound := providers.NewProviderError(providers.ErrorNotFound, "bcfsa", "licence number not found", nil)
		s.fetcher.EXPECT().FetchProfile(gomock.Any(), "00000").Return(nil, notFound).Times(3)
		for range 3 {
			svc.Verify(ctx, "00000", "Carly Smith")
		}
		s.False(breaker.IsOpen())
	})
}

func (s *ServiceSuite) TestVerify_AbandonedTrialKeepsCircuitRecoverable() {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	breaker := circuit.New("bcfsa",
		circuit.WithFailureThreshold(1),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	svc := s.newService(WithBreaker(breaker))

	outage := providers.NewProviderError(providers.ErrorProviderOutage, "bcfsa", "registry request failed", nil)
	s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return(nil, outage)
	svc.Verify(context.Background(), "12345", "Carly Smith")
	s.Require().True(breaker.IsOpen())
	now = now.Add(time.Minute)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return(nil, context.Canceled)
	result := svc.Verify(cancelled, "12345", "Carly Smith")
	s.Equal(models.ReasonServiceUnavailable, result.Reason)
	s.True(breaker.IsOpen(), "a cancelled trial call is not a success")

	s.fetcher.EXPECT().FetchProfile(gomock.Any(), "12345").Return([]byte(activeProfile), nil)
	s.True(svc.Verify(context.Background(), "12345", "Carly Smith").IsValid, "the trial slot was released")
	s.False(breaker.IsOpen())
}

func TestVerify_CancelledLookupsDoNotOpenCircuit(t *testing.T) {
	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/SLOW1" {
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(activeProfile))
	}))
	defer registry.Close()

	breaker := circuit.New("bcfsa")
	svc, err := New(bcfsa.New(registry.URL, 5*time.Second), extract.NewHTMLExtractor(),
		WithBreaker(breaker),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	for range 5 {
		ctx, cancel := context.WithCancel(context.Background())
		timer := time.AfterFunc(20*time.Millisecond, cancel)
		result := svc.Verify(ctx, "SLOW1", "Carly Smith")
		timer.Stop()
		cancel()
		require.False(t, result.IsValid)
		require.Equal(t, models.ReasonServiceUnavailable, result.Reason)
	}

	assert.False(t, breaker.IsOpen(), "caller cancellations are not registry failures")
	result := svc.Verify(context.Background(), "X123456", "Carly Smith")
	assert.True(t, result.IsValid, "healthy lookup after cancellations: %+v", result)
}

func TestNew_RequiresFetcher(t *testing.T) {
	_, err := New(nil, nil)
	if err == nil {
		t.Fatal("expected error for nil fetcher")
	}
}
