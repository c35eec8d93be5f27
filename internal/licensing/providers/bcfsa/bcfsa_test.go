package bcfsa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presale/internal/licensing/providers"
)

func TestClient_FetchProfile(t *testing.T) {
	t.Run("returns body on 200", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			_, _ = w.Write([]byte("<html><h1>Jane Doe</h1></html>"))
		}))
		defer srv.Close()

		body, err := New(srv.URL+"/", time.Second).FetchProfile(context.Background(), "12345")
		require.NoError(t, err)
		assert.Equal(t, "/12345", gotPath)
		assert.Contains(t, string(body), "Jane Doe")
	})

	t.Run("escapes the licence number as one path segment", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
		}))
		defer srv.Close()

		_, err := New(srv.URL, time.Second).FetchProfile(context.Background(), "../admin?x=1")
		require.NoError(t, err)
		assert.Equal(t, "/..%2Fadmin%3Fx=1", gotPath)
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := New(srv.URL, time.Second).FetchProfile(context.Background(), "00000")
		require.Error(t, err)
		assert.Equal(t, providers.ErrorNotFound, providers.GetCategory(err))
		assert.False(t, providers.IsRetryable(err))
	})

	t.Run("5xx maps to provider outage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := New(srv.URL, time.Second).FetchProfile(context.Background(), "12345")
		require.Error(t, err)
		assert.Equal(t, providers.ErrorProviderOutage, providers.GetCategory(err))

		var pe *providers.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
	})

	t.Run("slow registry maps to timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		_, err := New(srv.URL, 20*time.Millisecond).FetchProfile(context.Background(), "12345")
		require.Error(t, err)
		assert.Equal(t, providers.ErrorTimeout, providers.GetCategory(err))
	})

	t.Run("caller cancellation maps to canceled", func(t *testing.T) {
		arrived := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(arrived)
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-arrived
			cancel()
		}()

		_, err := New(srv.URL, 5*time.Second).FetchProfile(ctx, "12345")
		require.Error(t, err)
		assert.Equal(t, providers.ErrorCanceled, providers.GetCategory(err))
		assert.False(t, providers.CountsAsFailure(err))
	})

	t.Run("unreachable registry maps to provider outage", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url, time.Second).FetchProfile(context.Background(), "12345")
		require.Error(t, err)
		assert.Equal(t, providers.ErrorProviderOutage, providers.GetCategory(err))
	})
}

func TestNew_Defaults(t *testing.T) {
	c := New("", time.Second)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, ProviderID, c.ID())
}
