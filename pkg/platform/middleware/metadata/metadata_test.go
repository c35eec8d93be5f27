package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"presale/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{name: "left-most forwarded address", forwarded: "203.0.113.9, 10.0.0.1", remote: "10.0.0.2:5555", want: "203.0.113.9"},
		{name: "garbage forwarded entry is skipped", forwarded: "not-an-ip, 198.51.100.4", remote: "10.0.0.2:5555", want: "198.51.100.4"},
		{name: "real ip when no forwarded header", realIP: " 198.51.100.7 ", remote: "10.0.0.2:5555", want: "198.51.100.7"},
		{name: "invalid headers fall back to peer", forwarded: "x", realIP: "y", remote: "192.0.2.10:80", want: "192.0.2.10"},
		{name: "ipv4 peer", remote: "192.0.2.1:443", want: "192.0.2.1"},
		{name: "ipv6 peer", remote: "[::1]:8080", want: "::1"},
		{name: "mapped ipv4 is unmapped", forwarded: "::ffff:203.0.113.5", want: "203.0.113.5"},
		{name: "peer without port", remote: "192.0.2.77", want: "192.0.2.77"},
		{name: "no address at all", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	r.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.1", gotIP)
	assert.Equal(t, "Mozilla/5.0 (iPhone)", gotUA)
}
