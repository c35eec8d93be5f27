package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"presale/pkg/requestcontext"
)

const unknownClient = "unknown"

// ClientMetadata stores the caller's address and User-Agent on the request
// context. Per-IP rate limits key on the stored address.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest prefers the left-most parseable X-Forwarded-For entry,
// then X-Real-IP, then the socket peer. Unparseable header values are skipped.
func ClientIPFromRequest(r *http.Request) string {
	for entry := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		if ip, ok := parseIP(entry); ok {
			return ip
		}
	}
	if ip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	return peerAddress(r.RemoteAddr)
}

func parseIP(raw string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

func peerAddress(remote string) string {
	if remote == "" {
		return unknownClient
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	if ip, ok := parseIP(host); ok {
		return ip
	}
	return host
}
