// Package bcfsa fetches public licensee profiles from the BC Financial
// Services Authority registry.
package bcfsa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"presale/internal/licensing/providers"
)

const (
	// ProviderID identifies this registry in errors, logs and metrics.
	ProviderID = "bcfsa"

	// DefaultBaseURL is the public licensee lookup root.
	DefaultBaseURL = "https://www.bcfsa.ca/re-licencee"

	maxProfileBytes = 2 << 20
)

// Client performs one GET per lookup against {baseURL}/{licenseNumber}.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// New creates a registry client. timeout bounds each lookup end to end.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "presale-verifier/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ID() string {
	return ProviderID
}

// FetchProfile returns the raw profile HTML. A 404 maps to ErrorNotFound,
// any other non-2xx status or transport failure maps to ErrorProviderOutage,
// deadline expiry maps to ErrorTimeout and caller cancellation to ErrorCanceled.
func (c *Client) FetchProfile(ctx context.Context, licenseNumber string) ([]byte, error) {
	target := c.baseURL + "/" + url.PathEscape(licenseNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID, "failed to build request", err)
	}
	req.Header.Set("Accept", "text/html")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isCanceled(ctx, err) {
			return nil, providers.NewProviderError(providers.ErrorCanceled, ProviderID, "registry request abandoned", err)
		}
		if isTimeout(ctx, err) {
			return nil, providers.NewProviderError(providers.ErrorTimeout, ProviderID, "registry request timed out", err)
		}
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, ProviderID, "registry request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, providers.NewProviderError(providers.ErrorNotFound, ProviderID, "licence number not found", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pe := providers.NewProviderError(providers.ErrorProviderOutage, ProviderID,
			fmt.Sprintf("registry returned status %d", resp.StatusCode), nil)
		pe.StatusCode = resp.StatusCode
		return nil, pe
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes+1))
	if err != nil {
		if isCanceled(ctx, err) {
			return nil, providers.NewProviderError(providers.ErrorCanceled, ProviderID, "registry response abandoned", err)
		}
		if isTimeout(ctx, err) {
			return nil, providers.NewProviderError(providers.ErrorTimeout, ProviderID, "registry response timed out", err)
		}
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, ProviderID, "failed to read registry response", err)
	}
	if len(body) > maxProfileBytes {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "registry response too large", nil)
	}
	return body, nil
}

func isCanceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
