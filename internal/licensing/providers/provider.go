// Package providers defines the boundary to external licence registries.
package providers

import "context"

// Fetcher retrieves the raw public profile document for a licence number.
// Implementations return a *ProviderError for every failure.
type Fetcher interface {
	// ID returns a unique identifier for this registry source.
	ID() string

	// FetchProfile performs exactly one outbound lookup.
	FetchProfile(ctx context.Context, licenseNumber string) ([]byte, error)
}
