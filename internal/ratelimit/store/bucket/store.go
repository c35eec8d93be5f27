// Package bucket stores sliding-window request counters.
package bucket

import (
	"context"
	"time"

	"presale/internal/ratelimit/models"
)

// Store records one hit per Allow call against a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
	Reset(ctx context.Context, key string) error
}
