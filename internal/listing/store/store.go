// Package store persists listings in memory or PostgreSQL.
package store

// Filter narrows List results.
type Filter struct {
	// PoolOnly keeps listings whose lead-pool tier is not NOT_IN_POOL.
	PoolOnly bool
}
