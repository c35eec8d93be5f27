// Package sentinel holds storage-level error facts. Stores return them,
// possibly wrapped, and services map them onto coded domain errors.
// Input validation failures use pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound means the requested user, session or listing does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a uniqueness constraint, such as a username, was violated.
	ErrConflict = errors.New("record already exists")
	// ErrExpired means a session record exists but is past its expiry.
	ErrExpired = errors.New("record expired")
)
