// Package session persists login sessions in memory or Redis.
package session

import "errors"

// ErrSessionRevoked is returned when revoking a session that is already revoked.
var ErrSessionRevoked = errors.New("session already revoked")
