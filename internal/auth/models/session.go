package models

import (
	"time"

	id "presale/pkg/domain"
)

type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusRevoked SessionStatus = "revoked"
)

// Session is a server-side login record. The cookie carries a signed token
// naming the session; revoking the record invalidates the token.
type Session struct {
	ID                    id.SessionID  `json:"id"`
	UserID                id.UserID     `json:"user_id"`
	Status                SessionStatus `json:"status"`
	TokenJTI              string        `json:"token_jti"`
	DeviceDisplayName     string        `json:"device_display_name,omitempty"`
	DeviceFingerprintHash string        `json:"device_fingerprint_hash,omitempty"`
	ClientIP              string        `json:"client_ip,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	ExpiresAt             time.Time     `json:"expires_at"`
	RevokedAt             *time.Time    `json:"revoked_at,omitempty"`
}

// IsUsable reports whether the session still authenticates requests at now.
func (s *Session) IsUsable(now time.Time) bool {
	return s.Status == SessionStatusActive && now.Before(s.ExpiresAt)
}

// ApplyRevocation marks the session revoked. It is a no-op on revoked sessions.
func (s *Session) ApplyRevocation(now time.Time) bool {
	if s.Status == SessionStatusRevoked {
		return false
	}
	s.Status = SessionStatusRevoked
	s.RevokedAt = &now
	return true
}
