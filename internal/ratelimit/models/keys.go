package models

import (
	"strings"

	id "presale/pkg/domain"
)

// Scope names a rate-limited operation.
type Scope string

const (
	ScopeVerifyRealtor Scope = "verify_realtor"
	ScopeLogin         Scope = "login"
)

// UserKey builds the bucket key for an authenticated caller.
func UserKey(scope Scope, userID id.UserID) string {
	return "rl:" + string(scope) + ":user:" + userID.String()
}

// IPKey builds the bucket key for an anonymous caller. IPv6 colons are kept
// out of the key so it stays a flat Redis-friendly token.
func IPKey(scope Scope, ip string) string {
	return "rl:" + string(scope) + ":ip:" + strings.ReplaceAll(ip, ":", "_")
}
