// Package device derives a display name and a coarse fingerprint from the
// User-Agent presented at login. Both are stored on the session so users can
// recognise their sessions and so drift can be logged.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

type Service struct {
	enabled bool
}

// NewService returns a device service. When disabled, fingerprints are empty
// and comparisons always match.
func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent renders "Browser on OS" for display.
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDevice
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	platform := osName(ua)
	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, platform))
}

func osName(ua *useragent.UserAgent) string {
	info := ua.OSInfo()
	switch {
	case ua.Mobile() && strings.Contains(ua.Platform(), "iPhone"):
		return "iPhone"
	case info.Name != "":
		return info.Name
	case ua.Platform() != "":
		return ua.Platform()
	default:
		return "Unknown OS"
	}
}

// ComputeFingerprint hashes browser, browser major version and OS. Minor
// browser upgrades keep the same fingerprint.
func (s *Service) ComputeFingerprint(raw string) string {
	if !s.enabled {
		return ""
	}
	ua := useragent.New(raw)
	browser, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	sum := sha256.Sum256([]byte(strings.Join([]string{browser, major, osName(ua)}, "|")))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether the stored and presented fingerprints
// match. drift is true when both are known and differ.
func (s *Service) CompareFingerprints(stored, presented string) (matched bool, drift bool) {
	if !s.enabled || stored == "" || presented == "" {
		return true, false
	}
	if stored == presented {
		return true, false
	}
	return false, true
}
