// Package match compares a claimed realtor name with the registry's official name.
package match

import "strings"

// Normalize lowercases s and keeps only ASCII letters, digits and spaces.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Names reports whether claimed plausibly names the same person as official.
// It accepts an exact normalized match, claimed as a substring of official, or
// every claimed token longer than one character appearing among official's tokens.
// Single-letter tokens are initials and are ignored, so a claim needs at least
// one full token: an empty claim or one made only of initials ("J. K.") never
// matches, even though every token it has would trivially be present.
func Names(claimed, official string) bool {
	c := Normalize(claimed)
	o := Normalize(official)
	if c == "" || o == "" {
		return false
	}
	if c == o || strings.Contains(o, c) {
		return true
	}

	officialTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(o) {
		officialTokens[tok] = struct{}{}
	}

	matched := 0
	for _, tok := range strings.Fields(c) {
		if len(tok) <= 1 {
			continue
		}
		if _, ok := officialTokens[tok]; !ok {
			return false
		}
		matched++
	}
	return matched > 0
}

// Any reports whether claimed matches any of the non-empty candidates.
func Any(claimed string, candidates ...string) bool {
	for _, cand := range candidates {
		if cand != "" && Names(claimed, cand) {
			return true
		}
	}
	return false
}
