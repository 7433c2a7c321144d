// Package identity folds display titles into match keys.
//
// A match key is the only identity the engine knows: two records refer to
// the same title exactly when their keys are equal. Keys are never shown to
// users; use the entity title for display.
package identity

import "strings"

// MatchKey lower-cases text and drops every character outside [a-z0-9].
// It is pure and idempotent: MatchKey(MatchKey(s)) == MatchKey(s).
func MatchKey(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Same reports whether two texts fold to the same non-empty key.
func Same(a, b string) bool {
	ka := MatchKey(a)
	return ka != "" && ka == MatchKey(b)
}
