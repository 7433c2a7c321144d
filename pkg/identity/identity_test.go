package identity_test

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/playmap/pkg/identity"
)

func TestMatchKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Legend of Zelda: Tears of the Kingdom", "thelegendofzeldatearsofthekingdom"},
		{"Mario Kart™ 8 Deluxe", "mariokart8deluxe"},
		{"  HADES  ", "hades"},
		{"Pokémon Scarlet", "pokmonscarlet"},
		{"!!!", ""},
		{"", ""},
		{"1-2-Switch", "12switch"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.MatchKey(tt.in))
		})
	}
}

func TestSame(t *testing.T) {
	assert.True(t, identity.Same("Celeste", "CELESTE!"))
	assert.True(t, identity.Same("Stardew Valley", "stardew-valley"))
	assert.False(t, identity.Same("Celeste", "Celeste 2"))
	assert.False(t, identity.Same("???", "!!!"))
}

func TestMatchKeyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fold is idempotent", prop.ForAll(
		func(s string) bool {
			k := identity.MatchKey(s)
			return identity.MatchKey(k) == k
		},
		gen.AnyString(),
	))

	properties.Property("case and punctuation do not change the key", prop.ForAll(
		func(s string) bool {
			noisy := " " + strings.ToUpper(s) + " :!™-"
			return identity.MatchKey(noisy) == identity.MatchKey(s)
		},
		gen.AlphaString(),
	))

	properties.Property("keys only contain [a-z0-9]", prop.ForAll(
		func(s string) bool {
			for _, r := range identity.MatchKey(s) {
				if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
