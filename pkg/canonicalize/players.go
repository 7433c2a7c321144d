package canonicalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
)

var (
	playerRangeRe  = regexp.MustCompile(`(\d+)\s*(?:-|to)\s*(\d+)`)
	playerSingleRe = regexp.MustCompile(`(\d+)`)
	playerTagRe    = regexp.MustCompile(`\d+p`)
)

// ParsePlayers scans text for "N-M", "N to M", or a single "N".
func ParsePlayers(text string) (minP, maxP *int, ok bool) {
	text = strings.ToLower(text)
	if m := playerRangeRe.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return &lo, &hi, true
	}
	if m := playerSingleRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n, catalog.Ptr(n), true
	}
	return nil, nil, false
}

// players tries explicit bounds, then free text, then the tag set.
func players(rec *catalog.RawRecord, tags []string) (minP, maxP *int) {
	lo := positiveInt(firstNumber(rec, playersMinKeys...))
	hi := positiveInt(firstNumber(rec, playersMaxKeys...))
	if lo != nil || hi != nil {
		if lo == nil {
			lo = catalog.Ptr(*hi)
		}
		if hi == nil {
			hi = catalog.Ptr(*lo)
		}
		return lo, hi
	}

	if text := firstString(rec, playersTextKeys...); text != "" {
		if lo, hi, ok := ParsePlayers(text); ok {
			return lo, hi
		}
	}

	for _, tag := range tags {
		if strings.Contains(tag, "player") || playerTagRe.MatchString(tag) {
			if lo, hi, ok := ParsePlayers(tag); ok {
				return lo, hi
			}
		}
	}
	return nil, nil
}

// positiveInt drops zero and negative counts, which sources use for "unknown".
func positiveInt(f *float64) *int {
	if f == nil || *f <= 0 {
		return nil
	}
	n := int(*f)
	return &n
}
