package canonicalize

import (
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/playmap/pkg/catalog"
)

// releaseLayouts are the calendar formats storefronts are known to emit.
var releaseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"01/02/2006",
	"2006/01/02",
	"2006-01",
	"2006",
}

// ParseReleaseDate parses a calendar date string to epoch milliseconds.
func ParseReleaseDate(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range releaseLayouts {
		if t, err := utc.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// release resolves the raw release text and its timestamp. The first
// non-empty text field wins; if it cannot be parsed the numeric
// release_timestamp (milliseconds) is used instead.
func release(rec *catalog.RawRecord) (raw string, ts *int64) {
	raw = firstString(rec, releaseTextKeys...)
	if raw == "" {
		if list := stringList(rec.Get(releaseListKey), false); len(list) > 0 {
			raw = list[0]
		}
	}
	if ms, ok := ParseReleaseDate(raw); ok {
		return raw, &ms
	}
	if n := firstNumber(rec, releaseStampKeys...); n != nil {
		ms := int64(*n)
		return raw, &ms
	}
	return raw, nil
}

// formatMillis renders epoch milliseconds as an RFC 3339 date.
func formatMillis(ms int64) string {
	return utc.New(time.UnixMilli(ms)).Format(time.RFC3339)
}
