package canonicalize

import (
	"regexp"
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/provenance"
)

// Cache is a read-only lookup of provider records by match key.
type Cache map[string]*catalog.RawRecord

// Image size tokens for metadata-provider image URLs.
const (
	CoverSize      = "t_cover_big"
	ScreenshotSize = "t_screenshot_huge"
)

var imageSizeRe = regexp.MustCompile(`t_[^/]+`)

var metadataTagKeys = []string{"genres", "themes", "franchises", "game_modes", "player_perspectives"}

// Provenance sources and policies recorded for enrichment.
const (
	SourceCritic   = "critic"
	SourceMetadata = "metadata"

	PolicyOverwrite = "overwrite"
	PolicyFill      = "fill"
	PolicyUnion     = "union"
)

// Enricher overlays the critic-score and game-metadata caches onto
// entities. Either cache may be nil.
type Enricher struct {
	Critic   Cache
	Metadata Cache
	// Tracker, when set, records each field a cache entry changed.
	Tracker provenance.Tracker
}

// noteFunc records that an enrichment step changed field.
type noteFunc func(field, policy string)

func (en *Enricher) noter(e *catalog.Entity, source string) noteFunc {
	if en.Tracker == nil {
		return func(string, string) {}
	}
	key := e.MatchKey
	return func(field, policy string) {
		en.Tracker.Track(key, field, provenance.Provenance{
			Source: source,
			Policy: policy,
			Reason: "enrichment",
		})
	}
}

// EnrichReport counts cache hits.
type EnrichReport struct {
	CriticHits   int
	MetadataHits int
}

// EnrichAll enriches every entity in place.
func (en *Enricher) EnrichAll(batch []*catalog.Entity) EnrichReport {
	var r EnrichReport
	for _, e := range batch {
		c, m := en.Enrich(e)
		if c {
			r.CriticHits++
		}
		if m {
			r.MetadataHits++
		}
	}
	return r
}

// Enrich applies both caches to e and reports which ones had an entry.
func (en *Enricher) Enrich(e *catalog.Entity) (critic, metadata bool) {
	if entry, ok := en.Critic[e.MatchKey]; ok && entry != nil {
		applyCritic(e, entry, en.noter(e, SourceCritic))
		critic = true
	}
	if entry, ok := en.Metadata[e.MatchKey]; ok && entry != nil {
		applyMetadata(e, entry, en.noter(e, SourceMetadata))
		metadata = true
	}
	return critic, metadata
}

// applyCritic overwrites critic scores with any non-null cached value.
func applyCritic(e *catalog.Entity, entry *catalog.RawRecord, note noteFunc) {
	if v := ParseNumber(entry.Get("metascore")); v != nil {
		e.Metascore = v
		note("metascore", PolicyOverwrite)
	}
	if v := ParseNumber(entry.Get("userscore")); v != nil {
		e.Userscore = v
		note("userscore", PolicyOverwrite)
	}
	if v := ParseNumber(entry.Get("userscore_reviews")); v != nil {
		e.UserscoreReviews = v
		note("userscore_reviews", PolicyOverwrite)
	}
	if url := stringOf(entry.Get("url")); url != "" && e.MetacriticURL == "" {
		e.MetacriticURL = url
		note("metacritic_url", PolicyFill)
	}
}

// applyMetadata adds descriptive tags, rating signals, artwork and a
// release date from a metadata provider entry. Existing non-empty text
// fields are kept.
func applyMetadata(e *catalog.Entity, entry *catalog.RawRecord, note noteFunc) {
	before := len(e.Tags)
	for _, k := range metadataTagKeys {
		for _, t := range stringList(entry.Get(k), false) {
			e.Tags = appendUnique(e.Tags, lower, lower(t))
		}
	}
	if len(e.Tags) > before {
		note("tags", PolicyUnion)
	}

	signals := false
	for _, s := range []struct {
		key string
		dst **float64
	}{
		{"total_rating_count", &e.TotalRatingCount},
		{"rating_count", &e.RatingCount},
		{"aggregated_rating_count", &e.AggregatedRatingCount},
		{"hypes", &e.Hypes},
	} {
		if v := ParseNumber(entry.Get(s.key)); v != nil {
			*s.dst = v
			signals = true
		}
	}
	if signals {
		note("rating_signals", PolicyOverwrite)
	}

	fill := func(field string, dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			note(field, PolicyFill)
		}
	}
	fill("notes", &e.Notes, stringOf(entry.Get("summary")))
	fill("publisher", &e.Publisher, strings.Join(stringList(entry.Get("publishers"), false), ", "))
	fill("image_square", &e.ImageSquare, ImageURL(stringOf(entry.Get("cover")), CoverSize))
	if shots := stringList(entry.Get("screenshots"), false); len(shots) > 0 {
		fill("image_wide", &e.ImageWide, ImageURL(shots[0], ScreenshotSize))
	}
	if e.ReleaseTimestamp == nil {
		if secs := ParseNumber(entry.Get("first_release_date")); secs != nil {
			ms := int64(*secs * 1000)
			e.ReleaseTimestamp = &ms
			e.ReleaseDate = formatMillis(ms)
			note("release", PolicyFill)
		}
	}
}

// ImageURL makes a protocol-relative URL absolute and swaps its size token.
func ImageURL(url, size string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	if size == "" {
		return url
	}
	return imageSizeRe.ReplaceAllString(url, size)
}
