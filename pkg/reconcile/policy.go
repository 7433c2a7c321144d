package reconcile

import (
	"fmt"
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
)

// Policy names a conflict-resolution rule.
type Policy string

// Merge policies.
const (
	// FirstNonEmpty keeps the first populated value; later records never overwrite it.
	FirstNonEmpty Policy = "first_non_empty"
	// Union accumulates a case-normalized set in first-seen order.
	Union Policy = "union"
	// AnyTrue ORs boolean flags.
	AnyTrue Policy = "any_true"
	// EarliestRelease takes an earlier release timestamp, or the first one seen.
	EarliestRelease Policy = "earliest_release"
	// FreshestPerRegion overlays later per-region prices onto earlier ones.
	FreshestPerRegion Policy = "freshest_per_region"
	// LastNonEmpty lets any later populated value overwrite.
	LastNonEmpty Policy = "last_non_empty"
)

// Field names one mergeable attribute of an entity.
type Field string

// Mergeable fields.
const (
	FieldTitle            Field = "title"
	FieldType             Field = "type"
	FieldTags             Field = "tags"
	FieldPlayersMin       Field = "players_min"
	FieldPlayersMax       Field = "players_max"
	FieldRegions          Field = "regions"
	FieldPrices           Field = "prices"
	FieldMetascore        Field = "metascore"
	FieldUserscore        Field = "userscore"
	FieldUserscoreReviews Field = "userscore_reviews"
	FieldPopularity       Field = "popularity"
	FieldRatingSignals    Field = "rating_signals"
	FieldRelease          Field = "release"
	FieldImageSquare      Field = "image_square"
	FieldImageWide        Field = "image_wide"
	FieldNotes            Field = "notes"
	FieldPublisher        Field = "publisher"
	FieldPlatform         Field = "platform"
	FieldURL              Field = "url"
	FieldMetacriticURL    Field = "metacritic_url"
	FieldAgeRating        Field = "age_rating"
	FieldOwnership        Field = "ownership"
	FieldSKU              Field = "sku"
	FieldNSUID            Field = "nsuid"
	FieldAddedAt          Field = "added_at"
	FieldFlags            Field = "flags"
	FieldSources          Field = "sources"
)

// FieldPolicy binds a field to the policy that resolves its conflicts.
type FieldPolicy struct {
	Field  Field  `json:"field" yaml:"field"`
	Policy Policy `json:"policy" yaml:"policy"`
}

// DefaultPolicies is the standard policy table. Fields not listed keep
// the value of the first record for their key.
func DefaultPolicies() []FieldPolicy {
	return []FieldPolicy{
		{FieldTitle, FirstNonEmpty},
		{FieldType, FirstNonEmpty},
		{FieldTags, Union},
		{FieldPlayersMin, FirstNonEmpty},
		{FieldPlayersMax, FirstNonEmpty},
		{FieldRegions, Union},
		{FieldPrices, FreshestPerRegion},
		{FieldMetascore, FirstNonEmpty},
		{FieldUserscore, FirstNonEmpty},
		{FieldUserscoreReviews, FirstNonEmpty},
		{FieldPopularity, FirstNonEmpty},
		{FieldRatingSignals, FirstNonEmpty},
		{FieldRelease, EarliestRelease},
		{FieldImageSquare, FirstNonEmpty},
		{FieldImageWide, FirstNonEmpty},
		{FieldNotes, FirstNonEmpty},
		{FieldPublisher, FirstNonEmpty},
		{FieldPlatform, FirstNonEmpty},
		{FieldURL, FirstNonEmpty},
		{FieldMetacriticURL, FirstNonEmpty},
		{FieldAgeRating, FirstNonEmpty},
		{FieldOwnership, FirstNonEmpty},
		{FieldSKU, FirstNonEmpty},
		{FieldNSUID, FirstNonEmpty},
		{FieldAddedAt, FirstNonEmpty},
		{FieldFlags, AnyTrue},
		{FieldSources, Union},
	}
}

// ParsePolicy accepts a policy name.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case FirstNonEmpty, Union, AnyTrue, EarliestRelease, FreshestPerRegion, LastNonEmpty:
		return p, nil
	}
	return "", fmt.Errorf("unknown merge policy %q", s)
}

// slot is the set of operations a field supports. A policy can only be
// bound to a field whose slot provides the operations it needs.
type slot struct {
	empty   func(e *catalog.Entity) bool
	take    func(dst, src *catalog.Entity)
	union   func(dst, src *catalog.Entity)
	or      func(dst, src *catalog.Entity)
	earlier func(a, b *catalog.Entity) bool
	overlay func(dst, src *catalog.Entity)
}

// apply runs policy p on dst with src and reports whether dst changed.
func (s slot) apply(p Policy, dst, src *catalog.Entity) bool {
	switch p {
	case FirstNonEmpty:
		if s.empty(dst) && !s.empty(src) {
			s.take(dst, src)
			return true
		}
	case LastNonEmpty:
		if !s.empty(src) {
			s.take(dst, src)
			return true
		}
	case EarliestRelease:
		if s.empty(src) {
			return false
		}
		if s.empty(dst) || s.earlier(src, dst) {
			s.take(dst, src)
			return true
		}
	case Union:
		s.union(dst, src)
		return true
	case AnyTrue:
		s.or(dst, src)
		return true
	case FreshestPerRegion:
		if !s.empty(src) {
			s.overlay(dst, src)
			return true
		}
	}
	return false
}

// supports reports whether the slot has the operations policy p needs.
func (s slot) supports(p Policy) bool {
	switch p {
	case FirstNonEmpty, LastNonEmpty:
		return s.empty != nil && s.take != nil
	case EarliestRelease:
		return s.empty != nil && s.take != nil && s.earlier != nil
	case Union:
		return s.union != nil
	case AnyTrue:
		return s.or != nil
	case FreshestPerRegion:
		return s.empty != nil && s.overlay != nil
	}
	return false
}

func stringSlot(ref func(*catalog.Entity) *string) slot {
	return slot{
		empty: func(e *catalog.Entity) bool { return strings.TrimSpace(*ref(e)) == "" },
		take:  func(dst, src *catalog.Entity) { *ref(dst) = *ref(src) },
	}
}

func ptrSlot[T any](ref func(*catalog.Entity) **T) slot {
	return slot{
		empty: func(e *catalog.Entity) bool { return *ref(e) == nil },
		take: func(dst, src *catalog.Entity) {
			v := **ref(src)
			*ref(dst) = &v
		},
	}
}

func setSlot(ref func(*catalog.Entity) *[]string, fold func(string) string) slot {
	return slot{
		union: func(dst, src *catalog.Entity) {
			*ref(dst) = unionStrings(*ref(dst), *ref(src), fold)
		},
	}
}

func unionStrings(dst, src []string, fold func(string) string) []string {
	out := make([]string, 0, len(dst)+len(src))
	seen := make(map[string]struct{}, len(dst)+len(src))
	for _, list := range [][]string{dst, src} {
		for _, s := range list {
			k := fold(s)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func lowerFold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
func upperFold(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// slots maps every mergeable field to its operations.
var slots = map[Field]slot{
	FieldTitle: {
		empty: func(e *catalog.Entity) bool {
			return strings.TrimSpace(e.Title) == "" || e.Defaulted.Has(catalog.DefaultTitle)
		},
		take: func(dst, src *catalog.Entity) {
			dst.Title = src.Title
			dst.Defaulted = dst.Defaulted&^catalog.DefaultTitle | src.Defaulted&catalog.DefaultTitle
		},
	},
	FieldType: {
		empty: func(e *catalog.Entity) bool { return e.Type == "" || e.Defaulted.Has(catalog.DefaultType) },
		take: func(dst, src *catalog.Entity) {
			dst.Type = src.Type
			dst.Defaulted = dst.Defaulted&^catalog.DefaultType | src.Defaulted&catalog.DefaultType
		},
	},
	FieldTags:             setSlot(func(e *catalog.Entity) *[]string { return &e.Tags }, lowerFold),
	FieldRegions:          setSlot(func(e *catalog.Entity) *[]string { return &e.Regions }, upperFold),
	FieldSources:          setSlot(func(e *catalog.Entity) *[]string { return &e.Sources }, lowerFold),
	FieldPlayersMin:       ptrSlot(func(e *catalog.Entity) **int { return &e.PlayersMin }),
	FieldPlayersMax:       ptrSlot(func(e *catalog.Entity) **int { return &e.PlayersMax }),
	FieldMetascore:        ptrSlot(func(e *catalog.Entity) **float64 { return &e.Metascore }),
	FieldUserscore:        ptrSlot(func(e *catalog.Entity) **float64 { return &e.Userscore }),
	FieldUserscoreReviews: ptrSlot(func(e *catalog.Entity) **float64 { return &e.UserscoreReviews }),
	FieldPopularity: {
		empty: func(e *catalog.Entity) bool { return e.Popularity == nil },
		take: func(dst, src *catalog.Entity) {
			dst.Popularity = catalog.Ptr(*src.Popularity)
			dst.PopularityRank = nil
			if src.PopularityRank != nil {
				dst.PopularityRank = catalog.Ptr(*src.PopularityRank)
			}
		},
	},
	FieldRatingSignals: {
		empty: func(e *catalog.Entity) bool {
			return e.TotalRatingCount == nil && e.RatingCount == nil && e.AggregatedRatingCount == nil && e.Hypes == nil
		},
		take: func(dst, src *catalog.Entity) {
			c := src.Clone()
			dst.TotalRatingCount = c.TotalRatingCount
			dst.RatingCount = c.RatingCount
			dst.AggregatedRatingCount = c.AggregatedRatingCount
			dst.Hypes = c.Hypes
		},
	},
	FieldRelease: {
		empty: func(e *catalog.Entity) bool { return e.ReleaseTimestamp == nil },
		take: func(dst, src *catalog.Entity) {
			ts := *src.ReleaseTimestamp
			dst.ReleaseTimestamp = &ts
			dst.ReleaseDate = src.ReleaseDate
		},
		earlier: func(a, b *catalog.Entity) bool { return *a.ReleaseTimestamp < *b.ReleaseTimestamp },
	},
	FieldPrices: {
		empty: func(e *catalog.Entity) bool { return e.Prices.Len() == 0 },
		take:  func(dst, src *catalog.Entity) { dst.Prices = src.Prices.Clone() },
		overlay: func(dst, src *catalog.Entity) {
			if dst.Prices == nil {
				dst.Prices = catalog.NewPrices()
			}
			fresh := src.Prices.Clone()
			for _, region := range fresh.Regions() {
				entry, _ := fresh.Get(region)
				dst.Prices.Set(region, entry)
			}
		},
	},
	FieldImageSquare:   stringSlot(func(e *catalog.Entity) *string { return &e.ImageSquare }),
	FieldImageWide:     stringSlot(func(e *catalog.Entity) *string { return &e.ImageWide }),
	FieldNotes:         stringSlot(func(e *catalog.Entity) *string { return &e.Notes }),
	FieldPublisher:     stringSlot(func(e *catalog.Entity) *string { return &e.Publisher }),
	FieldPlatform:      stringSlot(func(e *catalog.Entity) *string { return &e.Platform }),
	FieldURL:           stringSlot(func(e *catalog.Entity) *string { return &e.URL }),
	FieldMetacriticURL: stringSlot(func(e *catalog.Entity) *string { return &e.MetacriticURL }),
	FieldAgeRating:     stringSlot(func(e *catalog.Entity) *string { return &e.AgeRating }),
	FieldOwnership:     stringSlot(func(e *catalog.Entity) *string { return &e.Ownership }),
	FieldSKU:           stringSlot(func(e *catalog.Entity) *string { return &e.SKU }),
	FieldNSUID:         stringSlot(func(e *catalog.Entity) *string { return &e.NSUID }),
	FieldAddedAt:       stringSlot(func(e *catalog.Entity) *string { return &e.AddedAt }),
	FieldFlags: {
		or: func(dst, src *catalog.Entity) {
			dst.IsDemo = dst.IsDemo || src.IsDemo
			dst.IsCloud = dst.IsCloud || src.IsCloud
			dst.IsNSO = dst.IsNSO || src.IsNSO
		},
	},
}
