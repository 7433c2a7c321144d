// Package canonicalize turns arbitrarily shaped source records into
// catalog.Entity values.
//
// Normalize is total: it never fails and never panics on unexpected
// shapes. Each field is resolved by trying the aliases in aliases.go in
// priority order; a value that is missing or does not coerce becomes nil.
package canonicalize

import (
	"regexp"
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/identity"
	"github.com/agentstation/playmap/pkg/popularity"
	"github.com/agentstation/playmap/pkg/pricing"
)

// UntitledTitle is the display title for records without one.
const UntitledTitle = "Untitled"

var (
	demoTitleRe = regexp.MustCompile(`(?i)demo`)
	appTitleRe  = regexp.MustCompile(`(?i)nintendo switch online|youtube`)
)

// Normalize converts one raw record into an entity. The match key comes
// from an explicit identifier when present, else from the resolved title;
// a record with neither has an empty key.
func Normalize(raw *catalog.RawRecord) catalog.Entity {
	if raw == nil {
		raw = catalog.NewRawRecord()
	}

	title := firstString(raw, titleKeys...)
	key := identity.MatchKey(firstString(raw, identifierKeys...))
	if key == "" {
		key = identity.MatchKey(title)
	}
	var defaulted catalog.Defaults
	if title == "" {
		title = UntitledTitle
		defaulted |= catalog.DefaultTitle
	}

	e := catalog.Entity{
		Title:    title,
		MatchKey: key,
		IsDemo:   anyFlag(raw, demoFlagKeys),
		IsCloud:  anyFlag(raw, cloudFlagKeys),
		IsNSO:    anyFlag(raw, nsoFlagKeys),
	}

	e.Tags = tags(raw, e)
	var inferred bool
	e.Type, inferred = entityType(raw, e)
	if !inferred {
		defaulted |= catalog.DefaultType
	}
	e.Defaulted = defaulted
	e.PlayersMin, e.PlayersMax = players(raw, e.Tags)

	e.Regions = regions(raw)
	e.Prices = prices(raw, e.Regions)
	if len(e.Regions) == 0 && e.Prices != nil {
		e.Regions = e.Prices.Regions()
	}

	e.Metascore = firstNumber(raw, metascoreKeys...)
	e.Userscore = firstNumber(raw, userscoreKeys...)
	e.UserscoreReviews = firstNumber(raw, userscoreReviewKeys...)

	e.Popularity = firstNumber(raw, popularityScoreKeys...)
	e.PopularityRank = firstNumber(raw, popularityRankKeys...)
	if e.Popularity == nil && e.PopularityRank != nil {
		e.Popularity = catalog.Ptr(popularity.FromRank(*e.PopularityRank))
	}
	e.TotalRatingCount = firstNumber(raw, totalRatingCountKeys...)
	e.RatingCount = firstNumber(raw, ratingCountKeys...)
	e.AggregatedRatingCount = firstNumber(raw, aggRatingCountKeys...)
	e.Hypes = firstNumber(raw, hypesKeys...)

	e.ReleaseDate, e.ReleaseTimestamp = release(raw)

	e.ImageSquare = firstString(raw, imageSquareKeys...)
	e.ImageWide = firstString(raw, imageWideKeys...)
	e.URL = firstString(raw, storeURLKeys...)
	e.MetacriticURL = firstString(raw, metacriticURLKeys...)
	e.Notes = firstString(raw, "notes")
	e.Publisher = strings.Join(stringList(raw.Get("publisher"), false), ", ")
	e.Platform = firstString(raw, "platform")
	e.AgeRating = firstString(raw, "age_rating")
	e.Ownership = lower(firstString(raw, "ownership"))
	e.SKU = firstString(raw, "sku")
	e.AddedAt = firstString(raw, addedAtKeys...)
	if v, ok := first(raw, nsuidKeys...); ok {
		e.NSUID = strings.Join(stringList(v, false), ",")
	}

	e.Sources = sources(raw)
	return e
}

// NormalizeAll normalizes a batch and drops records whose identity folds
// to the empty string. It returns the kept entities and the drop count.
func NormalizeAll(records []*catalog.RawRecord) ([]catalog.Entity, int) {
	out := make([]catalog.Entity, 0, len(records))
	dropped := 0
	for _, rec := range records {
		e := Normalize(rec)
		if e.MatchKey == "" {
			dropped++
			continue
		}
		out = append(out, e)
	}
	return out, dropped
}

func anyFlag(raw *catalog.RawRecord, keys []string) bool {
	for _, k := range keys {
		if truthy(raw.Get(k)) {
			return true
		}
	}
	return false
}

func tags(raw *catalog.RawRecord, e catalog.Entity) []string {
	out := []string{}
	for _, k := range tagKeys {
		for _, t := range stringList(raw.Get(k), true) {
			out = appendUnique(out, lower, lower(t))
		}
	}
	if e.IsCloud {
		out = appendUnique(out, lower, "cloud")
	}
	if e.IsDemo {
		out = appendUnique(out, lower, "demo")
	}
	if e.IsNSO {
		out = appendUnique(out, lower, "nso")
	}
	return out
}

// entityType resolves the type and reports whether it came from the record
// (an explicit type or a title heuristic) rather than the game default.
func entityType(raw *catalog.RawRecord, e catalog.Entity) (catalog.Type, bool) {
	if t, ok := catalog.ParseType(firstString(raw, "type")); ok {
		return t, true
	}
	switch {
	case e.IsDemo || demoTitleRe.MatchString(e.Title):
		return catalog.TypeDemo, true
	case e.IsNSO || appTitleRe.MatchString(e.Title):
		return catalog.TypeApp, true
	default:
		return catalog.TypeGame, false
	}
}

func regions(raw *catalog.RawRecord) []string {
	out := []string{}
	list := stringList(raw.Get("regions"), false)
	if len(list) == 0 {
		list = stringList(raw.Get("region"), false)
	}
	for _, r := range list {
		out = appendUnique(out, upper, upper(r))
	}
	return out
}

func sources(raw *catalog.RawRecord) []string {
	out := []string{}
	list := stringList(raw.Get("sources"), false)
	if len(list) == 0 {
		list = stringList(raw.Get("source"), false)
	}
	return appendUnique(out, lower, list...)
}

// prices reads a structured per-region map, or fabricates a one-entry map
// on the primary region from flat price fields.
func prices(raw *catalog.RawRecord, regs []string) *catalog.Prices {
	if structured, ok := raw.Get("prices").(*catalog.RawRecord); ok {
		out := catalog.NewPrices()
		for _, region := range structured.Keys() {
			entry, ok := structured.Get(region).(*catalog.RawRecord)
			if !ok {
				continue
			}
			code := upper(region)
			currency := firstString(entry, "currency")
			if currency == "" {
				currency = pricing.DefaultCurrency(code)
			}
			out.Set(code, catalog.PriceEntry{
				Price:    firstNumber(entry, entryPriceKeys...),
				Discount: scaleDiscount(firstNumber(entry, entryDiscountKey...)),
				Currency: currency,
				URL:      firstString(entry, storeURLKeys...),
			})
		}
		if out.Len() > 0 {
			return out
		}
	}

	price := firstNumber(raw, flatPriceKeys...)
	primary := upper(firstString(raw, "region"))
	if primary == "" && len(regs) > 0 {
		primary = regs[0]
	}
	if price == nil || primary == "" {
		return nil
	}

	currency := firstString(raw, flatCurrencyKeys...)
	if currency == "" {
		currency = impliedCurrency(regs)
	}
	if currency == "" {
		currency = pricing.DefaultCurrency(primary)
	}

	out := catalog.NewPrices()
	out.Set(primary, catalog.PriceEntry{
		Price:    price,
		Discount: scaleDiscount(firstNumber(raw, flatDiscountKeys...)),
		Currency: currency,
		URL:      firstString(raw, storeURLKeys...),
	})
	return out
}

// impliedCurrency prefers UK over US when a record lists both.
func impliedCurrency(regs []string) string {
	for _, want := range []string{"UK", "US"} {
		for _, r := range regs {
			if r == want {
				return pricing.DefaultCurrency(r)
			}
		}
	}
	return ""
}

// scaleDiscount turns fractional discounts in (0,1] into percentages.
func scaleDiscount(d *float64) *float64 {
	if d != nil && *d > 0 && *d <= 1 {
		return catalog.Ptr(*d * 100)
	}
	return d
}
