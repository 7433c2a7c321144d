package catalog

import "strings"

// Type classifies a title.
type Type string

// Title types.
const (
	TypeGame Type = "game"
	TypeApp  Type = "app"
	TypeDemo Type = "demo"
)

// ParseType accepts the three known types, case-insensitively.
func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeGame:
		return TypeGame, true
	case TypeApp:
		return TypeApp, true
	case TypeDemo:
		return TypeDemo, true
	}
	return "", false
}

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }

// Defaults marks fields that normalization filled in because the source
// record had no value for them.
type Defaults uint8

// Defaultable fields.
const (
	DefaultTitle Defaults = 1 << iota
	DefaultType
)

// Has reports whether every field in d is marked.
func (d Defaults) Has(f Defaults) bool { return d&f == f }

// Entity is one source record after canonicalization. Every field is
// present; unknown values are nil or empty. JSON names line up with the
// canonicalizer's aliases so a written entity normalizes back to itself.
type Entity struct {
	Title    string   `json:"title"`
	MatchKey string   `json:"key"`
	Type     Type     `json:"type"`
	Tags     []string `json:"tags"`

	PlayersMin *int `json:"players_min"`
	PlayersMax *int `json:"players_max"`

	Regions []string `json:"regions"`
	Prices  *Prices  `json:"prices"`

	Metascore        *float64 `json:"metascore"`
	Userscore        *float64 `json:"userscore"`
	UserscoreReviews *float64 `json:"userscore_reviews"`

	Popularity     *float64 `json:"popularity"`
	PopularityRank *float64 `json:"popularity_rank,omitempty"`

	// Rating signals used as popularity fallbacks.
	TotalRatingCount      *float64 `json:"total_rating_count,omitempty"`
	RatingCount           *float64 `json:"rating_count,omitempty"`
	AggregatedRatingCount *float64 `json:"aggregated_rating_count,omitempty"`
	Hypes                 *float64 `json:"hypes,omitempty"`

	ReleaseTimestamp *int64 `json:"release_timestamp"` // epoch milliseconds
	ReleaseDate      string `json:"release_date,omitempty"`

	ImageSquare string `json:"image_square,omitempty"`
	ImageWide   string `json:"image_wide,omitempty"`

	Notes         string `json:"notes,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	Platform      string `json:"platform,omitempty"`
	URL           string `json:"url,omitempty"`
	MetacriticURL string `json:"metacritic_url,omitempty"`
	AgeRating     string `json:"age_rating,omitempty"`
	Ownership     string `json:"ownership,omitempty"`
	SKU           string `json:"sku,omitempty"`
	NSUID         string `json:"nsuid,omitempty"`
	AddedAt       string `json:"added_at,omitempty"`

	IsDemo  bool `json:"is_demo,omitempty"`
	IsCloud bool `json:"is_cloud_version,omitempty"`
	IsNSO   bool `json:"is_nso_app,omitempty"`

	Sources []string `json:"sources"`

	// Defaulted is not written; a document read back treats every value as
	// supplied.
	Defaulted Defaults `json:"-"`
}

// HasTag reports whether the entity carries tag (already lower-cased).
func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (e Entity) Clone() Entity {
	out := e
	out.Tags = cloneStrings(e.Tags)
	out.Regions = cloneStrings(e.Regions)
	out.Sources = cloneStrings(e.Sources)
	out.Prices = e.Prices.Clone()
	out.PlayersMin = cloneInt(e.PlayersMin)
	out.PlayersMax = cloneInt(e.PlayersMax)
	out.Metascore = cloneFloat(e.Metascore)
	out.Userscore = cloneFloat(e.Userscore)
	out.UserscoreReviews = cloneFloat(e.UserscoreReviews)
	out.Popularity = cloneFloat(e.Popularity)
	out.PopularityRank = cloneFloat(e.PopularityRank)
	out.TotalRatingCount = cloneFloat(e.TotalRatingCount)
	out.RatingCount = cloneFloat(e.RatingCount)
	out.AggregatedRatingCount = cloneFloat(e.AggregatedRatingCount)
	out.Hypes = cloneFloat(e.Hypes)
	if e.ReleaseTimestamp != nil {
		ts := *e.ReleaseTimestamp
		out.ReleaseTimestamp = &ts
	}
	return out
}

// CanonicalEntity is the single merged record for one match key, with the
// best-price summary attached.
type CanonicalEntity struct {
	Entity `yaml:",inline"`

	BestPrice    *float64 `json:"best_price"`
	BestDiscount *float64 `json:"best_discount"`
	BestCurrency *string  `json:"best_currency"`
}

// Clone returns a deep copy.
func (c CanonicalEntity) Clone() CanonicalEntity {
	out := CanonicalEntity{Entity: c.Entity.Clone()}
	out.BestPrice = cloneFloat(c.BestPrice)
	out.BestDiscount = cloneFloat(c.BestDiscount)
	if c.BestCurrency != nil {
		cur := *c.BestCurrency
		out.BestCurrency = &cur
	}
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
