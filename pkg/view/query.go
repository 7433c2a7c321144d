package view

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/logging"
)

// PlayersFilter narrows items by player count.
type PlayersFilter string

// Player filters.
const (
	PlayersAny      PlayersFilter = "any"
	PlayersTwoPlus  PlayersFilter = "2+"
	PlayersFourPlus PlayersFilter = "4+"
	PlayersCoop     PlayersFilter = "co-op"
	PlayersSolo     PlayersFilter = "solo"
)

// ParsePlayersFilter accepts a player filter name. Empty means any.
func ParsePlayersFilter(s string) (PlayersFilter, error) {
	switch p := PlayersFilter(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PlayersAny:
		return PlayersAny, nil
	case PlayersTwoPlus, PlayersFourPlus, PlayersCoop, PlayersSolo:
		return p, nil
	}
	return "", fmt.Errorf("unknown players filter %q", s)
}

// Highlight selects items by their derived flags.
type Highlight string

// Highlights.
const (
	HighlightOwned     Highlight = "owned"
	HighlightWishlist  Highlight = "wishlist"
	HighlightGoodMatch Highlight = "good-match"
)

// ParseHighlight accepts a highlight name.
func ParseHighlight(s string) (Highlight, error) {
	switch h := Highlight(strings.ToLower(strings.TrimSpace(s))); h {
	case HighlightOwned, HighlightWishlist, HighlightGoodMatch:
		return h, nil
	}
	return "", fmt.Errorf("unknown highlight %q", s)
}

// SortKey orders query results.
type SortKey string

// Sort keys. Every key but title sorts descending with missing values last
// and breaks ties by title.
const (
	SortTitle      SortKey = "title"
	SortMetascore  SortKey = "metascore"
	SortUserscore  SortKey = "userscore"
	SortDiscount   SortKey = "discount"
	SortPopularity SortKey = "popularity"
	SortPlayers    SortKey = "players"
	SortMatch      SortKey = "match"
)

// ParseSortKey accepts a sort key name. Empty means title.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortTitle, nil
	case SortTitle, SortMetascore, SortUserscore, SortDiscount, SortPopularity, SortPlayers, SortMatch:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

var (
	coopTags = []string{"co-op", "coop", "co op", "local-coop", "multiplayer"}
	soloTags = []string{"solo", "singleplayer"}
)

// Query filters and orders a composed view. Zero values disable each
// criterion.
type Query struct {
	Search       string
	Types        []catalog.Type
	Region       string
	Tags         []string // any-of
	DiscountMin  *float64
	DiscountMax  *float64
	MetascoreMin *float64
	MetascoreMax *float64
	Players      PlayersFilter
	Highlights   []Highlight // any-of
	MatchesOnly  bool
	// Where is a CEL expression over the item; see exprVariables.
	Where string
	Sort  SortKey
	Limit int
}

// Validate compiles Where and checks the enumerated fields.
func (q Query) Validate() error {
	if _, err := ParsePlayersFilter(string(q.Players)); err != nil {
		return err
	}
	if _, err := ParseSortKey(string(q.Sort)); err != nil {
		return err
	}
	for _, t := range q.Types {
		if parsed, ok := catalog.ParseType(string(t)); !ok || parsed != t {
			return errors.NewValidationError("types", string(t), "must be one of game, app, demo")
		}
	}
	for _, h := range q.Highlights {
		if parsed, err := ParseHighlight(string(h)); err != nil || parsed != h {
			return errors.NewValidationError("highlights", string(h), "must be one of owned, wishlist, good-match")
		}
	}
	if q.Where == "" {
		return nil
	}
	ev, err := sharedEvaluator()
	if err != nil {
		return err
	}
	_, err = ev.Compile(q.Where)
	return err
}

// Run returns the items matching q, sorted and limited. Items for which the
// Where expression fails to evaluate are excluded.
func (q Query) Run(items []Item) ([]Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var ev *Evaluator
	if q.Where != "" {
		ev, _ = sharedEvaluator()
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	region := strings.ToUpper(strings.TrimSpace(q.Region))
	out := make([]Item, 0, len(items))
	for i := range items {
		it := &items[i]
		if !q.matches(it, search, region) {
			continue
		}
		if ev != nil {
			ok, err := ev.Match(q.Where, it)
			if err != nil {
				logging.Debug().Err(err).Str("key", it.MatchKey).Msg("where expression skipped item")
				continue
			}
			if !ok {
				continue
			}
		}
		out = append(out, *it)
	}

	Sort(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (q Query) matches(it *Item, search, region string) bool {
	if !q.highlighted(it) {
		return false
	}
	if q.MatchesOnly && !it.IsMatch {
		return false
	}
	if len(q.Types) > 0 && !containsType(q.Types, it.Type) {
		return false
	}
	if region != "" && region != "ALL" && !contains(it.Regions, region) {
		return false
	}
	if len(q.Tags) > 0 && !hasAnyTag(it, q.Tags) {
		return false
	}
	if !inRange(it.BestDiscount, q.DiscountMin, q.DiscountMax) {
		return false
	}
	if !inRange(it.Metascore, q.MetascoreMin, q.MetascoreMax) {
		return false
	}
	if !passesPlayers(it, q.Players) {
		return false
	}
	if search != "" {
		haystack := strings.ToLower(strings.Join([]string{
			it.Title, strings.Join(it.Tags, " "), it.Notes, string(it.Type), it.Ownership,
		}, " "))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}

func (q Query) highlighted(it *Item) bool {
	if len(q.Highlights) == 0 {
		return true
	}
	for _, h := range q.Highlights {
		switch {
		case h == HighlightOwned && it.IsOwned,
			h == HighlightWishlist && it.IsWished,
			h == HighlightGoodMatch && it.IsMatch:
			return true
		}
	}
	return false
}

// inRange is true when no bound is set, or v is present and within bounds.
func inRange(v, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo {
		return false
	}
	return hi == nil || *v <= *hi
}

func passesPlayers(it *Item, f PlayersFilter) bool {
	maxP, minP := it.PlayersMax, it.PlayersMin
	if maxP == nil {
		maxP = it.PlayersMin
	}
	if minP == nil {
		minP = it.PlayersMax
	}
	switch f {
	case PlayersTwoPlus:
		return maxP != nil && *maxP >= 2
	case PlayersFourPlus:
		return maxP != nil && *maxP >= 4
	case PlayersCoop:
		return hasAnyTag(it, coopTags)
	case PlayersSolo:
		return (maxP != nil && *maxP == 1) || (minP != nil && *minP == 1) || hasAnyTag(it, soloTags)
	}
	return true
}

func hasAnyTag(it *Item, tags []string) bool {
	for _, t := range tags {
		if it.HasTag(strings.ToLower(strings.TrimSpace(t))) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsType(list []catalog.Type, t catalog.Type) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// Sort orders items in place by key.
func Sort(items []Item, key SortKey) {
	col := collate.New(language.English, collate.IgnoreCase)
	byTitle := func(a, b *Item) bool { return col.CompareString(a.Title, b.Title) < 0 }

	value := sortValue(key)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if value != nil {
			va, okA := value(a)
			vb, okB := value(b)
			switch {
			case okA && !okB:
				return true
			case !okA && okB:
				return false
			case okA && okB && va != vb:
				return va > vb
			}
		}
		return byTitle(a, b)
	})
}

func sortValue(key SortKey) func(*Item) (float64, bool) {
	switch key {
	case SortMetascore:
		return func(it *Item) (float64, bool) { return floatOf(it.Metascore) }
	case SortUserscore:
		return func(it *Item) (float64, bool) { return floatOf(it.Userscore) }
	case SortDiscount:
		return func(it *Item) (float64, bool) { return floatOf(it.BestDiscount) }
	case SortPopularity:
		return func(it *Item) (float64, bool) { return floatOf(it.Popularity) }
	case SortPlayers:
		return func(it *Item) (float64, bool) {
			if it.PlayersMax == nil {
				return 0, false
			}
			return float64(*it.PlayersMax), true
		}
	case SortMatch:
		return func(it *Item) (float64, bool) { return float64(it.MatchScore), true }
	}
	return nil
}

func floatOf(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
