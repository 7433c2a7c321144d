package view

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/view"
)

// Flags holds the view command flags.
type Flags struct {
	Catalog      string
	Search       string
	Types        []string
	Region       string
	Tags         []string
	Players      string
	DiscountMin  float64
	DiscountMax  float64
	MetascoreMin float64
	MetascoreMax float64
	Only         []string
	Matches      bool
	Where        string
	Sort         string
	Limit        int
	Summary      bool
	Facets       bool
}

func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}
	f := cmd.Flags()
	f.StringVar(&flags.Catalog, "catalog", "", "catalog document to view (default: catalog_out)")
	f.StringVarP(&flags.Search, "search", "s", "", "case-insensitive title substring")
	f.StringSliceVar(&flags.Types, "type", nil, "title types: game, app, demo")
	f.StringVar(&flags.Region, "region", "", "region with a price (all for any)")
	f.StringSliceVar(&flags.Tags, "tag", nil, "tags, any of")
	f.StringVar(&flags.Players, "players", "", "players: any, 2+, 4+, co-op, solo")
	f.Float64Var(&flags.DiscountMin, "discount-min", 0, "minimum best discount percent")
	f.Float64Var(&flags.DiscountMax, "discount-max", 0, "maximum best discount percent")
	f.Float64Var(&flags.MetascoreMin, "metascore-min", 0, "minimum critic score")
	f.Float64Var(&flags.MetascoreMax, "metascore-max", 0, "maximum critic score")
	f.StringSliceVar(&flags.Only, "only", nil, "highlights, any of: owned, wishlist, good-match")
	f.BoolVar(&flags.Matches, "matches", false, "only titles sharing tags with owned games")
	f.StringVar(&flags.Where, "where", "", "CEL expression over item fields")
	f.StringVar(&flags.Sort, "sort", "", "sort key: title, metascore, userscore, discount, popularity, players, match")
	f.IntVarP(&flags.Limit, "limit", "l", 0, "maximum results (0 for all)")
	f.BoolVar(&flags.Summary, "summary", false, "print counts instead of titles")
	f.BoolVar(&flags.Facets, "facets", false, "print tag counts instead of titles")
	cmd.MarkFlagsMutuallyExclusive("summary", "facets")

	fixed := func(name string, values ...string) {
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
	fixed("type", string(catalog.TypeGame), string(catalog.TypeApp), string(catalog.TypeDemo))
	fixed("players", string(view.PlayersAny), string(view.PlayersTwoPlus), string(view.PlayersFourPlus), string(view.PlayersCoop), string(view.PlayersSolo))
	fixed("only", string(view.HighlightOwned), string(view.HighlightWishlist), string(view.HighlightGoodMatch))
	fixed("sort", string(view.SortTitle), string(view.SortMetascore), string(view.SortUserscore),
		string(view.SortDiscount), string(view.SortPopularity), string(view.SortPlayers), string(view.SortMatch))
	return flags
}

// query converts the flags into a view query. Range flags apply only when
// given.
func (f *Flags) query(cmd *cobra.Command) (view.Query, error) {
	q := view.Query{
		Search:      f.Search,
		Region:      f.Region,
		Tags:        f.Tags,
		MatchesOnly: f.Matches,
		Where:       f.Where,
		Limit:       f.Limit,
	}

	for _, s := range f.Types {
		t, ok := catalog.ParseType(s)
		if !ok {
			return q, &errors.ValidationError{Field: "type", Value: s, Message: "must be game, app or demo"}
		}
		q.Types = append(q.Types, t)
	}
	for _, s := range f.Only {
		h, err := view.ParseHighlight(s)
		if err != nil {
			return q, &errors.ValidationError{Field: "only", Value: s, Message: err.Error()}
		}
		q.Highlights = append(q.Highlights, h)
	}

	players, err := view.ParsePlayersFilter(f.Players)
	if err != nil {
		return q, &errors.ValidationError{Field: "players", Value: f.Players, Message: err.Error()}
	}
	q.Players = players
	sortKey, err := view.ParseSortKey(f.Sort)
	if err != nil {
		return q, &errors.ValidationError{Field: "sort", Value: f.Sort, Message: err.Error()}
	}
	q.Sort = sortKey

	changed := cmd.Flags().Changed
	bound := func(name string, v float64) *float64 {
		if !changed(name) {
			return nil
		}
		return &v
	}
	q.DiscountMin = bound("discount-min", f.DiscountMin)
	q.DiscountMax = bound("discount-max", f.DiscountMax)
	q.MetascoreMin = bound("metascore-min", f.MetascoreMin)
	q.MetascoreMax = bound("metascore-max", f.MetascoreMax)
	return q, nil
}
