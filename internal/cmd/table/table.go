// Package table converts catalog values into rows for CLI tables.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/playmap/internal/store"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/popularity"
	"github.com/agentstation/playmap/pkg/view"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// TitlesToTableData converts catalog entries to table format.
func TitlesToTableData(items []catalog.CanonicalEntity, wide bool) Data {
	headers := []string{"Title", "Type", "Metascore", "Popularity", "Best Price", "Discount", "Regions"}
	align := []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignLeft}
	if wide {
		headers = append(headers, "Players", "Release", "Tags", "Key")
		align = append(align, AlignCenter, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		rows = append(rows, titleRow(&items[i], wide))
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ItemsToTableData converts a composed view to table format. The Flags
// column marks owned (O), wished (W), upcoming (U), match (M) and deal ($).
func ItemsToTableData(items []view.Item, wide bool) Data {
	headers := []string{"Title", "Flags", "Match", "Metascore", "Best Price", "Discount"}
	align := []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Players", "Release", "Tags", "Ownership")
		align = append(align, AlignCenter, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		it := &items[i]
		row := []string{
			it.Title,
			Flags(it),
			strconv.Itoa(it.MatchScore),
			FormatScore(it.Metascore),
			FormatPrice(it.BestPrice, it.BestCurrency),
			FormatDiscount(it.BestDiscount),
		}
		if wide {
			row = append(row,
				FormatPlayers(it.PlayersMin, it.PlayersMax),
				FormatRelease(it.ReleaseTimestamp),
				strings.Join(it.Tags, ", "),
				dash(it.Ownership),
			)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

func titleRow(e *catalog.CanonicalEntity, wide bool) []string {
	row := []string{
		e.Title,
		dash(e.Type.String()),
		FormatScore(e.Metascore),
		popularity.Label(&e.Entity),
		FormatPrice(e.BestPrice, e.BestCurrency),
		FormatDiscount(e.BestDiscount),
		strings.Join(e.Regions, ","),
	}
	if wide {
		row = append(row,
			FormatPlayers(e.PlayersMin, e.PlayersMax),
			FormatRelease(e.ReleaseTimestamp),
			strings.Join(e.Tags, ", "),
			e.MatchKey,
		)
	}
	return row
}

// StatsToTableData renders document metadata as a property table.
func StatsToTableData(meta catalog.Metadata) Data {
	s := meta.Stats
	f := meta.Filters
	props := []struct {
		key   string
		value string
	}{
		{"generated", formatTime(meta.Generated.Time)},
		{"version", dash(meta.Version)},
		{"run_id", dash(meta.RunID)},
		{"fingerprint", shortHash(meta.Fingerprint)},
		{"sources", dash(strings.Join(meta.Sources, ", "))},
		{"total_raw", FormatNumber(int64(s.TotalRaw))},
		{"total_kept", FormatNumber(int64(s.TotalKept))},
		{"avg_metascore", FormatScore(s.AvgMetascore)},
		{"avg_popularity", FormatScore(s.AvgPopularity)},
		{"popularity_median", FormatScore(s.PopularityMedian)},
		{"p75_popularity", FormatScore(s.P75Popularity)},
		{"popularity_max", FormatScore(s.PopularityMax)},
		{"metascore_min", formatFloat(f.MetascoreMin)},
		{"popularity_min", FormatScore(f.PopularityMin)},
		{"recent_months", strconv.Itoa(f.RecentMonths)},
		{"require_release_date", strconv.FormatBool(f.RequireReleaseDate)},
	}
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{HeaderName(p.key), p.value})
	}
	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// HeaderName turns a snake_case key into a title-cased label.
func HeaderName(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// SummaryToTableData renders view counts as a property table.
func SummaryToTableData(s view.Summary) Data {
	rows := [][]string{
		{"Total", FormatNumber(int64(s.Total))},
		{"Owned", FormatNumber(int64(s.Owned))},
		{"Wishlist", FormatNumber(int64(s.Wishlist))},
		{"Unowned", FormatNumber(int64(s.Unowned))},
		{"Deals", FormatNumber(int64(s.Deals))},
		{"Matches", FormatNumber(int64(s.Matches))},
	}
	return Data{
		Headers:         []string{"Count", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// TagCountsToTableData renders tag facets.
func TagCountsToTableData(counts []view.TagCount) Data {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Tag, FormatNumber(int64(c.Count))})
	}
	return Data{
		Headers:         []string{"Tag", "Titles"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// SnapshotsToTableData converts recorded snapshots to table format.
func SnapshotsToTableData(snaps []store.Snapshot) Data {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			formatTime(s.Generated),
			FormatNumber(int64(s.TotalRaw)),
			FormatNumber(int64(s.TotalKept)),
			shortHash(s.Fingerprint),
			s.RunID,
		})
	}
	return Data{
		Headers:         []string{"ID", "Generated", "Raw", "Kept", "Fingerprint", "Run"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignRight, AlignRight, AlignLeft, AlignLeft},
	}
}

// Flags renders the derived view flags compactly.
func Flags(it *view.Item) string {
	var b strings.Builder
	for _, f := range []struct {
		on   bool
		mark byte
	}{
		{it.IsOwned, 'O'},
		{it.IsWished, 'W'},
		{it.IsUpcoming, 'U'},
		{it.IsMatch, 'M'},
		{it.IsGoodDeal, '$'},
	} {
		if f.on {
			b.WriteByte(f.mark)
		}
	}
	return dash(b.String())
}

// FormatScore formats an optional score.
func FormatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

// FormatPrice formats an optional price with its currency.
func FormatPrice(price *float64, currency *string) string {
	if price == nil {
		return "-"
	}
	s := fmt.Sprintf("%.2f", *price)
	if currency != nil && *currency != "" {
		s += " " + *currency
	}
	return s
}

// FormatDiscount formats an optional discount percentage.
func FormatDiscount(d *float64) string {
	if d == nil || *d == 0 {
		return "-"
	}
	return fmt.Sprintf("-%s%%", formatFloat(*d))
}

// FormatPlayers formats a player range.
func FormatPlayers(minP, maxP *int) string {
	switch {
	case minP == nil && maxP == nil:
		return "-"
	case minP == nil:
		return fmt.Sprintf("1-%d", *maxP)
	case maxP == nil || *maxP == *minP:
		return strconv.Itoa(*minP)
	}
	return fmt.Sprintf("%d-%d", *minP, *maxP)
}

// FormatRelease formats an epoch-millisecond release date.
func FormatRelease(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return time.UnixMilli(*ms).UTC().Format("2006-01-02")
}

// FormatNumber formats large numbers with comma separators.
func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")
	if len(str) <= 3 {
		if neg {
			return "-" + str
		}
		return str
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return dash(h)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
