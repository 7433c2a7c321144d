package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/internal/cmd/table"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/provenance"
	"github.com/agentstation/playmap/pkg/view"
)

func TestFormatters(t *testing.T) {
	gbp := "GBP"
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"nil score", table.FormatScore(nil), "-"},
		{"whole score", table.FormatScore(catalog.Ptr(93.0)), "93"},
		{"fraction score", table.FormatScore(catalog.Ptr(17.083)), "17.08"},
		{"price", table.FormatPrice(catalog.Ptr(15.0), &gbp), "15.00 GBP"},
		{"price no currency", table.FormatPrice(catalog.Ptr(4.5), nil), "4.50"},
		{"no price", table.FormatPrice(nil, &gbp), "-"},
		{"discount", table.FormatDiscount(catalog.Ptr(25.0)), "-25%"},
		{"zero discount", table.FormatDiscount(catalog.Ptr(0.0)), "-"},
		{"players range", table.FormatPlayers(catalog.Ptr(1), catalog.Ptr(4)), "1-4"},
		{"players single", table.FormatPlayers(catalog.Ptr(2), catalog.Ptr(2)), "2"},
		{"players max only", table.FormatPlayers(nil, catalog.Ptr(8)), "1-8"},
		{"players none", table.FormatPlayers(nil, nil), "-"},
		{"release", table.FormatRelease(catalog.Ptr(int64(1600300800000))), "2020-09-17"},
		{"number", table.FormatNumber(1234567), "1,234,567"},
		{"negative number", table.FormatNumber(-1234), "-1,234"},
		{"small number", table.FormatNumber(999), "999"},
		{"header", table.HeaderName("p75_popularity"), "P75 Popularity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestTitlesToTableData(t *testing.T) {
	items := []catalog.CanonicalEntity{{
		Entity: catalog.Entity{
			Title:     "Hades",
			MatchKey:  "hades",
			Type:      catalog.TypeGame,
			Regions:   []string{"US", "UK"},
			Metascore: catalog.Ptr(93.0),
		},
		BestPrice: catalog.Ptr(15.0),
	}}

	data := table.TitlesToTableData(items, false)
	require.Len(t, data.Rows, 1)
	assert.Len(t, data.Rows[0], len(data.Headers))
	assert.Equal(t, []string{"Hades", "game", "93", "--", "15.00", "-", "US,UK"}, data.Rows[0])

	wide := table.TitlesToTableData(items, true)
	assert.Len(t, wide.Headers, 11)
	assert.Len(t, wide.ColumnAlignment, 11)
	assert.Equal(t, "hades", wide.Rows[0][10])
}

func TestItemsToTableData(t *testing.T) {
	items := []view.Item{{
		CanonicalEntity: catalog.CanonicalEntity{Entity: catalog.Entity{Title: "Celeste"}},
		IsWished:        true,
		IsGoodDeal:      true,
		MatchScore:      2,
	}, {
		CanonicalEntity: catalog.CanonicalEntity{Entity: catalog.Entity{Title: "Tunic"}},
	}}

	data := table.ItemsToTableData(items, false)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "W$", data.Rows[0][1])
	assert.Equal(t, "2", data.Rows[0][2])
	assert.Equal(t, "-", data.Rows[1][1])
}

func TestStatsToTableData(t *testing.T) {
	meta := catalog.Metadata{
		Version: "1.0.0",
		Stats:   catalog.Stats{TotalRaw: 1200, TotalKept: 300},
	}
	data := table.StatsToTableData(meta)
	found := map[string]string{}
	for _, row := range data.Rows {
		found[row[0]] = row[1]
	}
	assert.Equal(t, "1,200", found["Total Raw"])
	assert.Equal(t, "300", found["Total Kept"])
	assert.Equal(t, "-", found["Avg Popularity"])
	assert.Equal(t, "-", found["Generated"])
}

func TestProvenanceToTableData(t *testing.T) {
	m := provenance.Map{
		"hades:prices": {
			{Source: "store_us", Policy: "freshest_per_region", Reason: "first record"},
			{Source: "store_uk", Policy: "freshest_per_region"},
		},
		"hades:title": {{Source: "store_us", Policy: "first_non_empty"}},
	}

	data := table.ProvenanceToTableData(m, nil)
	require.Len(t, data.Rows, 3)
	assert.Equal(t, []string{"hades", "prices", "→", "store_uk", "freshest_per_region", "2", "-"}, data.Rows[0])
	assert.Equal(t, []string{"", "", "", "store_us", "freshest_per_region", "1", "first record"}, data.Rows[1])

	filtered := table.ProvenanceToTableData(m, []string{"TIT*"})
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, "title", filtered.Rows[0][1])
}

func TestSummaryAndTagCounts(t *testing.T) {
	summary := table.SummaryToTableData(view.Summary{Total: 1500, Owned: 2, Deals: 1})
	require.Len(t, summary.Rows, 6)
	assert.Equal(t, []string{"Total", "1,500"}, summary.Rows[0])
	assert.Equal(t, []string{"Deals", "1"}, summary.Rows[4])

	facets := table.TagCountsToTableData([]view.TagCount{{Tag: "roguelike", Count: 3}, {Tag: "co-op", Count: 1}})
	assert.Equal(t, []string{"Tag", "Titles"}, facets.Headers)
	assert.Equal(t, [][]string{{"roguelike", "3"}, {"co-op", "1"}}, facets.Rows)
}
