package reconcile_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/pkg/canonicalize"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/pricing"
	"github.com/agentstation/playmap/pkg/provenance"
	"github.com/agentstation/playmap/pkg/reconcile"
)

func normalize(t *testing.T, records ...string) []catalog.Entity {
	t.Helper()
	out := make([]catalog.Entity, 0, len(records))
	for _, js := range records {
		var rec catalog.RawRecord
		require.NoError(t, json.Unmarshal([]byte(js), &rec))
		out = append(out, canonicalize.Normalize(&rec))
	}
	return out
}

func TestMergeAcrossRegions(t *testing.T) {
	entities := normalize(t,
		`{"title":"Mario Kart 8","region":"US","price":59.99,"discount":0}`,
		`{"title":"mario kart 8!!","region":"UK","price":44.99,"discount":25}`,
	)

	merged := reconcile.Merge(entities)
	require.Len(t, merged, 1)
	pricing.Apply(&merged[0])

	got := merged[0]
	assert.Equal(t, "Mario Kart 8", got.Title)
	assert.Equal(t, "mariokart8", got.MatchKey)
	assert.Equal(t, []string{"US", "UK"}, got.Regions)
	require.NotNil(t, got.BestPrice)
	assert.InDelta(t, 44.99, *got.BestPrice, 1e-9)
	require.NotNil(t, got.BestDiscount)
	assert.InDelta(t, 25, *got.BestDiscount, 1e-9)
	require.NotNil(t, got.BestCurrency)
	assert.Equal(t, "GBP", *got.BestCurrency)
}

func TestMergePolicies(t *testing.T) {
	entities := normalize(t,
		`{"title":"Hades","tags":["Action"],"metascore":null,"release_date":"2020-09-17","source":"us"}`,
		`{"title":"HADES","tags":["roguelike","action"],"metascore":93,"release_date":"2018-12-06","is_cloud_version":true,"notes":"second","source":"uk"}`,
		`{"title":"hades","metascore":10,"notes":"third","source":"US"}`,
	)

	merged := reconcile.Merge(entities)
	require.Len(t, merged, 1)
	got := merged[0]

	assert.Equal(t, "Hades", got.Title)
	assert.Equal(t, []string{"action", "roguelike", "cloud"}, got.Tags)
	require.NotNil(t, got.Metascore)
	assert.Equal(t, 93.0, *got.Metascore)
	assert.Equal(t, "second", got.Notes)
	assert.True(t, got.IsCloud)
	assert.Equal(t, "2018-12-06", got.ReleaseDate)
	assert.Equal(t, []string{"us", "uk"}, got.Sources)
}

func TestMergeFreshestPricePerRegion(t *testing.T) {
	entities := normalize(t,
		`{"title":"Tunic","prices":{"US":{"price":29.99},"UK":{"price":24.99}}}`,
		`{"title":"Tunic","prices":{"US":{"price":19.99,"discount":33}}}`,
	)

	merged := reconcile.Merge(entities)
	require.Len(t, merged, 1)
	assert.Equal(t, []string{"US", "UK"}, merged[0].Prices.Regions())

	us, _ := merged[0].Prices.Get("US")
	require.NotNil(t, us.Price)
	assert.Equal(t, 19.99, *us.Price)
	uk, _ := merged[0].Prices.Get("UK")
	assert.Equal(t, 24.99, *uk.Price)

	// inputs are left alone
	orig, _ := entities[0].Prices.Get("US")
	assert.Equal(t, 29.99, *orig.Price)
}

func TestMergeOrderAndEmptyKeys(t *testing.T) {
	entities := normalize(t,
		`{"title":"Celeste"}`,
		`{"title":"???"}`,
		`{"title":"Hades"}`,
		`{"title":"celeste"}`,
	)
	merged := reconcile.Merge(entities)
	require.Len(t, merged, 2)
	assert.Equal(t, "celeste", merged[0].MatchKey)
	assert.Equal(t, "hades", merged[1].MatchKey)
}

func TestMergeLastNonEmpty(t *testing.T) {
	m, err := reconcile.NewMerger(reconcile.WithPolicies([]reconcile.FieldPolicy{
		{Field: reconcile.FieldNotes, Policy: reconcile.LastNonEmpty},
	}))
	require.NoError(t, err)

	entities := normalize(t,
		`{"title":"Celeste","notes":"a","tags":["x"]}`,
		`{"title":"Celeste","notes":"b","tags":["y"]}`,
		`{"title":"Celeste","notes":""}`,
	)
	merged := m.Merge(entities)
	require.Len(t, merged, 1)
	assert.Equal(t, "b", merged[0].Notes)
	// unlisted fields keep the first record's value
	assert.Equal(t, []string{"x"}, merged[0].Tags)
}

func TestMergeReplacesDefaultedValues(t *testing.T) {
	tests := []struct {
		name      string
		records   []string
		wantTitle string
		wantType  catalog.Type
	}{
		{
			name:      "later explicit type",
			records:   []string{`{"title":"Foo","region":"US","price":1}`, `{"title":"Foo","region":"UK","type":"app"}`},
			wantTitle: "Foo",
			wantType:  catalog.TypeApp,
		},
		{
			name:      "later title",
			records:   []string{`{"id":"zelda-botw"}`, `{"id":"zelda-botw","title":"Zelda BOTW"}`},
			wantTitle: "Zelda BOTW",
			wantType:  catalog.TypeGame,
		},
		{
			name:      "explicit game is kept",
			records:   []string{`{"title":"Foo","type":"game"}`, `{"title":"Foo","type":"app"}`},
			wantTitle: "Foo",
			wantType:  catalog.TypeGame,
		},
		{
			name:      "defaults stay when nothing supplies a value",
			records:   []string{`{"id":"abc"}`, `{"id":"abc","price":3}`},
			wantTitle: canonicalize.UntitledTitle,
			wantType:  catalog.TypeGame,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := reconcile.Merge(normalize(t, tt.records...))
			require.Len(t, merged, 1)
			assert.Equal(t, tt.wantTitle, merged[0].Title)
			assert.Equal(t, tt.wantType, merged[0].Type)
		})
	}
}

func TestNewMergerValidation(t *testing.T) {
	tests := []struct {
		name     string
		policies []reconcile.FieldPolicy
	}{
		{"union on scalar", []reconcile.FieldPolicy{{Field: reconcile.FieldTitle, Policy: reconcile.Union}}},
		{"first on set", []reconcile.FieldPolicy{{Field: reconcile.FieldTags, Policy: reconcile.FirstNonEmpty}}},
		{"earliest on prices", []reconcile.FieldPolicy{{Field: reconcile.FieldPrices, Policy: reconcile.EarliestRelease}}},
		{"unknown field", []reconcile.FieldPolicy{{Field: "colour", Policy: reconcile.FirstNonEmpty}}},
		{"unknown policy", []reconcile.FieldPolicy{{Field: reconcile.FieldTitle, Policy: "newest"}}},
		{"duplicate", []reconcile.FieldPolicy{
			{Field: reconcile.FieldTitle, Policy: reconcile.FirstNonEmpty},
			{Field: reconcile.FieldTitle, Policy: reconcile.LastNonEmpty},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reconcile.NewMerger(reconcile.WithPolicies(tt.policies))
			require.Error(t, err)
			var cfgErr *errors.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}

	_, err := reconcile.NewMerger(reconcile.WithPolicies(nil))
	assert.True(t, errors.IsValidationError(err))
	_, err = reconcile.NewMerger(reconcile.WithProvenance(nil))
	assert.True(t, errors.IsValidationError(err))
}

func TestParsePolicy(t *testing.T) {
	p, err := reconcile.ParsePolicy(" Freshest_Per_Region ")
	require.NoError(t, err)
	assert.Equal(t, reconcile.FreshestPerRegion, p)

	_, err = reconcile.ParsePolicy("random")
	assert.Error(t, err)
}

func TestMergeProvenance(t *testing.T) {
	tracker := provenance.NewTracker(true)
	m, err := reconcile.NewMerger(reconcile.WithProvenance(tracker))
	require.NoError(t, err)

	entities := normalize(t,
		`{"title":"Hades","source":"us"}`,
		`{"title":"Hades","metascore":93,"source":"critic"}`,
	)
	m.Merge(entities)

	w, ok := provenance.Winner(tracker.FindByField("hades", "metascore"))
	require.True(t, ok)
	assert.Equal(t, "critic", w.Source)
	assert.Equal(t, string(reconcile.FirstNonEmpty), w.Policy)

	w, ok = provenance.Winner(tracker.FindByField("hades", "title"))
	require.True(t, ok)
	assert.Equal(t, "us", w.Source)
}

func TestMergeIdempotent(t *testing.T) {
	titles := []string{"Celeste", "celeste!", "Hades", "HADES", "Tunic", ""}
	regions := []string{"US", "UK", "EU", "JP"}

	build := func(picks []int) []catalog.Entity {
		out := make([]catalog.Entity, 0, len(picks))
		for i, n := range picks {
			e := canonicalize.Normalize(catalog.FromMap(map[string]any{
				"title":    titles[n%len(titles)],
				"region":   regions[(n+i)%len(regions)],
				"price":    float64(n*7%50) + 0.99,
				"discount": float64(n * 5 % 90),
				"tags":     []string{titles[(n+1)%len(titles)]},
			}))
			out = append(out, e)
		}
		return out
	}

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("merging the same input twice is identical", prop.ForAll(
		func(picks []int) bool {
			entities := build(picks)
			first := reconcile.Merge(entities)
			second := reconcile.Merge(entities)
			return reflect.DeepEqual(first, second)
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.Property("merged best price is the regional minimum", prop.ForAll(
		func(picks []int) bool {
			for _, c := range reconcile.Merge(build(picks)) {
				pricing.Apply(&c)
				if c.Prices.Len() == 0 {
					continue
				}
				lowest := -1.0
				for _, r := range c.Prices.Regions() {
					entry, _ := c.Prices.Get(r)
					if entry.Price != nil && (lowest < 0 || *entry.Price < lowest) {
						lowest = *entry.Price
					}
				}
				if c.BestPrice == nil || *c.BestPrice != lowest {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.TestingRun(t)
}
