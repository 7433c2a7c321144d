package canonicalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/pkg/canonicalize"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/provenance"
)

func TestEnrichCritic(t *testing.T) {
	en := canonicalize.Enricher{
		Critic: canonicalize.Cache{
			"hades": record(t, `{"metascore":93,"userscore":"8.7","userscore_reviews":null,"url":"https://mc/hades"}`),
		},
	}

	e := canonicalize.Normalize(record(t, `{"title":"Hades","metascore":50,"userscore_reviews":40}`))
	critic, meta := en.Enrich(&e)
	assert.True(t, critic)
	assert.False(t, meta)
	assertFloat(t, fptr(93), e.Metascore)
	assertFloat(t, fptr(8.7), e.Userscore)
	assertFloat(t, fptr(40), e.UserscoreReviews)
	assert.Equal(t, "https://mc/hades", e.MetacriticURL)

	kept := canonicalize.Normalize(record(t, `{"title":"Hades","metacritic_url":"https://mine"}`))
	en.Enrich(&kept)
	assert.Equal(t, "https://mine", kept.MetacriticURL)
}

func TestEnrichMetadata(t *testing.T) {
	en := canonicalize.Enricher{
		Metadata: canonicalize.Cache{
			"celeste": record(t, `{
				"genres": ["Platform", "Indie"],
				"themes": "Action",
				"game_modes": ["Single player"],
				"player_perspectives": [{"name":"Side view"}],
				"total_rating_count": 1200,
				"hypes": 8,
				"summary": "Climb the mountain.",
				"publishers": ["Maddy Makes Games"],
				"cover": "//images.igdb.com/igdb/image/upload/t_thumb/co1.jpg",
				"screenshots": ["//images.igdb.com/igdb/image/upload/t_thumb/sc1.jpg"],
				"first_release_date": 1516665600
			}`),
		},
	}

	e := canonicalize.Normalize(record(t, `{"title":"Celeste","tags":["indie"],"image_square":"https://mine.png"}`))
	report := en.EnrichAll([]*catalog.Entity{&e})

	assert.Equal(t, 1, report.MetadataHits)
	assert.Equal(t, 0, report.CriticHits)
	assert.Equal(t, []string{"indie", "platform", "action", "single player", "side view"}, e.Tags)
	assertFloat(t, fptr(1200), e.TotalRatingCount)
	assertFloat(t, fptr(8), e.Hypes)
	assert.Equal(t, "Climb the mountain.", e.Notes)
	assert.Equal(t, "Maddy Makes Games", e.Publisher)
	assert.Equal(t, "https://mine.png", e.ImageSquare)
	assert.Equal(t, "https://images.igdb.com/igdb/image/upload/t_screenshot_huge/sc1.jpg", e.ImageWide)

	require.NotNil(t, e.ReleaseTimestamp)
	assert.Equal(t, time.Date(2018, 1, 23, 0, 0, 0, 0, time.UTC).UnixMilli(), *e.ReleaseTimestamp)
	assert.Equal(t, "2018-01-23T00:00:00Z", e.ReleaseDate)
}

func TestEnrichKeepsKnownRelease(t *testing.T) {
	en := canonicalize.Enricher{Metadata: canonicalize.Cache{"x": record(t, `{"first_release_date": 1}`)}}
	e := canonicalize.Normalize(record(t, `{"title":"x","release_date":"2020-01-01"}`))
	en.Enrich(&e)
	assert.Equal(t, "2020-01-01", e.ReleaseDate)
}

func TestEnrichMiss(t *testing.T) {
	var en canonicalize.Enricher
	e := canonicalize.Normalize(record(t, `{"title":"Nothing"}`))
	critic, meta := en.Enrich(&e)
	assert.False(t, critic)
	assert.False(t, meta)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "", canonicalize.ImageURL("", canonicalize.CoverSize))
	assert.Equal(t, "https://img/t_cover_big/a.jpg", canonicalize.ImageURL("//img/t_thumb/a.jpg", canonicalize.CoverSize))
	assert.Equal(t, "https://img/a.jpg", canonicalize.ImageURL("https://img/a.jpg", ""))
}

func TestEnrichTracksChangedFields(t *testing.T) {
	tracker := provenance.NewTracker(true)
	en := canonicalize.Enricher{
		Critic: canonicalize.Cache{
			"celeste": record(t, `{"metascore":92,"userscore":null}`),
		},
		Metadata: canonicalize.Cache{
			"celeste": record(t, `{"genres":["Platform"],"summary":"Climb.","cover":"//img/t_thumb/c.jpg"}`),
		},
		Tracker: tracker,
	}

	e := canonicalize.Normalize(record(t, `{"title":"Celeste","image_square":"https://mine.png"}`))
	en.Enrich(&e)

	tests := []struct {
		field  string
		source string
		policy string
	}{
		{"metascore", canonicalize.SourceCritic, canonicalize.PolicyOverwrite},
		{"tags", canonicalize.SourceMetadata, canonicalize.PolicyUnion},
		{"notes", canonicalize.SourceMetadata, canonicalize.PolicyFill},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			w, ok := provenance.Winner(tracker.FindByField("celeste", tt.field))
			require.True(t, ok)
			assert.Equal(t, tt.source, w.Source)
			assert.Equal(t, tt.policy, w.Policy)
		})
	}

	// untouched fields are not credited to a cache
	assert.Empty(t, tracker.FindByField("celeste", "userscore"))
	assert.Empty(t, tracker.FindByField("celeste", "image_square"))
}
