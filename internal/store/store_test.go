package store_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/internal/store"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/save"
)

func testDocument(t *testing.T, titles ...string) *catalog.Document {
	t.Helper()
	doc := &catalog.Document{
		Metadata: catalog.Metadata{
			Generated:     utc.Time{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
			LastRefreshed: utc.Time{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
			RunID:         "run-" + strings.Join(titles, "-"),
			Sources:       []string{"store_us"},
		},
	}
	for _, title := range titles {
		prices := catalog.NewPrices()
		prices.Set("US", catalog.PriceEntry{Price: catalog.Ptr(19.99), Currency: "USD"})
		doc.Items = append(doc.Items, catalog.CanonicalEntity{
			Entity: catalog.Entity{
				Title:     title,
				MatchKey:  strings.ToLower(title),
				Type:      catalog.TypeGame,
				Tags:      []string{"indie"},
				Prices:    prices,
				Metascore: catalog.Ptr(90.0),
				Sources:   []string{"store_us"},
			},
			BestPrice: catalog.Ptr(19.99),
		})
	}
	doc.Metadata.Stats.TotalRaw = len(titles)
	doc.Metadata.Stats.TotalKept = len(titles)
	require.NoError(t, doc.Seal())
	return doc
}

func TestWriteReadDocument(t *testing.T) {
	for _, name := range []string{"catalog.json", "catalog.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			doc := testDocument(t, "Hades", "Celeste")

			require.NoError(t, store.WriteDocument(doc, save.WithPath(path)))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.False(t, info.IsDir())

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp file left behind")

			got, err := store.ReadDocument(path)
			require.NoError(t, err)
			require.Len(t, got.Items, 2)
			assert.Equal(t, "hades", got.Items[0].MatchKey)
			assert.Equal(t, doc.Metadata.Fingerprint, got.Metadata.Fingerprint)

			fp, err := got.ComputeFingerprint()
			require.NoError(t, err)
			assert.Equal(t, doc.Metadata.Fingerprint, fp)
		})
	}
}

func TestWriteDocumentToWriter(t *testing.T) {
	var buf bytes.Buffer
	doc := testDocument(t, "Hades")

	require.NoError(t, store.WriteDocument(doc, save.WithWriter(&buf), save.WithIndent("")))
	assert.NotContains(t, strings.TrimSpace(buf.String()), "\n")
	assert.Contains(t, buf.String(), `"key":"hades"`)

	buf.Reset()
	require.NoError(t, store.WriteDocument(doc, save.WithWriter(&buf), save.WithFormat(save.FormatYAML)))
	assert.Contains(t, buf.String(), "key: hades")
}

func TestWriteDocumentNeedsDestination(t *testing.T) {
	err := store.WriteDocument(testDocument(t, "Hades"))
	assert.True(t, errors.IsValidationError(err))
}

func TestDecodeDocument(t *testing.T) {
	_, err := store.Decode([]byte(`{"metadata":{"version":"2.0.0"},"items":[]}`), save.FormatJSON, "x.json")
	assert.ErrorIs(t, err, errors.ErrUnsupportedVersion)

	_, err = store.Decode([]byte(`{"items":`), save.FormatJSON, "x.json")
	var pe *errors.ParseError
	assert.ErrorAs(t, err, &pe)

	doc, err := store.Decode([]byte("items:\n  - title: Hades\n    key: hades\n"), save.FormatYAML, "x.yaml")
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Hades", doc.Items[0].Title)
}

func TestReadDocumentMissing(t *testing.T) {
	_, err := store.ReadDocument(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.IsNotFound(err))
}

func openStore(t *testing.T) *store.SnapshotStore {
	t.Helper()
	s, err := store.OpenSnapshotStore(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.Latest(ctx)
	assert.True(t, errors.IsNotFound(err))

	first := testDocument(t, "Hades")
	recorded, err := s.Record(ctx, first)
	require.NoError(t, err)
	assert.True(t, recorded)

	// Same items, different run: skipped.
	again := testDocument(t, "Hades")
	again.Metadata.RunID = "other"
	recorded, err = s.Record(ctx, again)
	require.NoError(t, err)
	assert.False(t, recorded)

	second := testDocument(t, "Hades", "Celeste")
	recorded, err = s.Record(ctx, second)
	require.NoError(t, err)
	assert.True(t, recorded)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Metadata.RunID, latest.RunID)
	assert.Equal(t, 2, latest.TotalKept)
	assert.Equal(t, second.Metadata.Fingerprint, latest.Fingerprint)
	assert.True(t, latest.Generated.Equal(second.Metadata.Generated.Time))

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Metadata.RunID, list[0].RunID)
	assert.Equal(t, first.Metadata.RunID, list[1].RunID)

	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	doc, err := s.Document(ctx, latest.ID)
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "celeste", doc.Items[1].MatchKey)

	_, err = s.Document(ctx, 999)
	assert.True(t, errors.IsNotFound(err))
}

func TestSnapshotStoreUnsealedDocument(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	doc := testDocument(t, "Hades")
	doc.Metadata.Fingerprint = ""
	recorded, err := s.Record(ctx, doc)
	require.NoError(t, err)
	assert.True(t, recorded)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, latest.Fingerprint)
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"minimal", `{"items":[]}`, true},
		{"null items", `{"metadata":{},"items":null}`, true},
		{"item", `{"items":[{"title":"Hades","key":"hades","metascore":93,"prices":{"US":{"price":20}}}]}`, true},
		{"missing items", `{"metadata":{}}`, false},
		{"empty title", `{"items":[{"title":""}]}`, false},
		{"string score", `{"items":[{"title":"Hades","metascore":"93"}]}`, false},
		{"negative kept", `{"metadata":{"stats":{"total_kept":-1}},"items":[]}`, false},
		{"not an object", `[]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ValidateJSON([]byte(tt.body), "x.json")
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var pe *errors.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestWrittenDocumentMatchesSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, store.WriteDocument(testDocument(t, "Hades", "Celeste"), save.WithWriter(&buf), save.WithFormat(save.FormatJSON)))
	assert.NoError(t, store.ValidateJSON(buf.Bytes(), "written.json"))
}
