package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/internal/store"
)

type testApp struct {
	*App
	dir string
	out *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "playmap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"data_dir: "+dir+"\nsnapshot_db: playmap.db\nlog_output: discard\n"), 0o600))

	config, err := LoadConfigFile(cfgPath)
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := New("1.2.3", "abc123", "2025-01-01", "test", WithConfig(config), WithOutput(&out))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return &testApp{App: a, dir: dir, out: &out}
}

func (ta *testApp) write(t *testing.T, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(ta.dir, name), []byte(body), 0o600))
}

func (ta *testApp) run(t *testing.T, args ...string) []byte {
	t.Helper()
	ta.out.Reset()
	require.NoError(t, ta.Execute(context.Background(), args))
	return ta.out.Bytes()
}

func TestNew(t *testing.T) {
	ta := newTestApp(t)
	assert.Equal(t, "1.2.3", ta.Version())
	assert.Equal(t, "abc123", ta.Commit())
	assert.Equal(t, "2025-01-01", ta.Date())
	assert.Equal(t, "test", ta.BuiltBy())
	assert.NotNil(t, ta.Logger())
	assert.Equal(t, ta.dir, ta.Settings().DataDir)

	_, err := New("1", "", "", "", WithConfig(nil))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	ta := newTestApp(t)
	assert.Equal(t, "playmap 1.2.3\n", string(ta.run(t, "version")))

	var info map[string]string
	require.NoError(t, json.Unmarshal(ta.run(t, "version", "-o", "json"), &info))
	assert.Equal(t, "abc123", info["commit"])
	assert.Equal(t, "1.0.0", info["schema_version"])
}

func TestKeyCommand(t *testing.T) {
	ta := newTestApp(t)
	var keys []map[string]string
	require.NoError(t, json.Unmarshal(ta.run(t, "key", "Hades™", "-o", "json"), &keys))
	require.Len(t, keys, 1)
	assert.Equal(t, "hades", keys[0]["key"])
}

func TestInvalidFormat(t *testing.T) {
	ta := newTestApp(t)
	err := ta.Execute(context.Background(), []string{"key", "Hades", "-o", "xml"})
	assert.ErrorContains(t, err, "invalid format")
}

func TestBuildViewStatsHistory(t *testing.T) {
	ta := newTestApp(t)
	ta.write(t, "nintendo_us_sales_import.json", `[
		{"title":"Hades","region":"US","price":20,"metascore":93,"tags":["roguelike"]},
		{"title":"Old Game","region":"US","price":5,"metascore":30},
		{"price":1}
	]`)
	ta.write(t, "nintendo_uk_search_import.json", `{"items": [not json`)
	ta.write(t, "owned.json", `[{"title":"Dead Cells","tags":["roguelike"]}]`)
	ta.write(t, "wish_list.json", `{"wishlist":["HADES"]}`)

	var summary struct {
		Out      string   `json:"out"`
		Dropped  int      `json:"dropped"`
		Added    int      `json:"added"`
		Snapshot bool     `json:"snapshot_recorded"`
		Errors   []string `json:"source_errors"`
		Metadata struct {
			Stats struct {
				TotalRaw  int `json:"total_raw"`
				TotalKept int `json:"total_kept"`
			} `json:"stats"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(ta.run(t, "build", "-o", "json"), &summary))
	assert.Equal(t, filepath.Join(ta.dir, "store_catalog.json"), summary.Out)
	assert.Equal(t, 1, summary.Dropped)
	assert.Equal(t, 1, summary.Added)
	assert.True(t, summary.Snapshot)
	assert.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Metadata.Stats.TotalRaw)
	assert.Equal(t, 1, summary.Metadata.Stats.TotalKept)

	doc, err := store.ReadDocument(summary.Out)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Hades", doc.Items[0].Title)

	// Same items: the snapshot is not recorded twice.
	require.NoError(t, json.Unmarshal(ta.run(t, "build", "-o", "json"), &summary))
	assert.False(t, summary.Snapshot)

	var items []struct {
		Title    string `json:"title"`
		IsOwned  bool   `json:"is_owned"`
		IsWished bool   `json:"is_wished"`
		IsMatch  bool   `json:"is_match"`
	}
	require.NoError(t, json.Unmarshal(ta.run(t, "view", "-o", "json"), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Dead Cells", items[0].Title)
	assert.True(t, items[0].IsOwned)
	assert.Equal(t, "Hades", items[1].Title)
	assert.True(t, items[1].IsWished)
	assert.True(t, items[1].IsMatch)

	require.NoError(t, json.Unmarshal(ta.run(t, "view", "--only", "wishlist", "-o", "json"), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Hades", items[0].Title)

	var counts map[string]int
	require.NoError(t, json.Unmarshal(ta.run(t, "view", "--summary", "-o", "json"), &counts))
	assert.Equal(t, 2, counts["total"])
	assert.Equal(t, 1, counts["owned"])

	var meta map[string]any
	require.NoError(t, json.Unmarshal(ta.run(t, "stats", "-o", "json"), &meta))
	assert.Equal(t, "1.0.0", meta["version"])

	var snaps []map[string]any
	require.NoError(t, json.Unmarshal(ta.run(t, "history", "-o", "json"), &snaps))
	assert.Len(t, snaps, 1)

	table := string(ta.run(t, "view", "-o", "table"))
	assert.Contains(t, table, "Hades")
	assert.Contains(t, table, "Dead Cells")
}

func TestBuildProvenance(t *testing.T) {
	ta := newTestApp(t)
	ta.write(t, "nintendo_us_sales_import.json", `[{"title":"Hades","region":"US","price":20,"metascore":93}]`)
	ta.write(t, "nintendo_uk_search_import.json", `[{"title":"Hades","region":"UK","price":15}]`)
	path := filepath.Join(ta.dir, "provenance.yaml")

	ta.run(t, "build", "--provenance", path, "-o", "json")
	out := string(ta.run(t, "provenance", path, "--title", "Hades", "-o", "table"))
	assert.Contains(t, out, "store_uk")
	assert.Contains(t, out, "prices")
}

func TestViewRejectsBadQuery(t *testing.T) {
	ta := newTestApp(t)
	ta.write(t, "nintendo_us_sales_import.json", `[{"title":"Hades","metascore":93}]`)
	ta.run(t, "build", "-o", "json")

	for _, args := range [][]string{
		{"view", "--sort", "price"},
		{"view", "--type", "movie"},
		{"view", "--where", "metascore >"},
	} {
		assert.Error(t, ta.Execute(context.Background(), args), args)
	}
}

func TestCompletionCommand(t *testing.T) {
	ta := newTestApp(t)
	assert.Contains(t, string(ta.run(t, "completion", "bash")), "playmap")
	assert.Error(t, ta.Execute(context.Background(), []string{"completion", "tcsh"}))
}
