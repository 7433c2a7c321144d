package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfigFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultMetascoreMin, config.MetascoreMin)
	assert.Equal(t, constants.DefaultRecentMonths, config.RecentMonths)
	assert.Equal(t, constants.DefaultRequireReleaseDate, config.RequireReleaseDate)
	assert.Equal(t, constants.GoodDealThreshold, config.GoodDealThreshold)
	assert.Equal(t, application.DefaultUSSource, config.USSource)
	assert.Equal(t, application.DefaultCatalogOut, config.CatalogOut)
	assert.Nil(t, config.PopularityMin)
	assert.Nil(t, config.PopularitySentinels)
	assert.Equal(t, "auto", config.LogFormat)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/games
metascore_min: 70
popularity_min: 55
recent_months: 6
require_release_date: false
popularity_sentinels: [999]
good_deal_threshold: 25
`)
	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "/srv/games", config.DataDir)
	assert.Equal(t, 70.0, config.MetascoreMin)
	require.NotNil(t, config.PopularityMin)
	assert.Equal(t, 55.0, *config.PopularityMin)
	assert.Equal(t, 6, config.RecentMonths)
	assert.False(t, config.RequireReleaseDate)
	assert.Equal(t, []float64{999}, config.PopularitySentinels)
	assert.Equal(t, 25.0, config.GoodDealThreshold)

	filter := config.Filter()
	assert.Equal(t, 70.0, filter.MetascoreMin)
	assert.Equal(t, "/srv/games/owned.json", config.Path(config.Owned))
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("PLAYMAP_METASCORE_MIN", "80")
	t.Setenv("PLAYMAP_POPULARITY_SENTINELS", "300,0")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfigFile(writeConfig(t, "metascore_min: 60\n"))
	require.NoError(t, err)
	assert.Equal(t, 80.0, config.MetascoreMin)
	assert.Equal(t, []float64{300, 0}, config.PopularitySentinels)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoadConfigEmptySentinelsDisableDetection(t *testing.T) {
	config, err := LoadConfigFile(writeConfig(t, "popularity_sentinels: []\n"))
	require.NoError(t, err)
	assert.True(t, config.Popularity().DisableSentinels)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "negative recent months", body: "recent_months: -1\n"},
		{name: "deal threshold over 100", body: "good_deal_threshold: 150\n"},
		{name: "bad sentinel", body: "popularity_sentinels: [abc]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFile(writeConfig(t, tt.body))
			var ce *errors.ConfigError
			assert.True(t, errors.As(err, &ce), "got %v", err)
		})
	}

	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn"}
	config.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, "warn", config.LogLevel)

	config.UpdateFromFlags(false, false, false, "json", "error")
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "error", config.LogLevel)
}
