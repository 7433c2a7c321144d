package app

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
)

// EnvPrefix prefixes every catalog environment variable.
const EnvPrefix = "PLAYMAP"

// Config holds the application configuration loaded from flags, the
// environment, .env files and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	application.Settings

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. PLAYMAP_* environment variables, and LOG_* for logging
//  3. .env and .env.local
//  4. Config file (~/.playmap.yaml or ./.playmap.yaml, or PLAYMAP_CONFIG)
//  5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile(os.Getenv(EnvPrefix + "_CONFIG"))
}

// LoadConfigFile is LoadConfig with an explicit config file. An empty path
// searches the standard locations.
func LoadConfigFile(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &errors.ConfigError{Component: "config", Message: "cannot read " + path, Err: err}
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".playmap")
		// Missing config file is fine
		_ = v.ReadInConfig()
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),
		Settings: application.Settings{
			DataDir:            v.GetString("data_dir"),
			USSource:           v.GetString("us_source"),
			UKSource:           v.GetString("uk_source"),
			CriticCache:        v.GetString("metacritic_cache"),
			MetadataCache:      v.GetString("metadata_cache"),
			Owned:              v.GetString("owned"),
			Wishlist:           v.GetString("wishlist"),
			CatalogOut:         v.GetString("catalog_out"),
			SnapshotDB:         v.GetString("snapshot_db"),
			MetascoreMin:       v.GetFloat64("metascore_min"),
			RecentMonths:       v.GetInt("recent_months"),
			RequireReleaseDate: v.GetBool("require_release_date"),
			GoodDealThreshold:  v.GetFloat64("good_deal_threshold"),
			LoadConcurrency:    v.GetInt("load_concurrency"),
		},
		LogLevel:  getEnvOrDefault("LOG_LEVEL", v.GetString("log_level")),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
	}

	if v.IsSet("popularity_min") {
		p := v.GetFloat64("popularity_min")
		config.PopularityMin = &p
	}
	if v.IsSet("popularity_sentinels") {
		sentinels, err := parseFloats(v.GetStringSlice("popularity_sentinels"))
		if err != nil {
			return nil, &errors.ConfigError{Component: "popularity_sentinels", Message: "must be numbers", Err: err}
		}
		config.PopularitySentinels = sentinels
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")
	v.SetDefault("us_source", application.DefaultUSSource)
	v.SetDefault("uk_source", application.DefaultUKSource)
	v.SetDefault("metacritic_cache", application.DefaultCriticCache)
	v.SetDefault("metadata_cache", application.DefaultMetadataCache)
	v.SetDefault("owned", application.DefaultOwned)
	v.SetDefault("wishlist", application.DefaultWishlist)
	v.SetDefault("catalog_out", application.DefaultCatalogOut)
	v.SetDefault("snapshot_db", "")
	v.SetDefault("metascore_min", constants.DefaultMetascoreMin)
	v.SetDefault("recent_months", constants.DefaultRecentMonths)
	v.SetDefault("require_release_date", constants.DefaultRequireReleaseDate)
	v.SetDefault("good_deal_threshold", constants.GoodDealThreshold)
	v.SetDefault("load_concurrency", constants.DefaultLoadConcurrency)
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	switch {
	case c.RecentMonths < 0:
		return &errors.ConfigError{Component: "recent_months", Message: "must not be negative"}
	case c.GoodDealThreshold < 0 || c.GoodDealThreshold > 100:
		return &errors.ConfigError{Component: "good_deal_threshold", Message: "must be between 0 and 100"}
	case c.LoadConcurrency < 0:
		return &errors.ConfigError{Component: "load_concurrency", Message: "must not be negative"}
	}
	return nil
}

// UpdateFromFlags applies the persistent flags over loaded values.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env then .env.local. Variables already set win.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseFloats accepts space or comma separated numbers.
func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}
