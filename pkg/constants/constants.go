// Package constants provides shared constants used throughout playmap:
// inclusion defaults, file permissions, and limits that must agree between
// the engine and the CLI.
package constants

import "time"

// Inclusion filter defaults.
const (
	// DefaultMetascoreMin is the critic score a scored title must reach to be kept
	DefaultMetascoreMin = 45.0

	// DefaultRecentMonths is the recency window for unscored titles
	DefaultRecentMonths = 3

	// DefaultRequireReleaseDate drops unscored titles without a release date
	DefaultRequireReleaseDate = true

	// MonthDuration is the length of one "month" in the recency window
	MonthDuration = 30 * 24 * time.Hour
)

// View defaults.
const (
	// GoodDealThreshold is the minimum best discount (percent) for a wished title to be a deal
	GoodDealThreshold = 40.0
)

// Popularity sentinels. A source that emits one of these for every title
// carries no signal.
const (
	SentinelUnranked = 300.0
	SentinelZero     = 0.0
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limits.
const (
	// DefaultLoadConcurrency bounds how many source files are read at once
	DefaultLoadConcurrency = 4

	// DefaultHistoryLimit is how many snapshots the history command lists
	DefaultHistoryLimit = 20

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// RebuildContextTimeout bounds each automatic rebuild
	RebuildContextTimeout = 5 * time.Minute
)

// Schema.
const (
	// SchemaVersion is written into every catalog document
	SchemaVersion = "1.0.0"

	// SchemaConstraint is the range of document versions this build reads
	SchemaConstraint = "^1.0.0"
)
