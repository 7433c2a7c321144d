package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/agentstation/utc"
	"github.com/gowebpki/jcs"

	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
)

// Stats summarizes a reconciliation pass.
type Stats struct {
	TotalRaw         int      `json:"total_raw"`
	TotalKept        int      `json:"total_kept"`
	AvgMetascore     *float64 `json:"avg_metascore"`
	AvgPopularity    *float64 `json:"avg_popularity"`
	PopularityMedian *float64 `json:"popularity_median"`
	P75Popularity    *float64 `json:"p75_popularity"`
	PopularityMax    *float64 `json:"popularity_max"`
}

// FilterSummary records the inclusion thresholds a document was built with.
type FilterSummary struct {
	MetascoreMin       float64  `json:"metascore_min"`
	PopularityMin      *float64 `json:"popularity_min"`
	RecentMonths       int      `json:"recent_months"`
	RequireReleaseDate bool     `json:"require_release_date"`
}

// Metadata describes how and when a document was produced.
type Metadata struct {
	Generated     utc.Time      `json:"generated"`
	LastRefreshed utc.Time      `json:"last_refreshed"`
	Version       string        `json:"version"`
	RunID         string        `json:"run_id,omitempty"`
	Fingerprint   string        `json:"fingerprint,omitempty"`
	Sources       []string      `json:"sources"`
	Filters       FilterSummary `json:"filters"`
	Stats         Stats         `json:"stats"`
}

// Document is the persisted form of a catalog.
type Document struct {
	Metadata Metadata          `json:"metadata"`
	Items    []CanonicalEntity `json:"items"`
}

// ComputeFingerprint hashes the RFC 8785 canonical JSON of the items. Two
// passes that produce the same items produce the same fingerprint,
// regardless of when they ran.
func (d *Document) ComputeFingerprint() (string, error) {
	items := d.Items
	if items == nil {
		items = []CanonicalEntity{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// Seal stamps the schema version and fingerprint.
func (d *Document) Seal() error {
	d.Metadata.Version = constants.SchemaVersion
	fp, err := d.ComputeFingerprint()
	if err != nil {
		return err
	}
	d.Metadata.Fingerprint = fp
	return nil
}

// CheckVersion rejects documents written by an incompatible schema. A
// missing version is accepted as the current one.
func (d *Document) CheckVersion() error {
	if d.Metadata.Version == "" {
		return nil
	}
	v, err := semver.NewVersion(d.Metadata.Version)
	if err != nil {
		return errors.NewValidationError("metadata.version", d.Metadata.Version, err.Error())
	}
	c, err := semver.NewConstraint(constants.SchemaConstraint)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: document version %s, want %s", errors.ErrUnsupportedVersion, v, constants.SchemaConstraint)
	}
	return nil
}

// Find returns the item with the given match key.
func (d *Document) Find(matchKey string) (CanonicalEntity, bool) {
	for _, it := range d.Items {
		if it.MatchKey == matchKey {
			return it, true
		}
	}
	return CanonicalEntity{}, false
}
