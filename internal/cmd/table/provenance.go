package table

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/playmap/pkg/provenance"
)

// ProvenanceToTableData converts a provenance map to table format, one row
// per contribution. The winning contribution of each field is marked with →
// and listed first.
func ProvenanceToTableData(m provenance.Map, patterns []string) Data {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows [][]string
	for _, k := range keys {
		matchKey, field, _ := strings.Cut(k, ":")
		if !MatchField(field, patterns) {
			continue
		}
		history := m[k]
		for i := len(history) - 1; i >= 0; i-- {
			entry := history[i]
			key, name, current := "", "", ""
			if i == len(history)-1 {
				key, name, current = matchKey, field, "→"
			}
			rows = append(rows, []string{
				key,
				name,
				current,
				entry.Source,
				entry.Policy,
				strconv.Itoa(i + 1),
				dash(entry.Reason),
			})
		}
	}

	return Data{
		Headers: []string{"Key", "Field", "Curr", "Source", "Policy", "Step", "Reason"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft,   // Key
			AlignLeft,   // Field
			AlignCenter, // Curr
			AlignLeft,   // Source
			AlignLeft,   // Policy
			AlignRight,  // Step
			AlignLeft,   // Reason
		},
	}
}

// MatchField checks if a field matches any of the provided patterns.
// Matching is case-insensitive and supports shell wildcards.
func MatchField(field string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	fieldLower := strings.ToLower(field)
	for _, pattern := range patterns {
		matched, err := filepath.Match(strings.ToLower(pattern), fieldLower)
		if err == nil && matched {
			return true
		}
	}
	return false
}
