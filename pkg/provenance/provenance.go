// Package provenance records which source supplied each merged field.
package provenance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
)

// Provenance is one recorded contribution to a field.
type Provenance struct {
	Source    string    `yaml:"source" json:"source"`
	Field     string    `yaml:"field" json:"field"`
	Policy    string    `yaml:"policy" json:"policy"`
	Reason    string    `yaml:"reason,omitempty" json:"reason,omitempty"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}

// Map holds contributions keyed by "matchKey:field", oldest first.
type Map map[string][]Provenance

// Tracker collects provenance during a merge.
type Tracker interface {
	// Track records a contribution to field of the entity with matchKey.
	Track(matchKey, field string, p Provenance)

	// FindByField returns the contributions for one field, oldest first.
	FindByField(matchKey, field string) []Provenance

	// FindByKey returns every tracked field of one entity.
	FindByKey(matchKey string) map[string][]Provenance

	// Map returns a copy of everything tracked.
	Map() Map

	// Clear drops all tracked data.
	Clear()
}

type tracker struct {
	mu      sync.Mutex
	data    Map
	enabled bool
	now     func() time.Time
}

// NewTracker creates a tracker. A disabled tracker records nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		data:    make(Map),
		enabled: enabled,
		now:     time.Now,
	}
}

func (t *tracker) Track(matchKey, field string, p Provenance) {
	if !t.enabled {
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = t.now()
	}
	if p.Field == "" {
		p.Field = field
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	k := makeKey(matchKey, field)
	t.data[k] = append(t.data[k], p)
}

func (t *tracker) FindByField(matchKey, field string) []Provenance {
	if !t.enabled {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Provenance(nil), t.data[makeKey(matchKey, field)]...)
}

func (t *tracker) FindByKey(matchKey string) map[string][]Provenance {
	if !t.enabled {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string][]Provenance)
	prefix := matchKey + ":"
	for k, list := range t.data {
		if field, ok := strings.CutPrefix(k, prefix); ok {
			out[field] = append([]Provenance(nil), list...)
		}
	}
	return out
}

func (t *tracker) Map() Map {
	if !t.enabled {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(Map, len(t.data))
	for k, v := range t.data {
		out[k] = append([]Provenance(nil), v...)
	}
	return out
}

func (t *tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = make(Map)
}

// match keys are [a-z0-9] only, so the first colon separates key and field.
func makeKey(matchKey, field string) string {
	return matchKey + ":" + field
}

// Winner returns the latest contribution in list, which is the one whose
// value survived the merge for single-valued fields.
func Winner(list []Provenance) (Provenance, bool) {
	if len(list) == 0 {
		return Provenance{}, false
	}
	return list[len(list)-1], true
}

// ForKey returns the entries of one entity.
func (m Map) ForKey(matchKey string) Map {
	out := make(Map)
	prefix := matchKey + ":"
	for k, v := range m {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

// String renders a sorted plain-text report.
func (m Map) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	last := ""
	for _, k := range keys {
		matchKey, field, _ := strings.Cut(k, ":")
		if matchKey != last {
			fmt.Fprintf(&sb, "%s\n", matchKey)
			last = matchKey
		}
		list := m[k]
		w, _ := Winner(list)
		fmt.Fprintf(&sb, "  %s: %s (%s)", field, w.Source, w.Policy)
		if len(list) > 1 {
			fmt.Fprintf(&sb, " +%d earlier", len(list)-1)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// File is the on-disk provenance document.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes m as YAML.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads a provenance file. A missing file returns nil, nil.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &f, nil
}
