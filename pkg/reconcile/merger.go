// Package reconcile merges canonical entities that share a match key into
// one record per title.
//
// Conflicts are resolved field by field from a declarative policy table.
// Merging is a left fold in input order, so the same ordered input always
// yields the same output.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/provenance"
)

// Merger folds entities into canonical records.
type Merger struct {
	policies []FieldPolicy
	tracker  provenance.Tracker
}

// Option configures a Merger.
type Option func(*Merger) error

// WithPolicies replaces the policy table. Each field may appear once.
func WithPolicies(policies []FieldPolicy) Option {
	return func(m *Merger) error {
		if len(policies) == 0 {
			return &errors.ValidationError{Field: "policies", Message: "cannot be empty"}
		}
		m.policies = append([]FieldPolicy(nil), policies...)
		return nil
	}
}

// WithProvenance records the winning source of every field in t.
func WithProvenance(t provenance.Tracker) Option {
	return func(m *Merger) error {
		if t == nil {
			return &errors.ValidationError{Field: "tracker", Message: "cannot be nil"}
		}
		m.tracker = t
		return nil
	}
}

// NewMerger creates a merger using DefaultPolicies unless overridden.
func NewMerger(opts ...Option) (*Merger, error) {
	m := &Merger{policies: DefaultPolicies()}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if err := validate(m.policies); err != nil {
		return nil, err
	}
	return m, nil
}

func validate(policies []FieldPolicy) error {
	seen := make(map[Field]bool, len(policies))
	for _, fp := range policies {
		s, ok := slots[fp.Field]
		if !ok {
			return errors.NewConfigError("reconcile", fmt.Sprintf("unknown field %q", fp.Field), nil)
		}
		if seen[fp.Field] {
			return errors.NewConfigError("reconcile", fmt.Sprintf("field %q bound twice", fp.Field), nil)
		}
		seen[fp.Field] = true
		if !s.supports(fp.Policy) {
			return errors.NewConfigError("reconcile",
				fmt.Sprintf("policy %q cannot resolve field %q", fp.Policy, fp.Field), nil)
		}
	}
	return nil
}

// Policies returns a copy of the active policy table.
func (m *Merger) Policies() []FieldPolicy {
	return append([]FieldPolicy(nil), m.policies...)
}

// Merge groups entities by match key and folds each group into one
// canonical entity. Output follows the first appearance of each key;
// entities with an empty key are skipped. Inputs are not modified.
func (m *Merger) Merge(entities []catalog.Entity) []catalog.CanonicalEntity {
	index := make(map[string]int, len(entities))
	out := make([]catalog.CanonicalEntity, 0, len(entities))

	for i := range entities {
		src := &entities[i]
		if src.MatchKey == "" {
			continue
		}
		pos, ok := index[src.MatchKey]
		if !ok {
			index[src.MatchKey] = len(out)
			out = append(out, catalog.CanonicalEntity{Entity: src.Clone()})
			m.trackBase(src)
			continue
		}
		dst := &out[pos].Entity
		for _, fp := range m.policies {
			if slots[fp.Field].apply(fp.Policy, dst, src) {
				m.track(src, fp, "")
			}
		}
	}
	return out
}

func (m *Merger) trackBase(src *catalog.Entity) {
	if m.tracker == nil {
		return
	}
	for _, fp := range m.policies {
		s := slots[fp.Field]
		if s.empty != nil && s.empty(src) {
			continue
		}
		m.track(src, fp, "first record")
	}
}

func (m *Merger) track(src *catalog.Entity, fp FieldPolicy, reason string) {
	if m.tracker == nil {
		return
	}
	m.tracker.Track(src.MatchKey, string(fp.Field), provenance.Provenance{
		Source: sourceLabel(src),
		Policy: string(fp.Policy),
		Reason: reason,
	})
}

func sourceLabel(e *catalog.Entity) string {
	if len(e.Sources) == 0 {
		return "unknown"
	}
	return strings.Join(e.Sources, "+")
}

// Merge folds entities with the default policy table.
func Merge(entities []catalog.Entity) []catalog.CanonicalEntity {
	m := &Merger{policies: DefaultPolicies()}
	return m.Merge(entities)
}
