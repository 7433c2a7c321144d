package reconcile

import "github.com/agentstation/playmap/pkg/catalog"

// PriceChange is a best-price movement of one title between two catalogs.
type PriceChange struct {
	MatchKey string
	Title    string
	Old      *float64
	New      *float64
}

// Changeset describes how one catalog differs from another.
type Changeset struct {
	Added        []catalog.CanonicalEntity
	Removed      []catalog.CanonicalEntity
	PriceChanges []PriceChange
}

// IsEmpty reports whether nothing changed.
func (c Changeset) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.PriceChanges) == 0
}

// Diff compares two catalogs by match key. Added and price changes follow
// the order of next; removed follows the order of prev.
func Diff(prev, next []catalog.CanonicalEntity) Changeset {
	var cs Changeset
	before := make(map[string]*catalog.CanonicalEntity, len(prev))
	for i := range prev {
		before[prev[i].MatchKey] = &prev[i]
	}
	after := make(map[string]bool, len(next))

	for i := range next {
		n := &next[i]
		after[n.MatchKey] = true
		p, ok := before[n.MatchKey]
		if !ok {
			cs.Added = append(cs.Added, n.Clone())
			continue
		}
		if !sameFloat(p.BestPrice, n.BestPrice) {
			cs.PriceChanges = append(cs.PriceChanges, PriceChange{
				MatchKey: n.MatchKey,
				Title:    n.Title,
				Old:      copyFloat(p.BestPrice),
				New:      copyFloat(n.BestPrice),
			})
		}
	}
	for i := range prev {
		if !after[prev[i].MatchKey] {
			cs.Removed = append(cs.Removed, prev[i].Clone())
		}
	}
	return cs
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
