// Package view joins the published catalog with a user's owned titles and
// wishlist and derives per-title flags for browsing.
//
// Flags are computed on demand and never written back to a catalog
// document.
package view

import (
	"time"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/constants"
)

// Ownership labels derived when a title carries none.
const (
	OwnershipOwned    = "owned"
	OwnershipWishlist = "wishlist"
)

// Item is one title in a composed view.
type Item struct {
	catalog.CanonicalEntity `yaml:",inline"`

	IsOwned    bool `json:"is_owned"`
	IsWished   bool `json:"is_wished"`
	IsUpcoming bool `json:"is_upcoming"`
	IsMatch    bool `json:"is_match"`
	IsGoodDeal bool `json:"is_good_deal"`
	MatchScore int  `json:"match_score"`
}

// Composer builds views.
type Composer struct {
	// Now is the clock for IsUpcoming. Nil uses time.Now.
	Now func() time.Time
	// GoodDealThreshold is the best discount a wished title needs to be a deal.
	GoodDealThreshold float64
}

// NewComposer returns a composer with the default deal threshold.
func NewComposer() *Composer {
	return &Composer{Now: time.Now, GoodDealThreshold: constants.GoodDealThreshold}
}

// Compose unions the catalog, owned and wishlist titles by match key (first
// occurrence wins, catalog first) and flags every item.
//
// MatchScore counts the item's tags that appear on any owned title. An
// owned title without tags borrows the tags of its catalog entry.
func (c *Composer) Compose(catalogItems, owned, wishlist []catalog.CanonicalEntity) []Item {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	nowMs := now().UnixMilli()

	ownedSet := keySet(owned)
	wishSet := keySet(wishlist)

	byKey := make(map[string]*catalog.CanonicalEntity, len(catalogItems))
	for i := range catalogItems {
		if _, ok := byKey[catalogItems[i].MatchKey]; !ok {
			byKey[catalogItems[i].MatchKey] = &catalogItems[i]
		}
	}

	ownedTags := make(map[string]struct{})
	for i := range owned {
		tags := owned[i].Tags
		if len(tags) == 0 {
			if entry, ok := byKey[owned[i].MatchKey]; ok {
				tags = entry.Tags
			}
		}
		for _, t := range tags {
			ownedTags[t] = struct{}{}
		}
	}

	seen := make(map[string]bool, len(catalogItems)+len(owned)+len(wishlist))
	out := make([]Item, 0, len(catalogItems)+len(owned)+len(wishlist))
	for _, list := range [][]catalog.CanonicalEntity{catalogItems, owned, wishlist} {
		for i := range list {
			key := list[i].MatchKey
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			it := Item{CanonicalEntity: list[i].Clone()}
			it.IsOwned = ownedSet[key]
			it.IsWished = wishSet[key]
			for _, t := range it.Tags {
				if _, ok := ownedTags[t]; ok {
					it.MatchScore++
				}
			}
			it.IsMatch = it.MatchScore > 0
			it.IsUpcoming = it.ReleaseTimestamp != nil && *it.ReleaseTimestamp > nowMs
			it.IsGoodDeal = it.IsWished && it.BestDiscount != nil && *it.BestDiscount >= c.GoodDealThreshold
			if it.Ownership == "" {
				switch {
				case it.IsOwned:
					it.Ownership = OwnershipOwned
				case it.IsWished:
					it.Ownership = OwnershipWishlist
				}
			}
			out = append(out, it)
		}
	}
	return out
}

func keySet(items []catalog.CanonicalEntity) map[string]bool {
	out := make(map[string]bool, len(items))
	for i := range items {
		if items[i].MatchKey != "" {
			out[items[i].MatchKey] = true
		}
	}
	return out
}
