package view

import "sort"

// Summary counts items by flag.
type Summary struct {
	Total    int `json:"total"`
	Owned    int `json:"owned"`
	Wishlist int `json:"wishlist"`
	Unowned  int `json:"unowned"`
	Deals    int `json:"deals"`
	Matches  int `json:"matches"`
}

// Summarize counts a composed view. Unowned excludes wished titles.
func Summarize(items []Item) Summary {
	s := Summary{Total: len(items)}
	for i := range items {
		it := &items[i]
		if it.IsOwned {
			s.Owned++
		}
		if it.IsWished {
			s.Wishlist++
		}
		if !it.IsOwned && !it.IsWished {
			s.Unowned++
		}
		if it.IsGoodDeal {
			s.Deals++
		}
		if it.IsMatch {
			s.Matches++
		}
	}
	return s
}

// TagCount is one tag facet.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts counts tags across items, most frequent first, then by name.
func TagCounts(items []Item) []TagCount {
	counts := make(map[string]int)
	for i := range items {
		for _, t := range items[i].Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
