// Package pricing reduces a per-region price table to a single best offer.
package pricing

import (
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
)

// PrimaryRegions are visited before any other region code, in this order.
var PrimaryRegions = []string{"US", "UK", "EU"}

var regionCurrencies = map[string]string{
	"US": "USD",
	"UK": "GBP",
	"EU": "EUR",
}

// DefaultCurrency returns the currency implied by a region code, or "".
func DefaultCurrency(region string) string {
	return regionCurrencies[strings.ToUpper(strings.TrimSpace(region))]
}

// Best is the aggregated offer across regions. Each field is nil when no
// region supplies it.
type Best struct {
	Price    *float64
	Discount *float64
	Currency *string
}

// RegionOrder lists the regions of p with primary regions first, then the
// rest in insertion order.
func RegionOrder(p *catalog.Prices) []string {
	regions := p.Regions()
	out := make([]string, 0, len(regions))
	seen := make(map[string]bool, len(regions))
	for _, primary := range PrimaryRegions {
		if _, ok := p.Get(primary); ok {
			out = append(out, primary)
			seen[primary] = true
		}
	}
	for _, r := range regions {
		if !seen[r] {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate computes the lowest price, highest discount, and the currency
// of the first region (in RegionOrder) that offers the lowest price.
// Missing prices and discounts are skipped, never treated as zero. When no
// region has a price all three results are nil.
func Aggregate(p *catalog.Prices) Best {
	var best Best
	var bestRegion string
	var bestEntry catalog.PriceEntry

	for _, region := range RegionOrder(p) {
		entry, _ := p.Get(region)
		if entry.Price != nil && (best.Price == nil || *entry.Price < *best.Price) {
			best.Price = catalog.Ptr(*entry.Price)
			bestRegion, bestEntry = region, entry
		}
		if entry.Discount != nil && (best.Discount == nil || *entry.Discount > *best.Discount) {
			best.Discount = catalog.Ptr(*entry.Discount)
		}
	}

	if best.Price == nil {
		return Best{}
	}
	currency := bestEntry.Currency
	if currency == "" {
		currency = DefaultCurrency(bestRegion)
	}
	if currency != "" {
		best.Currency = &currency
	}
	return best
}

// Apply stores the aggregate of c.Prices on c.
func Apply(c *catalog.CanonicalEntity) {
	best := Aggregate(c.Prices)
	c.BestPrice = best.Price
	c.BestDiscount = best.Discount
	c.BestCurrency = best.Currency
}
