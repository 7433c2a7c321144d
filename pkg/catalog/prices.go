package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// PriceEntry is one region's price observation.
type PriceEntry struct {
	Price    *float64 `json:"price"`
	Discount *float64 `json:"discount"`
	Currency string   `json:"currency,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Prices maps region codes to price entries and remembers insertion order.
type Prices struct {
	regions []string
	entries map[string]PriceEntry
}

// NewPrices returns an empty price map.
func NewPrices() *Prices {
	return &Prices{entries: make(map[string]PriceEntry)}
}

// Set stores the entry for region. A new region is appended; an existing one
// keeps its position.
func (p *Prices) Set(region string, entry PriceEntry) {
	if p.entries == nil {
		p.entries = make(map[string]PriceEntry)
	}
	if _, ok := p.entries[region]; !ok {
		p.regions = append(p.regions, region)
	}
	p.entries[region] = entry
}

// Get returns the entry for region.
func (p *Prices) Get(region string) (PriceEntry, bool) {
	if p == nil {
		return PriceEntry{}, false
	}
	e, ok := p.entries[region]
	return e, ok
}

// Regions returns region codes in insertion order.
func (p *Prices) Regions() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.regions))
	copy(out, p.regions)
	return out
}

// Len returns the number of regions.
func (p *Prices) Len() int {
	if p == nil {
		return 0
	}
	return len(p.regions)
}

// Clone returns a deep copy.
func (p *Prices) Clone() *Prices {
	if p == nil {
		return nil
	}
	out := NewPrices()
	for _, r := range p.regions {
		e := p.entries[r]
		e.Price = cloneFloat(e.Price)
		e.Discount = cloneFloat(e.Discount)
		out.Set(r, e)
	}
	return out
}

// MarshalJSON writes the regions as an object in insertion order.
func (p *Prices) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range p.regions {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.entries[r])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of region entries, keeping key order.
func (p *Prices) UnmarshalJSON(data []byte) error {
	var rec RawRecord
	if err := rec.UnmarshalJSON(data); err != nil {
		return err
	}
	out := NewPrices()
	for _, region := range rec.Keys() {
		raw, err := json.Marshal(rec.Get(region))
		if err != nil {
			return err
		}
		var e PriceEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		out.Set(region, e)
	}
	*p = *out
	return nil
}

// MarshalYAML keeps region order in YAML output.
func (p *Prices) MarshalYAML() (any, error) {
	if p == nil {
		return nil, nil
	}
	out := make(yaml.MapSlice, 0, len(p.regions))
	for _, r := range p.regions {
		out = append(out, yaml.MapItem{Key: r, Value: p.entries[r]})
	}
	return out, nil
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
