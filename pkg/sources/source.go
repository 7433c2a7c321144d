// Package sources reads catalog inputs from disk.
//
// Store feeds, owned lists and wishlists decode to raw records; critic and
// metadata caches decode to lookups keyed by match key. Every input is
// decoded independently: a malformed file is reported as a SourceError for
// that input only and never stops the others from loading.
package sources

import (
	"path/filepath"
	"slices"
	"strings"
)

// ID names an input.
type ID string

// String returns the string representation of a source name.
func (id ID) String() string {
	return string(id)
}

// Known inputs.
const (
	StoreUSID  ID = "store_us"
	StoreUKID  ID = "store_uk"
	CriticID   ID = "critic"
	MetadataID ID = "metadata"
	OwnedID    ID = "owned"
	WishlistID ID = "wishlist"
)

// IDs returns all known inputs in load order.
func IDs() []ID {
	return []ID{StoreUSID, StoreUKID, CriticID, MetadataID, OwnedID, WishlistID}
}

// IsValid returns true if the ID is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Kind selects how an input is decoded.
type Kind string

// Input kinds.
const (
	// KindRecords is a list of title records.
	KindRecords Kind = "records"
	// KindCache is a lookup of provider entries by match key.
	KindCache Kind = "cache"
)

// KindOf returns the kind of a known input. Unknown inputs are records.
func KindOf(id ID) Kind {
	switch id {
	case CriticID, MetadataID:
		return KindCache
	}
	return KindRecords
}

// Spec describes one input file.
type Spec struct {
	ID       ID
	Path     string
	Kind     Kind
	Optional bool   // a missing file yields an empty batch
	Key      string // extra object key holding the record array
}

// NewSpec builds a spec for a known input with its default kind. Owned
// and wishlist inputs also accept their name as the array key.
func NewSpec(id ID, path string, optional bool) Spec {
	s := Spec{ID: id, Path: path, Kind: KindOf(id), Optional: optional}
	if id == OwnedID || id == WishlistID {
		s.Key = string(id)
	}
	return s
}

// Name is the label records from this input are tagged with.
func (s Spec) Name() string {
	if s.ID != "" {
		return string(s.ID)
	}
	base := filepath.Base(strings.TrimSpace(s.Path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
