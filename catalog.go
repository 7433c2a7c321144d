package playmap

import (
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ Catalog = (*client)(nil)

// Catalog provides copy-on-read access to the published catalog.
type Catalog interface {
	// Catalog returns a copy of the current document
	Catalog() (*catalog.Document, error)
}

// Catalog returns a copy of the current document, or ErrNoCatalog before
// the first successful rebuild.
func (c *client) Catalog() (*catalog.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.doc == nil {
		return nil, errors.ErrNoCatalog
	}
	return cloneDocument(c.doc), nil
}

// current returns the live document without copying. Callers must not
// mutate it.
func (c *client) current() *catalog.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc
}

func cloneDocument(doc *catalog.Document) *catalog.Document {
	out := &catalog.Document{Metadata: doc.Metadata}
	out.Metadata.Sources = append([]string(nil), doc.Metadata.Sources...)
	if p := doc.Metadata.Filters.PopularityMin; p != nil {
		out.Metadata.Filters.PopularityMin = catalog.Ptr(*p)
	}
	out.Items = make([]catalog.CanonicalEntity, len(doc.Items))
	for i := range doc.Items {
		out.Items[i] = doc.Items[i].Clone()
	}
	return out
}
