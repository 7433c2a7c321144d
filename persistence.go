package playmap

import (
	"github.com/agentstation/playmap/internal/store"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/save"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles catalog persistence operations.
type Persistence interface {
	// Save with options
	Save(opts ...save.Option) error
}

// Save writes the current catalog document.
func (c *client) Save(opts ...save.Option) error {
	doc := c.current()
	if doc == nil {
		return errors.WrapResource("save", "catalog", "", errors.ErrNoCatalog)
	}
	return store.WriteDocument(doc, opts...)
}
