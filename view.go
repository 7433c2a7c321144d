package playmap

import (
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/view"
)

// Compile-time interface check to ensure proper implementation.
var _ Viewer = (*client)(nil)

// Viewer composes per-user views of the published catalog.
type Viewer interface {
	// View joins the catalog with owned and wished titles and runs q
	View(owned, wishlist []catalog.CanonicalEntity, q view.Query) ([]view.Item, error)
}

// View composes the published catalog with the user's lists and runs q
// over the result. With no catalog published yet the view holds only the
// user's own titles.
func (c *client) View(owned, wishlist []catalog.CanonicalEntity, q view.Query) ([]view.Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var items []catalog.CanonicalEntity
	if doc := c.current(); doc != nil {
		items = doc.Items
	}

	composer := &view.Composer{
		Now:               c.options.now,
		GoodDealThreshold: c.options.goodDealThreshold,
	}
	out, err := q.Run(composer.Compose(items, owned, wishlist))
	if err != nil {
		return nil, errors.WrapResource("query", "view", "", err)
	}
	return out, nil
}
