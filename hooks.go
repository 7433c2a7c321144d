package playmap

import (
	"sync"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/logging"
	"github.com/agentstation/playmap/pkg/reconcile"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for catalog events.
type (
	// TitleAddedHook is called when a title enters the published catalog
	TitleAddedHook func(title catalog.CanonicalEntity)

	// TitleRemovedHook is called when a title leaves the published catalog
	TitleRemovedHook func(title catalog.CanonicalEntity)

	// PriceChangedHook is called when a kept title's best price moves
	PriceChangedHook func(change reconcile.PriceChange)
)

// Hooks provides event callback registration. Callbacks run on the
// rebuilding goroutine once the new catalog is published, so a callback may
// read the catalog or start another Rebuild.
type Hooks interface {
	OnTitleAdded(TitleAddedHook)
	OnTitleRemoved(TitleRemovedHook)
	OnPriceChanged(PriceChangedHook)
}

// hooks manages event callbacks for catalog changes.
type hooks struct {
	mu             sync.RWMutex
	onTitleAdded   []TitleAddedHook
	onTitleRemoved []TitleRemovedHook
	onPriceChanged []PriceChangedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnTitleAdded registers a callback for added titles.
func (c *client) OnTitleAdded(fn TitleAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onTitleAdded = append(c.hooks.onTitleAdded, fn)
}

// OnTitleRemoved registers a callback for removed titles.
func (c *client) OnTitleRemoved(fn TitleRemovedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onTitleRemoved = append(c.hooks.onTitleRemoved, fn)
}

// OnPriceChanged registers a callback for best-price movements.
func (c *client) OnPriceChanged(fn PriceChangedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onPriceChanged = append(c.hooks.onPriceChanged, fn)
}

// trigger fires the callbacks for a changeset. A panicking hook is logged
// and does not stop the others.
func (h *hooks) trigger(cs reconcile.Changeset) {
	if cs.IsEmpty() {
		return
	}

	h.mu.RLock()
	added := append([]TitleAddedHook(nil), h.onTitleAdded...)
	removed := append([]TitleRemovedHook(nil), h.onTitleRemoved...)
	changed := append([]PriceChangedHook(nil), h.onPriceChanged...)
	h.mu.RUnlock()

	for _, item := range cs.Added {
		for _, hook := range added {
			safeCall("title_added", func() { hook(item) })
		}
	}
	for _, item := range cs.Removed {
		for _, hook := range removed {
			safeCall("title_removed", func() { hook(item) })
		}
	}
	for _, change := range cs.PriceChanges {
		for _, hook := range changed {
			safeCall("price_changed", func() { hook(change) })
		}
	}
}

func safeCall(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Str("hook", event).Interface("panic", r).Msg("Hook panicked")
		}
	}()
	fn()
}
