package playmap

import (
	"context"
	"time"

	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRebuilder = (*client)(nil)

// InputsFunc gathers the inputs for one automatic rebuild.
type InputsFunc func(ctx context.Context) (Inputs, error)

// AutoRebuilder provides controls for periodic rebuilds.
type AutoRebuilder interface {
	// AutoRebuildOn starts rebuilding on the configured interval
	AutoRebuildOn() error

	// AutoRebuildOff stops periodic rebuilds
	AutoRebuildOff() error
}

// AutoRebuildOn starts rebuilding on the configured interval.
func (c *client) AutoRebuildOn() error {
	if c.options.autoRebuildFunc == nil {
		return errors.NewConfigError("auto_rebuild", "no inputs function configured", nil)
	}
	if c.options.autoRebuildInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRebuildInterval",
			Value:   c.options.autoRebuildInterval,
			Message: "rebuild interval must be positive",
		}
	}

	if err := c.AutoRebuildOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	ticker := time.NewTicker(c.options.autoRebuildInterval)
	ctx, cancel := context.WithCancel(context.Background())
	c.rebuildTicker = ticker
	c.rebuildCancel = cancel

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.rebuildOnce(ctx); err != nil {
					if errors.IsCanceled(err) && ctx.Err() != nil {
						return
					}
					logging.Error().Err(err).Msg("Auto-rebuild failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// AutoRebuildOff stops periodic rebuilds. It is safe to call when none are
// running.
func (c *client) AutoRebuildOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	if c.rebuildTicker != nil {
		c.rebuildTicker.Stop()
		c.rebuildTicker = nil
	}
	if c.rebuildCancel != nil {
		c.rebuildCancel()
		c.rebuildCancel = nil
	}
	return nil
}

func (c *client) rebuildOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, constants.RebuildContextTimeout)
	defer cancel()

	in, err := c.options.autoRebuildFunc(ctx)
	if err != nil {
		return errors.WrapResource("gather", "inputs", "", err)
	}
	_, err = c.Rebuild(ctx, in)
	return err
}
