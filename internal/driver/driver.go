package driver

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultInterval = time.Minute
)

// Manager is anything that wants to run on every tick.
type Manager interface {
	Tick(context.Context) error
}

// ManagerFunc adapts a function to a Manager.
type ManagerFunc func(context.Context) error

func (f ManagerFunc) Tick(ctx context.Context) error {
	return f(ctx)
}

// RefreshDriver ticks its managers at a fixed interval.
type RefreshDriver struct {
	interval time.Duration
	managers []Manager
}

func NewRefreshDriver(managers []Manager, opts ...RefreshDriverOpt) *RefreshDriver {
	d := &RefreshDriver{
		interval: DefaultInterval,
		managers: managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *RefreshDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *RefreshDriver) Tick(ctx context.Context) error {
	for i, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return fmt.Errorf("ticking manager %d: %w", i, err)
		}
	}
	return nil
}
