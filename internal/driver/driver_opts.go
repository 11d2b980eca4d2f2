package driver

import "time"

type RefreshDriverOpt func(*RefreshDriver)

// WithInterval sets the time between ticks. Non-positive values are ignored.
func WithInterval(interval time.Duration) RefreshDriverOpt {
	return func(d *RefreshDriver) {
		if interval > 0 {
			d.interval = interval
		}
	}
}
