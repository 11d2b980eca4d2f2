package viewer

import (
	"time"

	"github.com/sirupsen/logrus"
)

type ViewerOpt func(*Viewer)

// WithLogger sets the logger for the event loop
func WithLogger(l logrus.FieldLogger) ViewerOpt {
	return func(v *Viewer) {
		v.logger = l
	}
}

// WithQueueSize sets how many pending messages the loop buffers
func WithQueueSize(n int) ViewerOpt {
	return func(v *Viewer) {
		if n > 0 {
			v.msgs = make(chan Msg, n)
		}
	}
}

// WithRenderers registers renderers up front
func WithRenderers(rs ...Renderer) ViewerOpt {
	return func(v *Viewer) {
		v.renderers = append(v.renderers, rs...)
	}
}

// WithClock overrides the time source used to stamp reloads
func WithClock(now func() time.Time) ViewerOpt {
	return func(v *Viewer) {
		v.now = now
	}
}
