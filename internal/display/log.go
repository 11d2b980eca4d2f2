package display

import (
	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/viewer"
)

// LogRenderer writes each finished reload through a logger. It is used when
// no terminal UI is attached.
type LogRenderer struct {
	formatter *Formatter
	logger    logrus.FieldLogger
	reloads   int
}

func NewLogRenderer(f *Formatter, logger logrus.FieldLogger) *LogRenderer {
	return &LogRenderer{formatter: f, logger: logger}
}

// Render logs a summary line and the text rendering. Snapshots that do not
// complete a new reload are logged at debug level.
func (r *LogRenderer) Render(snap viewer.Snapshot) {
	entry := r.logger.WithFields(logrus.Fields{
		"favorited": favorited(snap),
		"others":    len(snap.Remainder),
		"groups":    len(snap.Groups),
		"worlds":    snap.Worlds,
		"clicks":    snap.Counter,
	})

	if snap.Reloads == r.reloads {
		entry.Debug("view updated")
		return
	}
	r.reloads = snap.Reloads

	entry.Info("friends reloaded")
	entry.Debug("\n" + r.formatter.RenderText(snap))
}

func favorited(snap viewer.Snapshot) int {
	n := 0
	for _, g := range snap.Groups {
		n += len(g.Friends)
	}
	return n
}
