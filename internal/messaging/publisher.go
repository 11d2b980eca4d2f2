package messaging

import (
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/viewer"
)

const DefaultSubjectPrefix = "niboshi"

func StateSubject(prefix string) string  { return prefix + ".state" }
func ReloadSubject(prefix string) string { return prefix + ".reload" }
func ClickSubject(prefix string) string  { return prefix + ".click" }

type Publisher interface {
	Publish(subject string, data []byte) error
}

// SnapshotPublisher publishes every rendered snapshot as JSON.
type SnapshotPublisher struct {
	publisher Publisher
	subject   string
	logger    logrus.FieldLogger
}

func NewSnapshotPublisher(p Publisher, prefix string, logger logrus.FieldLogger) *SnapshotPublisher {
	return &SnapshotPublisher{
		publisher: p,
		subject:   StateSubject(prefix),
		logger:    logger,
	}
}

// Render implements viewer.Renderer. Snapshots produced before the server is
// up are dropped.
func (p *SnapshotPublisher) Render(snap viewer.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		p.logger.WithError(err).Error("encoding snapshot")
		return
	}

	err = p.publisher.Publish(p.subject, data)
	switch {
	case errors.Is(err, ErrNotStarted):
		p.logger.WithField("subject", p.subject).Debug("dropping snapshot, nats not started")
	case err != nil:
		p.logger.WithError(err).WithField("subject", p.subject).Warn("publishing snapshot")
	}
}
