package messaging

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Subscriber interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Controls receives commands arriving over NATS.
type Controls interface {
	Reload()
	Click()
}

// CommandSubscriber forwards reload and click commands to the viewer.
type CommandSubscriber struct {
	subscriber Subscriber
	controls   Controls
	prefix     string
	logger     logrus.FieldLogger
}

func NewCommandSubscriber(s Subscriber, controls Controls, prefix string, logger logrus.FieldLogger) *CommandSubscriber {
	return &CommandSubscriber{
		subscriber: s,
		controls:   controls,
		prefix:     prefix,
		logger:     logger,
	}
}

func (c *CommandSubscriber) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-c.subscriber.Ready():
	}

	handlers := map[string]func(){
		ReloadSubject(c.prefix): c.controls.Reload,
		ClickSubject(c.prefix):  c.controls.Click,
	}

	for subject, h := range handlers {
		unsub, err := c.subscriber.Subscribe(subject, c.handler(subject, h))
		if err != nil {
			return fmt.Errorf("subscribing to commands: %w", err)
		}
		defer unsub()
	}

	c.logger.WithField("prefix", c.prefix).Info("listening for commands")
	<-ctx.Done()

	return nil
}

func (c *CommandSubscriber) handler(subject string, f func()) func([]byte) {
	return func([]byte) {
		c.logger.WithField("subject", subject).Debug("command received")
		f()
	}
}
