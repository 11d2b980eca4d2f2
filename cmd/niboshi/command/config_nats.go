package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/messaging"
)

type NatsConfig struct {
	Enabled       bool   `json:"enabled"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	StartTimeout  string `json:"start_timeout"`
	SubjectPrefix string `json:"subject_prefix"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}

	if n.Port < -1 || n.Port > 65535 {
		el.Add(fmt.Errorf("port must be between -1 and 65535"))
	}

	if strings.ContainsAny(n.SubjectPrefix, " *>") {
		el.Add(fmt.Errorf("subject_prefix must not contain spaces or wildcards"))
	}

	return el.Err()
}

func (n *NatsConfig) subjectPrefix() string {
	if n.SubjectPrefix == "" {
		return messaging.DefaultSubjectPrefix
	}
	return n.SubjectPrefix
}

func (n *NatsConfig) buildNatsServer(logger logrus.FieldLogger) (*messaging.NatsServer, error) {
	opts := []messaging.NatsServerOpt{messaging.WithLogger(logger)}
	if n.StartTimeout != "" {
		d, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
