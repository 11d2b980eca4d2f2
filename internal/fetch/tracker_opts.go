package fetch

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type TrackerOpt func(*Tracker)

// WithClient sets the http client used for every request
func WithClient(c *http.Client) TrackerOpt {
	return func(t *Tracker) {
		t.client = c
	}
}

// WithLogger sets the logger used by the error path
func WithLogger(l logrus.FieldLogger) TrackerOpt {
	return func(t *Tracker) {
		t.logger = l
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) TrackerOpt {
	return func(t *Tracker) {
		t.headers.Add(key, value)
	}
}
