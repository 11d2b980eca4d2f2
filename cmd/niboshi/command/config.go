package command

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	LogLevel        string        `json:"log_level"`
	LogFile         string        `json:"log_file"`
	RefreshInterval string        `json:"refresh_interval"`
	Api             ApiConfig     `json:"api"`
	Ui              UiConfig      `json:"ui"`
	Nats            NatsConfig    `json:"nats"`
	Console         ConsoleConfig `json:"console"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.LogLevel != "" {
		_, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			el.Add(fmt.Errorf("parsing log_level: %w", err))
		}
	}

	if c.RefreshInterval != "" {
		d, err := time.ParseDuration(c.RefreshInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing refresh_interval: %w", err))
		} else if d < 10*time.Second {
			el.Add(fmt.Errorf("refresh_interval must be at least 10 seconds"))
		}
	}

	el.Add(c.Api.validate())
	el.Add(c.Ui.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Console.validate())

	return el.Err()
}

// refreshInterval is zero when periodic reloads are disabled.
func (c *Config) refreshInterval() time.Duration {
	if c.RefreshInterval == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.RefreshInterval)
	return d
}

// buildLogger writes to log_file when set. With the terminal UI on and no
// log file, log output is discarded so it cannot corrupt the screen.
func (c *Config) buildLogger() (*logrus.Logger, error) {
	logger := logrus.New()

	if c.LogLevel != "" {
		lvl, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parsing log_level: %w", err)
		}
		logger.SetLevel(lvl)
	}

	switch {
	case c.LogFile != "":
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log_file: %w", err)
		}
		logger.SetOutput(f)
		logger.SetFormatter(&logrus.JSONFormatter{})
	case c.Ui.Enabled:
		logger.SetOutput(io.Discard)
	}

	return logger, nil
}
