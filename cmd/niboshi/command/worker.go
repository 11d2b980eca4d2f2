package command

import (
	"fmt"

	"github.com/pixil98/go-service"

	"github.com/pixil98/niboshi/internal/driver"
	"github.com/pixil98/niboshi/internal/listener"
	"github.com/pixil98/niboshi/internal/messaging"
	"github.com/pixil98/niboshi/internal/viewer"
)

// WorkerBuilder returns the worker list builder. The terminal UI calls quit
// when the user closes it.
func WorkerBuilder(quit func()) func(config interface{}) (service.WorkerList, error) {
	return func(config interface{}) (service.WorkerList, error) {
		cfg, ok := config.(*Config)
		if !ok {
			return nil, fmt.Errorf("unable to cast config")
		}
		return buildWorkers(cfg, quit)
	}
}

func buildWorkers(cfg *Config, quit func()) (service.WorkerList, error) {
	logger, err := cfg.buildLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	client, err := cfg.Api.buildClient(logger)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	v := viewer.NewViewer(client, viewer.WithLogger(logger.WithField("module", "viewer")))

	renderer, view, err := cfg.Ui.buildRenderer(v, logger, quit)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	v.AddRenderer(renderer)

	workers := service.WorkerList{
		"viewer": v,
	}
	if view != nil {
		workers["tui"] = view
	}

	if d := cfg.refreshInterval(); d > 0 {
		workers["driver"] = driver.NewRefreshDriver([]driver.Manager{v}, driver.WithInterval(d))
	}

	if cfg.Nats.Enabled {
		natsLogger := logger.WithField("module", "messaging")
		server, err := cfg.Nats.buildNatsServer(natsLogger)
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		prefix := cfg.Nats.subjectPrefix()

		v.AddRenderer(messaging.NewSnapshotPublisher(server, prefix, natsLogger))
		workers["nats"] = server
		workers["commands"] = messaging.NewCommandSubscriber(server, v, prefix, natsLogger)
	}

	if len(cfg.Console.Listeners) > 0 {
		consoleLogger := logger.WithField("module", "console")
		f, err := cfg.Ui.buildFormatter()
		if err != nil {
			return nil, fmt.Errorf("creating console formatter: %w", err)
		}
		console := listener.NewConsole(v, f, consoleLogger)
		v.AddRenderer(console)

		listeners := make(service.WorkerList, len(cfg.Console.Listeners))
		for i, l := range cfg.Console.Listeners {
			w, err := l.BuildListener(cfg.Console.host(), console, consoleLogger)
			if err != nil {
				return nil, fmt.Errorf("creating listener %d: %w", i, err)
			}
			listeners[fmt.Sprintf("listener-%d", i)] = w
		}
		workers["listeners"] = &listeners
	}

	return workers, nil
}
