package main

import (
	"context"

	"github.com/pixil98/go-service"
	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/cmd/niboshi/command"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := service.NewApp(&command.Config{}, command.WorkerBuilder(cancel))
	if err != nil {
		logrus.WithError(err).Fatal("creating application")
	}

	err = app.Run(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("running application")
	}

	logrus.Info("exiting")
}
