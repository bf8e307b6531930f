// entry point to app :)
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/uu4k/promotimg-back/config"
	"github.com/uu4k/promotimg-back/internal/appServer"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"version":        cfg.Server.AppVersion,
		"render_engine":  cfg.Render.Engine,
		"storage_driver": cfg.Storage.Driver,
	}).Info("config loaded")
	if err := appServer.NewServer(cfg); err != nil {
		logrus.Fatal(err.Error())
	}
}
