package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-zarinpal/config"
)

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(level)
	return nil
}
