package main

import (
	"os"

	"github.com/ralt/aer/internal/cli"
	"github.com/ralt/aer/internal/models"
	"github.com/sirupsen/logrus"
)

func main() {
	// Setup logging format
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("An error occurred during processing: '%v'", err)
		os.Exit(models.ExitCode(err))
	}
}
