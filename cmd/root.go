package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Robaed/changachanga-dev/config"
)

var rootCmd = &cobra.Command{
	Use:   "changachanga",
	Short: "ChangaChanga contributions service",
	Long:  "A fundraising-channel service handling channel management, contributions over mobile money and card rails, and provider callbacks.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
