package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/neuroband/pkg/config"
)

// configureLogger builds the command logger from the config, with the
// --log-level flag taking precedence when set.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	if levelStr, _ := cmd.Flags().GetString("log-level"); levelStr != "" {
		override := *cfg
		override.LogLevel = levelStr
		return override.NewLogger()
	}
	return cfg.NewLogger()
}
