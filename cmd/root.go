package main

import (
	"fireplus_bridge/internal/config"
	"fireplus_bridge/internal/fireplus"
	"fireplus_bridge/internal/logger"

	"github.com/spf13/cobra"
)

var configDir string

// Without a subcommand the bridge serves.
var rootCmd = &cobra.Command{
	Use:          "fireplus-bridge",
	Short:        "Bridge for the Drooff fire+ stove controller",
	Long:         "Polls a Drooff fire+ controller, serves its state over HTTP, WebSocket, MQTT and Prometheus, and writes settings back.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(setCmd)
}

// setup loads configuration and builds the process logger and device client.
func setup() (*config.Config, *logger.Logger, *fireplus.Client, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.Get(cfg.Log.Level)

	family, err := fireplus.ParseIPFamily(cfg.Device.IPFamily)
	if err != nil {
		return nil, nil, nil, err
	}
	client := fireplus.NewClient(cfg.Device.Host,
		fireplus.WithIPFamily(family),
		fireplus.WithTimeout(cfg.Device.Timeout),
		fireplus.WithLogger(log.Named("client")),
	)
	return cfg, log, client, nil
}
