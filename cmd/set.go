package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"fireplus_bridge/internal/repository"
	"fireplus_bridge/internal/repository/db"
	"fireplus_bridge/internal/service"

	"github.com/spf13/cobra"
)

var setFlags struct {
	brightness    int
	volume        int
	burnRate      int
	emberBurndown bool
	led           bool
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Write settings to the controller",
	Long:  "Write one or more settings. Unset flags keep the controller's current value.",
	Args:  cobra.NoArgs,
	RunE:  runSet,
}

func init() {
	f := setCmd.Flags()
	f.IntVar(&setFlags.brightness, "brightness", 0, "panel brightness in percent (0-100)")
	f.IntVar(&setFlags.volume, "volume", 0, "speaker volume in percent (0-100, version 2 only)")
	f.IntVar(&setFlags.burnRate, "burn-rate", 0, "burn rate level")
	f.BoolVar(&setFlags.emberBurndown, "ember-burndown", false, "enable ember burndown")
	f.BoolVar(&setFlags.led, "led", false, "panel LED on (version 1 only)")
}

// settingsFromFlags keeps only the flags given on the command line.
func settingsFromFlags(cmd *cobra.Command) service.SettingsParams {
	var p service.SettingsParams
	f := cmd.Flags()
	if f.Changed("brightness") {
		p.Brightness = &setFlags.brightness
	}
	if f.Changed("volume") {
		p.Volume = &setFlags.volume
	}
	if f.Changed("burn-rate") {
		p.BurnRate = &setFlags.burnRate
	}
	if f.Changed("ember-burndown") {
		p.EmberBurndown = &setFlags.emberBurndown
	}
	if f.Changed("led") {
		p.LED = &setFlags.led
	}
	return p
}

func runSet(cmd *cobra.Command, args []string) error {
	params := settingsFromFlags(cmd)

	cfg, log, client, err := setup()
	if err != nil {
		return err
	}
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	services := service.NewService(service.Deps{
		Device:      client,
		Repos:       repository.NewRepository(conn),
		SettleDelay: cfg.Device.SettleDelay,
		Log:         log,
	})

	ctx := cmd.Context()
	if err := services.Controls.Apply(ctx, params); err != nil {
		if errors.Is(err, service.ErrInvalidSettings) {
			return err
		}
		return fmt.Errorf("apply settings: %w", err)
	}

	st, err := services.Monitoring.GetState(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
