package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fireplus_bridge/internal/handlers"
	"fireplus_bridge/internal/metrics"
	"fireplus_bridge/internal/mqtt"
	"fireplus_bridge/internal/repository"
	"fireplus_bridge/internal/repository/db"
	"fireplus_bridge/internal/server"
	"fireplus_bridge/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 10 * time.Second
	mqttBackoffStart = time.Second
	mqttBackoffMax   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the poller and serve HTTP, WebSocket, MQTT and metrics",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, client, err := setup()
	if err != nil {
		return err
	}

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("sqlite_close_failed", "err", cerr)
		}
	}()

	var (
		publishers []service.Publisher
		prom       *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		prom = metrics.New()
		publishers = append(publishers, prom)
	}

	// the bridge both publishes and applies commands; Controls is bound once built
	var bridge *mqtt.Bridge
	controls := &lateControls{}
	if cfg.MQTT.Enabled {
		bridge = mqtt.New(cfg.MQTT, controls, log)
		publishers = append(publishers, bridge)
	}

	services := service.NewService(service.Deps{
		Device:      client,
		Repos:       repository.NewRepository(conn),
		Publishers:  publishers,
		SettleDelay: cfg.Device.SettleDelay,
		Log:         log,
	})
	controls.Controls = services.Controls

	var metricsHTTP http.Handler
	if prom != nil {
		metricsHTTP = prom.Handler()
	}
	apiHandler := handlers.NewHandler(services, log, metricsHTTP)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if bridge != nil {
		g.Go(func() error {
			// only fails when ctx is canceled before the broker came up
			if err := bridge.Connect(ctx, mqttBackoffStart, mqttBackoffMax); err != nil {
				return nil
			}
			<-ctx.Done()
			bridge.Close()
			return nil
		})
	}

	g.Go(func() error {
		services.Poller.Run(ctx, cfg.Poll.Interval)
		return nil
	})

	srv := &server.Server{}
	g.Go(func() error {
		log.Infow("http_listening", "port", cfg.HTTP.Port, "device", client.BaseURL())
		return srv.Run(cfg.HTTP.Port, apiHandler.InitRoutes())
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Infow("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// lateControls forwards to Controls once it is set.
type lateControls struct {
	service.Controls
}

var errControlsNotReady = errors.New("controls not ready")

func (c *lateControls) Apply(ctx context.Context, p service.SettingsParams) error {
	if c.Controls == nil {
		return errControlsNotReady
	}
	return c.Controls.Apply(ctx, p)
}
