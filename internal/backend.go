package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markusressel/growctl/internal/api"
	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/controller"
	"github.com/markusressel/growctl/internal/statistics"
	"github.com/markusressel/growctl/internal/store"
	"github.com/markusressel/growctl/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RunDaemon() {
	config := configuration.CurrentConfig

	s, err := store.NewStore(config.Store)
	if err != nil {
		ui.Fatal("Unable to open state store: %v", err)
	}

	controlLoop := controller.NewControlLoop(config, s, time.Now)

	registry := prometheus.NewRegistry()
	registerCollectors(registry, controlLoop)

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		// === control loop
		g.Add(func() error {
			err := controlLoop.Run(ctx)
			if err != nil {
				ui.Error("Control loop failed: %v", err)
			}
			ui.Info("Control loop stopped.")
			return err
		}, func(err error) {
			cancel()
		})
	}
	{
		enabled := config.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			server := createStatisticsServer(config.Statistics.Port, registry)
			g.Add(func() error {
				ui.Info("Serving metrics on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				ui.Info("Stopping statistics server...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := server.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping statistics server: %v", err)
				}
			})
		}
	}
	{
		enabled := config.Api.Enabled
		if enabled {
			// === REST api
			rest := api.CreateRestService(controlLoop, registry)
			addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)
			g.Add(func() error {
				ui.Info("Serving REST api on %s", addr)
				if err := rest.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start REST api (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := rest.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping REST api: %v", err)
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		stop := make(chan struct{})

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-stop:
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			close(stop)
			cancel()
		})
	}

	err = g.Run()
	if closeErr := s.Close(); closeErr != nil {
		ui.Warning("Error closing state store: %v", closeErr)
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

func registerCollectors(registerer prometheus.Registerer, controlLoop *controller.ControlLoop) {
	statistics.Register(registerer,
		statistics.NewPointCollector(controlLoop),
		statistics.NewLoopCollector(controlLoop),
		statistics.NewHeartbeatCollector(controlLoop),
		statistics.NewStatusCollector(controlLoop),
	)
}

func createStatisticsServer(port int, gatherer prometheus.Gatherer) *http.Server {
	if port <= 0 || port >= 65535 {
		port = 9000
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
