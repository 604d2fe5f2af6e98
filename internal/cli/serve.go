package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"homebase/internal/api"
	"homebase/internal/config"
	"homebase/internal/events"
	"homebase/internal/monitoring"
	"homebase/internal/schedule"
	"homebase/internal/suggest"
	"homebase/internal/tracker"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, metrics server and scheduler loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	debug := cfg.LogLevel == "debug"
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	services, err := suggest.NewServices(cfg.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize suggestions: %w", err)
	}

	bus := events.NewBus(256)
	collector := monitoring.NewCollector(nil)
	metricsSub, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go collector.Consume(ctx, metricsSub)

	t := tracker.New(st, tracker.Options{
		Events:      bus,
		Metrics:     collector,
		Suggestions: services,
		Staleness:   cfg.Verification.Staleness,
		Lookahead:   cfg.Scheduler.Lookahead,
	})

	loopOpts := []schedule.LoopOption{
		schedule.WithInterval(cfg.Scheduler.Interval),
		schedule.WithLookahead(cfg.Scheduler.Lookahead),
	}
	if debug {
		loopOpts = append(loopOpts, schedule.OnTick(func(r schedule.Report) {
			log.Printf("tick %s: %d due, %d pending verifications",
				r.At.Format("15:04"), len(r.Due), len(r.Pending))
		}))
	}
	loop := schedule.NewLoop(t, bus, loopOpts...)
	go loop.Run(ctx)

	var metricsServer *http.Server
	if cfg.MetricsConfig.Enabled {
		metricsServer = newMetricsServer(cfg.MetricsConfig.Port, cfg.MetricsConfig.Path, collector)
		go func() {
			log.Printf("Starting metrics server on port %d", cfg.MetricsConfig.Port)
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	household := api.NewHouseholdAPI(t, bus, collector.Monitor())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: household.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigChan:
		case <-ctx.Done():
		}

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		shutdownServers(shutdownCtx, server, metricsServer)

		cancel()
	}()

	log.Printf("Starting API server on port %d (store: %s, suggestions: %s)",
		cfg.Server.Port, cfg.Database.Driver, cfg.Suggestions.Provider)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

func newMetricsServer(port int, path string, collector *monitoring.Collector) *http.Server {
	metricsRouter := gin.Default()
	metricsRouter.GET(path, gin.WrapH(collector.Handler()))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}
}

// shutdownServers stops every non-nil server, logging failures
func shutdownServers(ctx context.Context, servers ...*http.Server) {
	for _, srv := range servers {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server %s shutdown error: %v", srv.Addr, err)
		}
	}
}
