// Command scheduler wires the task pool, supervisor, and optional
// control-plane HTTP server into a single runnable process.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/haseebdoesdev/go-task-scheduler/internal/api"
	"github.com/haseebdoesdev/go-task-scheduler/internal/config"
	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
	"github.com/haseebdoesdev/go-task-scheduler/internal/supervisor"
)

const version = "0.1.0"

// buildCLI assembles the scheduler binary's root command and its run
// and version subcommands.
func buildCLI() *cobra.Command {
	root := &cobra.Command{
		Use:   "scheduler",
		Short: "go-task-scheduler: a bounded, multi-policy task pool",
		Long: `scheduler runs a fixed-capacity shared task pool behind a
supervisor that spawns workers, reaps and respawns the ones that
crash, and recovers their orphaned tasks, with the selection
discipline switchable between nine interchangeable policies.`,
		Version: version,
	}

	root.AddCommand(buildRunCommand())
	root.AddCommand(buildVersionCommand())
	return root
}

func buildVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the scheduler version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func buildRunCommand() *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the pool, supervisor, and control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(algorithm)
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "", "override the configured scheduling algorithm")
	return cmd
}

func runScheduler(algorithmOverride string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log := logger.Get()
	log.Info().Msg("starting go-task-scheduler")

	name := cfg.Pool.Algorithm
	if algorithmOverride != "" {
		name = algorithmOverride
	}
	algo, err := policy.Parse(name)
	if err != nil {
		return err
	}

	p := pool.New(pool.Config{
		Capacity:           cfg.Pool.Capacity,
		MaxRetries:         cfg.Pool.MaxRetries,
		Algorithm:          algo,
		MLFQTimeSliceMs:    cfg.Pool.MLFQTimeSliceMs,
		RRTimeQuantumMs:    cfg.Pool.RRTimeQuantumMs,
		NumCPUCores:        cfg.Pool.NumCPUCores,
		MLFQPromoteAfterMs: cfg.Pool.MLFQPromoteAfterMs,
	})

	var publisher events.Publisher
	if cfg.Events.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})
		rps := events.NewRedisPubSub(client, cfg.Events.BreakerMaxFailures, cfg.Events.BreakerOpenTimeout)
		defer rps.Close()
		publisher = rps
		log.Info().Str("redis_addr", cfg.Events.RedisAddr).Msg("lifecycle event publishing enabled")
	}

	sup := supervisor.New(p, supervisor.Config{
		NumWorkers:               cfg.Supervisor.NumWorkers,
		WorkerCheckInterval:      cfg.Supervisor.WorkerCheckInterval,
		CleanupInterval:          cfg.Supervisor.CleanupInterval,
		CompletedTaskMaxAge:      cfg.Supervisor.CompletedTaskMaxAge,
		TaskTimeoutCheckInterval: cfg.Supervisor.TaskTimeoutCheckInterval,
		ShutdownTimeout:          cfg.Supervisor.ShutdownTimeout,
		LivenessGracePeriod:      cfg.Supervisor.LivenessGracePeriod,
	})
	sup.SetPublisher(publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	server := api.NewServer(cfg, p, publisher)
	server.Start(ctx)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("control API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErrCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutdown signal received")
	case err := <-httpErrCh:
		log.Error().Err(err).Msg("control API failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Supervisor.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("control API shutdown error")
	}
	server.Stop()

	cancel()
	select {
	case <-supDone:
	case <-time.After(cfg.Supervisor.ShutdownTimeout + time.Second):
		log.Warn().Msg("timed out waiting for supervisor to stop")
	}

	log.Info().Msg("go-task-scheduler stopped")
	return nil
}
