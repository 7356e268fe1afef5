package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/veloform/internal/health"
	"github.com/yourusername/veloform/internal/ingest"
	"github.com/yourusername/veloform/internal/metrics"
	"github.com/yourusername/veloform/internal/rating"
	"github.com/yourusername/veloform/internal/scheduler"
	"github.com/yourusername/veloform/internal/service"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the rating pipeline: feed polling, rating updates and dynamics sweeps",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDatabase(cmd); err != nil {
			return err
		}
		defer func() { _ = db.Close(context.Background()) }()

		engine := rating.NewEngine(rating.WithSampler(rating.NewSampler(cfg.Rating.SamplerSeed)))
		ratingSvc := service.NewRatingService(repos, engine, appLogger)
		feed := ingest.NewFeedClient(&cfg.Feed, appLogger)

		sched := scheduler.NewScheduler(ratingSvc, feed, cfg, appLogger)
		if err := sched.ScheduleFeedPoll(); err != nil {
			return err
		}
		if err := sched.ScheduleDynamicsSweep(); err != nil {
			return err
		}

		var healthSrv *health.Server
		if cfg.Metrics.Enabled {
			healthSrv = health.NewServer(cfg.App.Name, cfg.Metrics.Address, db, appLogger)
			healthSrv.Start()
		}

		if count, err := repos.Skill.Count(cmd.Context()); err == nil {
			metrics.RidersRated.Set(float64(count))
		}

		sched.Start()
		if healthSrv != nil {
			healthSrv.SetReady(true)
		}
		appLogger.Info("Daemon started")

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		appLogger.Info("Shutting down")
		sched.Stop()
		if healthSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = healthSrv.Shutdown(ctx)
		}
		return nil
	},
}
