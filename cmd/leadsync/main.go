package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"thirdcoast.systems/leadsync/internal/application"
	"thirdcoast.systems/leadsync/internal/config"
	"thirdcoast.systems/leadsync/internal/pipeline"
	"thirdcoast.systems/leadsync/pkg/utils/format"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	log := application.NewLogger(os.Stderr, conf.LogLevel, conf.LogFormat).
		With("run_id", uuid.NewString())
	slog.SetDefault(log)
	log.Info("Starting lead sync", "store", conf.Backend, "source", conf.Strategy)

	channels, err := config.LoadChannels(conf.ChannelsFile, log)
	if err != nil {
		log.Error("failed to load channels", "error", err)
		return 1
	}

	client := application.NewHTTPClient(*conf)

	source, err := application.NewVideoSource(ctx, *conf, client, log)
	if err != nil {
		log.Error("failed to create video source", "error", err)
		return 1
	}

	store, closeStore, err := application.NewRecordStore(ctx, *conf, client, log)
	defer closeStore()
	if err != nil {
		log.Error("failed to create record store", "error", err)
		return 1
	}

	coordinator := pipeline.NewCoordinator(
		pipeline.NewReconciler(source, store, log),
		pipeline.WithBatchSize(conf.BatchSize),
		pipeline.WithBatchDelay(conf.BatchDelay),
		pipeline.WithLogger(log),
	)

	window := pipeline.LookbackWindow(time.Now().UTC(), conf.Lookback)
	summary := coordinator.Run(ctx, channels, window)

	for _, rep := range summary.Reports {
		if rep.Err != nil {
			log.Warn("Channel failed", "channel_id", rep.Channel.ID, "channel", rep.Channel.Name(), "error", rep.Err)
		}
	}

	log.Info("Lead sync complete",
		"new_leads", humanize.Comma(int64(summary.NewLeads)),
		"channels", summary.Channels,
		"channels_failed", summary.ChannelsFailed,
		"batches", summary.Batches,
		"elapsed", format.Elapsed(summary.Elapsed))

	if summary.Channels > 0 && summary.Processed() == 0 {
		log.Error("every channel failed")
		return 1
	}
	return 0
}
