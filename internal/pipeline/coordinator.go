package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 1 * time.Second
)

// ChannelReconciler is the per-channel unit of work run by a Coordinator.
type ChannelReconciler interface {
	Reconcile(ctx context.Context, ch Channel, window Window) ChannelReport
}

// RunSummary aggregates a whole run.
type RunSummary struct {
	NewLeads       int
	Channels       int
	ChannelsFailed int
	Batches        int
	Reports        []ChannelReport
	Elapsed        time.Duration
}

// Processed returns the number of channels that completed without a fatal error.
func (s RunSummary) Processed() int {
	return s.Channels - s.ChannelsFailed
}

// Coordinator fans a ChannelReconciler out over the configured channels in
// sequential batches. Channels inside a batch run concurrently and a failing
// channel never cancels its siblings.
type Coordinator struct {
	reconciler ChannelReconciler
	batchSize  int
	batchDelay time.Duration
	log        *slog.Logger
}

type CoordinatorOption func(*Coordinator)

func WithBatchSize(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func WithBatchDelay(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d >= 0 {
			c.batchDelay = d
		}
	}
}

func WithLogger(log *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

func NewCoordinator(reconciler ChannelReconciler, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		reconciler: reconciler,
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Batches partitions channels into consecutive groups of at most size.
func Batches(channels []Channel, size int) [][]Channel {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]Channel
	for start := 0; start < len(channels); start += size {
		end := min(start+size, len(channels))
		out = append(out, channels[start:end])
	}
	return out
}

// Run reconciles every channel and returns the aggregated summary. It only
// stops early when ctx is cancelled between batches.
func (c *Coordinator) Run(ctx context.Context, channels []Channel, window Window) RunSummary {
	started := time.Now()
	batches := Batches(channels, c.batchSize)
	summary := RunSummary{Reports: make([]ChannelReport, 0, len(channels))}

	c.log.Info("starting run",
		"channels", len(channels),
		"batches", len(batches),
		"batch_size", c.batchSize,
		"window_start", humanize.Time(window.Start))

	for i, batch := range batches {
		if i > 0 && c.batchDelay > 0 {
			select {
			case <-ctx.Done():
				c.log.Warn("run interrupted between batches", "completed_batches", i, "error", ctx.Err())
				summary.Elapsed = time.Since(started)
				return summary
			case <-time.After(c.batchDelay):
			}
		}

		reports := c.runBatch(ctx, batch, window)
		summary.Batches++
		for _, rep := range reports {
			summary.Channels++
			summary.NewLeads += rep.NewLeads
			if rep.Err != nil {
				summary.ChannelsFailed++
			}
			summary.Reports = append(summary.Reports, rep)
		}
		c.log.Debug("batch complete", "batch", i+1, "channels", len(batch))
	}

	summary.Elapsed = time.Since(started)
	return summary
}

// runBatch reconciles every channel in batch concurrently and waits for all of them.
func (c *Coordinator) runBatch(ctx context.Context, batch []Channel, window Window) []ChannelReport {
	reports := make([]ChannelReport, len(batch))

	// The group is built without a derived context so one channel's failure
	// never cancels its siblings. Tasks always return nil.
	var g errgroup.Group
	for i, ch := range batch {
		g.Go(func() error {
			reports[i] = c.reconcileSafely(ctx, ch, window)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

func (c *Coordinator) reconcileSafely(ctx context.Context, ch Channel, window Window) (report ChannelReport) {
	defer func() {
		if p := recover(); p != nil {
			c.log.Error("channel reconciliation panicked", "channel_id", ch.ID, "panic", p)
			report = ChannelReport{Channel: ch, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	return c.reconciler.Reconcile(ctx, ch, window)
}
