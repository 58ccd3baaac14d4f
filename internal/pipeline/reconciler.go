package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ChannelReport summarises one channel reconciliation.
type ChannelReport struct {
	Channel  Channel
	Fetched  int
	NewLeads int
	Skipped  int
	Failed   int
	Linked   int
	Creator  CreatorState
	// Err is set when the channel was aborted (fetch failure, creator conflict).
	Err error
}

// Reconciler materialises one channel's recent videos as lead records.
type Reconciler struct {
	source VideoSource
	store  RecordStore
	log    *slog.Logger
}

func NewReconciler(source VideoSource, store RecordStore, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{source: source, store: store, log: log}
}

// Reconcile fetches the channel's videos inside window, creates leads for the
// ones the store does not know yet and links them to the channel's creator.
// Per-video failures are logged and skipped. A fetch failure or a creator
// conflict aborts the channel: the report then has NewLeads == 0 and Err set.
func (r *Reconciler) Reconcile(ctx context.Context, ch Channel, window Window) ChannelReport {
	log := r.log.With("channel_id", ch.ID, "channel", ch.Name())
	report := ChannelReport{Channel: ch}

	videos, err := r.source.Fetch(ctx, ch.ID, window)
	if err != nil {
		log.Error("failed to fetch videos", "error", err)
		report.Err = fmt.Errorf("fetch videos: %w", err)
		return report
	}
	report.Fetched = len(videos)
	if len(videos) == 0 {
		log.Debug("no recent videos")
		return report
	}

	creator, err := r.store.FindCreator(ctx, ch.ID)
	if err != nil {
		log.Error("failed to resolve creator", "error", err)
		report.Err = fmt.Errorf("resolve creator: %w", err)
		return report
	}
	report.Creator = creator.State

	switch creator.State {
	case CreatorConflict:
		cerr := &ConflictError{ChannelID: ch.ID, CreatorIDs: creator.Conflicting}
		log.Error("multiple creator records for channel, skipping channel",
			"creator_ids", creator.Conflicting)
		report.Err = cerr
		return report
	case CreatorUnlinked:
		log.Warn("no creator record for channel, leads will be created without a creator link")
	case CreatorLinked:
		log = log.With("creator_id", creator.CreatorID)
	}

	for _, v := range videos {
		created, linked, err := r.reconcileVideo(ctx, log, ch, v, creator)
		switch {
		case err != nil:
			report.Failed++
		case created:
			report.NewLeads++
			if linked {
				report.Linked++
			}
		default:
			report.Skipped++
		}
	}

	log.Info("channel reconciled",
		"fetched", report.Fetched,
		"new_leads", report.NewLeads,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report
}

// reconcileVideo returns created=true when a lead was written. A relation
// failure after creation is logged and does not turn into an error.
func (r *Reconciler) reconcileVideo(ctx context.Context, log *slog.Logger, ch Channel, v Video, creator CreatorResolution) (created bool, linked bool, err error) {
	log = log.With("video_id", v.ID)

	exists, err := r.store.LeadExists(ctx, v.ID)
	if err != nil {
		log.Error("failed to check for existing lead", "error", err)
		return false, false, err
	}
	if exists {
		log.Debug("lead already exists")
		return false, false, nil
	}

	leadID, err := r.store.CreateLead(ctx, LeadFromVideo(ch, v))
	if errors.Is(err, ErrLeadExists) {
		log.Debug("lead created concurrently, skipping")
		return false, false, nil
	}
	if err != nil {
		log.Error("failed to create lead", "title", v.Title, "error", err)
		return false, false, err
	}
	log = log.With("lead_id", leadID)

	if creator.State != CreatorLinked {
		log.Warn("lead created without creator link", "title", v.Title)
		return true, false, nil
	}

	if _, err := LinkCreator(ctx, r.store, leadID, creator.CreatorID); err != nil {
		log.Error("lead created but creator link failed", "error", err)
		return true, false, nil
	}
	log.Info("lead created", "title", v.Title)
	return true, true, nil
}
