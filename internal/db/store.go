package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"thirdcoast.systems/leadsync/internal/pipeline"
	"thirdcoast.systems/leadsync/internal/videoid"
)

// Store is a pipeline.RecordStore backed by PostgreSQL. Lead IDs are derived
// from the video ID, so a lead row has the same ID across runs and hosts.
type Store struct {
	db *DatabaseConnection
}

var _ pipeline.RecordStore = (*Store)(nil)

func NewStore(db *DatabaseConnection) *Store {
	return &Store{db: db}
}

func (s *Store) LeadExists(ctx context.Context, videoID string) (bool, error) {
	exists, err := s.db.Queries(ctx).LeadExistsByVideoID(ctx, videoID)
	if err != nil {
		return false, fmt.Errorf("lead exists: %w", err)
	}
	return exists, nil
}

func (s *Store) CreateLead(ctx context.Context, lead pipeline.NewLead) (string, error) {
	status := lead.Status
	if status == "" {
		status = pipeline.LeadStatusPendingReview
	}

	id, err := s.db.Queries(ctx).InsertLead(ctx, &InsertLeadParams{
		ID:                       PgUUID(videoid.LeadUUID(lead.VideoID)),
		VideoID:                  lead.VideoID,
		Title:                    strings.TrimSpace(lead.Title),
		Url:                      NilIfEmpty(strings.TrimSpace(lead.URL)),
		ChannelID:                lead.ChannelID,
		ChannelName:              lead.ChannelName,
		PublishedAt:              TimePtrToTimestamptz(lead.PublishedAt),
		ThumbnailUrl:             NilIfEmpty(strings.TrimSpace(lead.ThumbnailURL)),
		Status:                   string(status),
		ApprovedForTranscription: lead.ApprovedForTranscription,
	})
	if errors.Is(err, pgx.ErrNoRows) || IsUniqueViolation(err) {
		// ON CONFLICT DO NOTHING returns no row.
		return "", pipeline.ErrLeadExists
	}
	if err != nil {
		return "", fmt.Errorf("insert lead: %w", err)
	}
	return UUIDString(id), nil
}

func (s *Store) FindCreator(ctx context.Context, channelID string) (pipeline.CreatorResolution, error) {
	rows, err := s.db.Queries(ctx).ListCreatorIDsByChannel(ctx, channelID)
	if err != nil {
		return pipeline.CreatorResolution{}, fmt.Errorf("list creators: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, id := range rows {
		ids = append(ids, UUIDString(id))
	}
	return pipeline.ResolveCreatorIDs(ids), nil
}

func (s *Store) CreatorRelation(ctx context.Context, leadID string) ([]string, error) {
	id, err := ParsePgUUID(leadID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Queries(ctx).ListLeadCreatorIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list lead creators: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, UUIDString(r))
	}
	return ids, nil
}

// SetCreatorRelation replaces the lead's relation with exactly creatorID.
func (s *Store) SetCreatorRelation(ctx context.Context, leadID, creatorID string) error {
	lead, err := ParsePgUUID(leadID)
	if err != nil {
		return err
	}
	creator, err := ParsePgUUID(creatorID)
	if err != nil {
		return err
	}

	q, tx, err := s.db.NewWithTX(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := q.DeleteLeadCreators(ctx, lead); err != nil {
		return fmt.Errorf("clear lead creators: %w", err)
	}
	if err := q.InsertLeadCreator(ctx, &InsertLeadCreatorParams{LeadID: lead, CreatorID: creator}); err != nil {
		return fmt.Errorf("insert lead creator: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit lead creator: %w", err)
	}
	return nil
}
