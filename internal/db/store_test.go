package db

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/leadsync/internal/pipeline"
	"thirdcoast.systems/leadsync/internal/videoid"
)

// testStore connects to LEADSYNC_TEST_DATABASE_DSN, migrates it and truncates
// the lead tables. Tests are skipped when the variable is unset.
func testStore(t *testing.T) (*Store, *DatabaseConnection) {
	t.Helper()
	dsn := os.Getenv("LEADSYNC_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("LEADSYNC_TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := NewDatabaseConnection(ctx, pool)
	require.NoError(t, err)
	require.NoError(t, conn.Migrate(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, err = pool.Exec(ctx, "TRUNCATE lead_creators, leads, creators")
	require.NoError(t, err)
	return NewStore(conn), conn
}

func TestStore_CreateLeadOnce(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	published := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	lead := pipeline.NewLead{
		Title:       "Launch day",
		VideoID:     "ggLajT7aMMk",
		URL:         videoid.WatchURL("ggLajT7aMMk"),
		ChannelID:   "UC1",
		ChannelName: "Chan",
		PublishedAt: &published,
		Status:      pipeline.LeadStatusPendingReview,
	}

	exists, err := store.LeadExists(ctx, lead.VideoID)
	require.NoError(t, err)
	require.False(t, exists)

	id, err := store.CreateLead(ctx, lead)
	require.NoError(t, err)
	require.Equal(t, videoid.LeadUUID(lead.VideoID).String(), id)

	exists, err = store.LeadExists(ctx, lead.VideoID)
	require.NoError(t, err)
	require.True(t, exists)

	_, err = store.CreateLead(ctx, lead)
	require.ErrorIs(t, err, pipeline.ErrLeadExists)
}

func TestStore_OptionalFieldsStoredAsNull(t *testing.T) {
	store, conn := testStore(t)
	ctx := context.Background()

	_, err := store.CreateLead(ctx, pipeline.NewLead{Title: "Bare", VideoID: "bare0000001", ChannelID: "UC1"})
	require.NoError(t, err)

	var thumb *string
	var published *time.Time
	err = conn.QueryRow(ctx, "SELECT thumbnail_url, published_at FROM leads WHERE video_id = $1", "bare0000001").
		Scan(&thumb, &published)
	require.NoError(t, err)
	require.Nil(t, thumb)
	require.Nil(t, published)
}

func TestStore_FindCreatorAndRelation(t *testing.T) {
	store, conn := testStore(t)
	ctx := context.Background()
	q := conn.Queries(ctx)

	res, err := store.FindCreator(ctx, "UC-none")
	require.NoError(t, err)
	require.Equal(t, pipeline.CreatorUnlinked, res.State)

	creator, err := q.InsertCreator(ctx, &InsertCreatorParams{Name: "One", ChannelID: "UC-one"})
	require.NoError(t, err)
	res, err = store.FindCreator(ctx, "UC-one")
	require.NoError(t, err)
	require.Equal(t, pipeline.Linked(UUIDString(creator)), res)

	_, err = q.InsertCreator(ctx, &InsertCreatorParams{Name: "One (dup)", ChannelID: "UC-one"})
	require.NoError(t, err)
	res, err = store.FindCreator(ctx, "UC-one")
	require.NoError(t, err)
	require.Equal(t, pipeline.CreatorConflict, res.State)
	require.Len(t, res.Conflicting, 2)

	leadID, err := store.CreateLead(ctx, pipeline.NewLead{Title: "t", VideoID: "rel00000001", ChannelID: "UC-one"})
	require.NoError(t, err)

	for range 2 {
		_, err := pipeline.LinkCreator(ctx, store, leadID, UUIDString(creator))
		require.NoError(t, err)
	}
	rel, err := store.CreatorRelation(ctx, leadID)
	require.NoError(t, err)
	require.Equal(t, []string{UUIDString(creator)}, rel)
}

func TestStore_CreatorRelationRejectsBadID(t *testing.T) {
	store := &Store{}
	_, err := store.CreatorRelation(context.Background(), "not-a-uuid")
	require.Error(t, err)
}
