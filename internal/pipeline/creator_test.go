package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveCreatorIDs(t *testing.T) {
	require.Equal(t, CreatorUnlinked, ResolveCreatorIDs(nil).State)

	linked := ResolveCreatorIDs([]string{"c1"})
	require.Equal(t, CreatorLinked, linked.State)
	require.Equal(t, "c1", linked.CreatorID)

	conflict := ResolveCreatorIDs([]string{"c1", "c2"})
	require.Equal(t, CreatorConflict, conflict.State)
	require.Equal(t, []string{"c1", "c2"}, conflict.Conflicting)
	require.Empty(t, conflict.CreatorID)
}

func TestLinkCreator_SecondCallIsNoop(t *testing.T) {
	store := newMemoryStore()

	wrote, err := LinkCreator(context.Background(), store, "lead-1", "creator-1")
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = LinkCreator(context.Background(), store, "lead-1", "creator-1")
	require.NoError(t, err)
	require.False(t, wrote)

	require.Equal(t, 1, store.setCalls)
}

func TestLinkCreator_RewritesWhenRelationHasExtraMembers(t *testing.T) {
	store := newMemoryStore()
	store.relations["lead-1"] = []string{"creator-1", "creator-2"}

	wrote, err := LinkCreator(context.Background(), store, "lead-1", "creator-1")
	require.NoError(t, err)
	require.True(t, wrote)
	require.Equal(t, []string{"creator-1"}, store.relations["lead-1"])
}

func TestLinkCreator_WriteError(t *testing.T) {
	store := newMemoryStore()
	store.setErr = errBoom

	wrote, err := LinkCreator(context.Background(), store, "lead-1", "creator-1")
	require.ErrorIs(t, err, errBoom)
	require.False(t, wrote)
}

func TestFilterWindow(t *testing.T) {
	videos := []Video{
		{ID: "d1", PublishedAt: testNow.Add(-24 * time.Hour)},
		{ID: "d5", PublishedAt: testNow.Add(-5 * 24 * time.Hour)},
		{ID: "d10", PublishedAt: testNow.Add(-10 * 24 * time.Hour)},
	}

	got := FilterWindow(videos, LookbackWindow(testNow, 3*24*time.Hour))
	require.Len(t, got, 1)
	require.Equal(t, "d1", got[0].ID)
}

func TestFilterWindow_KeepsUnknownDates(t *testing.T) {
	got := FilterWindow([]Video{{ID: "undated"}}, LookbackWindow(testNow, time.Hour))
	require.Len(t, got, 1)
}

func TestLeadFromVideo(t *testing.T) {
	published := time.Date(2026, 10, 16, 8, 30, 0, 0, time.FixedZone("EST", -5*3600))
	lead := LeadFromVideo(Channel{ID: "UC1"}, Video{ID: "v", Title: "t", URL: "u", PublishedAt: published, ThumbnailURL: "  "})

	require.Equal(t, "UC1", lead.ChannelName)
	require.Empty(t, lead.ThumbnailURL)
	require.NotNil(t, lead.PublishedAt)
	require.Equal(t, time.UTC, lead.PublishedAt.Location())
	require.True(t, published.Equal(*lead.PublishedAt))
	require.Equal(t, LeadStatusPendingReview, lead.Status)
}
