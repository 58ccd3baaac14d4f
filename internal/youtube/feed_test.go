package youtube

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/leadsync/internal/pipeline"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func atomEntryXML(id, title, published, thumb string) string {
	thumbXML := ""
	if thumb != "" {
		thumbXML = fmt.Sprintf(`<media:thumbnail url="%s" width="480" height="360"/>`, thumb)
	}
	return fmt.Sprintf(`
 <entry>
  <id>yt:video:%[1]s</id>
  <yt:videoId>%[1]s</yt:videoId>
  <yt:channelId>UCtest123456789012345678</yt:channelId>
  <title>%[2]s</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=%[1]s"/>
  <published>%[3]s</published>
  <media:group>
   <media:title>%[2]s</media:title>
   %[4]s
  </media:group>
 </entry>`, id, title, published, thumbXML)
}

func atomFeedXML(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <title>Test Channel</title>` + strings.Join(entries, "") + `
</feed>`
}

func feedServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "UCtest123456789012345678", r.URL.Query().Get("channel_id"))
		w.Header().Set("Content-Type", "application/atom+xml")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedSource_WindowFiltering(t *testing.T) {
	day := 24 * time.Hour
	body := atomFeedXML(
		atomEntryXML("aaaaaaaaaa1", "One day", testNow.Add(-1*day).Format(time.RFC3339), "https://i.ytimg.com/vi/aaaaaaaaaa1/hqdefault.jpg"),
		atomEntryXML("aaaaaaaaaa5", "Five days", testNow.Add(-5*day).Format(time.RFC3339), ""),
		atomEntryXML("aaaaaaaaa10", "Ten days", testNow.Add(-10*day).Format(time.RFC3339), ""),
	)
	srv := feedServer(t, body, http.StatusOK)
	src := NewFeedSource(srv.Client(), WithFeedURL(srv.URL+"/feeds/videos.xml"))

	videos, err := src.Fetch(context.Background(), "UCtest123456789012345678", pipeline.LookbackWindow(testNow, 3*day))
	require.NoError(t, err)
	require.Len(t, videos, 1)
	require.Equal(t, "aaaaaaaaaa1", videos[0].ID)
	require.Equal(t, "One day", videos[0].Title)
	require.Equal(t, "https://youtube.com/watch?v=aaaaaaaaaa1", videos[0].URL)
	require.Equal(t, "https://i.ytimg.com/vi/aaaaaaaaaa1/hqdefault.jpg", videos[0].ThumbnailURL)
	require.True(t, testNow.Add(-1*day).Equal(videos[0].PublishedAt))
}

func TestFeedSource_UnparseableDateKept(t *testing.T) {
	body := atomFeedXML(atomEntryXML("bbbbbbbbbbb", "Undated", "not-a-date", ""))
	srv := feedServer(t, body, http.StatusOK)
	src := NewFeedSource(srv.Client(), WithFeedURL(srv.URL))

	videos, err := src.Fetch(context.Background(), "UCtest123456789012345678", pipeline.LookbackWindow(testNow, time.Hour))
	require.NoError(t, err)
	require.Len(t, videos, 1)
	require.True(t, videos[0].PublishedAt.IsZero())
	require.Empty(t, videos[0].ThumbnailURL)
}

func TestFeedSource_EmptyFeed(t *testing.T) {
	srv := feedServer(t, atomFeedXML(), http.StatusOK)
	src := NewFeedSource(srv.Client(), WithFeedURL(srv.URL))

	videos, err := src.Fetch(context.Background(), "UCtest123456789012345678", pipeline.LookbackWindow(testNow, time.Hour))
	require.NoError(t, err)
	require.Empty(t, videos)
}

func TestFeedSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrChannelNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := feedServer(t, "", tt.status)
			src := NewFeedSource(srv.Client(), WithFeedURL(srv.URL))

			_, err := src.Fetch(context.Background(), "UCtest123456789012345678", pipeline.LookbackWindow(testNow, time.Hour))
			require.ErrorIs(t, err, tt.wantErr)
			var serr *SourceError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, "feed", serr.Source)
		})
	}
}

func TestFeedSource_MalformedXML(t *testing.T) {
	srv := feedServer(t, "<feed><entry>", http.StatusOK)
	src := NewFeedSource(srv.Client(), WithFeedURL(srv.URL))

	_, err := src.Fetch(context.Background(), "UCtest123456789012345678", pipeline.LookbackWindow(testNow, time.Hour))
	require.ErrorContains(t, err, "parse atom feed")
}

func TestFeedSource_WarnsWhenFeedWindowIsFull(t *testing.T) {
	entries := make([]string, 0, FeedWindowSize)
	for i := 0; i < FeedWindowSize; i++ {
		published := testNow.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339)
		entries = append(entries, atomEntryXML(fmt.Sprintf("ccccccccc%02d", i), "v", published, ""))
	}
	srv := feedServer(t, atomFeedXML(entries...), http.StatusOK)

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	src := NewFeedSource(srv.Client(), WithFeedURL(srv.URL), WithFeedLogger(log))

	videos, err := src.Fetch(context.Background(), "UCtest123456789012345678", pipeline.LookbackWindow(testNow, 7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, videos, FeedWindowSize)
	require.Contains(t, logs.String(), "possible missed videos")
}

func TestParsePublished(t *testing.T) {
	require.True(t, ParsePublished("").IsZero())
	require.True(t, ParsePublished("yesterday").IsZero())
	require.Equal(t, time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC), ParsePublished("2026-10-16T10:00:00-05:00"))
}
