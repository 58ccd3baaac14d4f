package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"thirdcoast.systems/leadsync/internal/pipeline"
	"thirdcoast.systems/leadsync/internal/videoid"
)

const (
	// DefaultFeedURL is the public per-channel Atom feed endpoint.
	DefaultFeedURL = "https://www.youtube.com/feeds/videos.xml"
	// FeedWindowSize is the number of most recent uploads the feed returns.
	FeedWindowSize = 15

	maxFeedBytes = 4 << 20
)

// FeedSource lists videos from the unauthenticated channel Atom feed. The feed
// only carries the most recent FeedWindowSize uploads, so older videos inside
// a long lookback window are never seen.
type FeedSource struct {
	client  *http.Client
	baseURL string
	log     *slog.Logger
}

type FeedOption func(*FeedSource)

func WithFeedURL(u string) FeedOption {
	return func(s *FeedSource) {
		if u = strings.TrimSpace(u); u != "" {
			s.baseURL = u
		}
	}
}

func WithFeedLogger(log *slog.Logger) FeedOption {
	return func(s *FeedSource) {
		if log != nil {
			s.log = log
		}
	}
}

// NewFeedSource returns a FeedSource using client. The client is shared by all
// channel tasks.
func NewFeedSource(client *http.Client, opts ...FeedOption) *FeedSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	s := &FeedSource{client: client, baseURL: DefaultFeedURL, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the feed entries published inside window, newest first as the
// feed orders them.
func (s *FeedSource) Fetch(ctx context.Context, channelID string, window pipeline.Window) ([]pipeline.Video, error) {
	feed, err := s.fetchFeed(ctx, channelID)
	if err != nil {
		return nil, &SourceError{Source: "feed", Channel: channelID, Err: err}
	}

	videos := feed.videos()
	s.warnIfTruncated(channelID, videos, window)
	return pipeline.FilterWindow(videos, window), nil
}

func (s *FeedSource) fetchFeed(ctx context.Context, channelID string) (*atomFeed, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("channel_id", channelID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrChannelNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var feed atomFeed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}
	return &feed, nil
}

// warnIfTruncated logs when the feed was full and its oldest entry is still
// inside the window: older matching uploads may have fallen out of the feed.
func (s *FeedSource) warnIfTruncated(channelID string, videos []pipeline.Video, window pipeline.Window) {
	if len(videos) < FeedWindowSize {
		return
	}
	var oldest time.Time
	for _, v := range videos {
		if v.PublishedAt.IsZero() {
			continue
		}
		if oldest.IsZero() || v.PublishedAt.Before(oldest) {
			oldest = v.PublishedAt
		}
	}
	if oldest.IsZero() || oldest.After(window.Start) {
		s.log.Warn("feed window full, possible missed videos older than the feed",
			"channel_id", channelID,
			"feed_items", len(videos),
			"oldest_in_feed", oldest,
			"window_start", window.Start)
	}
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	VideoID   string        `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	Title     string        `xml:"title"`
	Link      atomLink      `xml:"link"`
	Published string        `xml:"published"`
	Thumbnail atomThumbnail `xml:"group>thumbnail"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomThumbnail struct {
	URL string `xml:"url,attr"`
}

func (f *atomFeed) videos() []pipeline.Video {
	out := make([]pipeline.Video, 0, len(f.Entries))
	for _, e := range f.Entries {
		id := strings.TrimSpace(e.VideoID)
		if id == "" {
			id, _ = videoid.ExtractYouTubeVideoID(e.Link.Href)
		}
		if id == "" {
			continue
		}
		out = append(out, pipeline.Video{
			ID:           id,
			URL:          videoid.WatchURL(id),
			Title:        strings.TrimSpace(e.Title),
			PublishedAt:  ParsePublished(e.Published),
			ThumbnailURL: strings.TrimSpace(e.Thumbnail.URL),
		})
	}
	return out
}

// ParsePublished parses an RFC 3339 timestamp, returning the zero time when
// the value is missing or malformed.
func ParsePublished(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
