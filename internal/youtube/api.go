package youtube

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	ytapi "google.golang.org/api/youtube/v3"

	"thirdcoast.systems/leadsync/internal/pipeline"
	"thirdcoast.systems/leadsync/internal/videoid"
	"thirdcoast.systems/leadsync/pkg/utils/format"
)

const (
	DefaultMaxResults = 50
	// maxPages bounds pagination so a misbehaving page token cannot loop forever.
	maxPages = 20
)

// APISource lists videos with the quota-metered Data API search endpoint.
// Each page costs 100 quota units.
type APISource struct {
	svc        *ytapi.Service
	maxResults int64
	log        *slog.Logger
}

type APIOption func(*APISource)

func WithMaxResults(n int) APIOption {
	return func(s *APISource) {
		if n > 0 && n <= 50 {
			s.maxResults = int64(n)
		}
	}
}

func WithAPILogger(log *slog.Logger) APIOption {
	return func(s *APISource) {
		if log != nil {
			s.log = log
		}
	}
}

func NewAPISource(svc *ytapi.Service, opts ...APIOption) *APISource {
	s := &APISource{svc: svc, maxResults: DefaultMaxResults, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch pages through search results for the channel, restricted server-side
// to videos published after window.Start.
func (s *APISource) Fetch(ctx context.Context, channelID string, window pipeline.Window) ([]pipeline.Video, error) {
	var (
		videos    []pipeline.Video
		pageToken string
	)

	for page := 0; page < maxPages; page++ {
		call := s.svc.Search.List([]string{"id", "snippet"}).
			ChannelId(channelID).
			Type("video").
			Order("date").
			PublishedAfter(window.Start.UTC().Format(time.RFC3339)).
			MaxResults(s.maxResults).
			Context(ctx)
		if !window.End.IsZero() {
			call = call.PublishedBefore(window.End.UTC().Format(time.RFC3339))
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, &SourceError{Source: "api", Channel: channelID, Err: classifyAPIError(err)}
		}

		for _, item := range resp.Items {
			if v, ok := searchResultToVideo(item); ok {
				videos = append(videos, v)
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return pipeline.FilterWindow(videos, window), nil
		}
	}

	s.log.Warn("search pagination limit reached", "channel_id", channelID, "pages", maxPages, "videos", len(videos))
	return pipeline.FilterWindow(videos, window), nil
}

func searchResultToVideo(item *ytapi.SearchResult) (pipeline.Video, bool) {
	if item == nil || item.Id == nil || strings.TrimSpace(item.Id.VideoId) == "" {
		return pipeline.Video{}, false
	}
	id := strings.TrimSpace(item.Id.VideoId)
	v := pipeline.Video{ID: id, URL: videoid.WatchURL(id)}
	if sn := item.Snippet; sn != nil {
		v.Title = strings.TrimSpace(format.PlainText(sn.Title))
		v.PublishedAt = ParsePublished(sn.PublishedAt)
		v.ThumbnailURL = bestThumbnail(sn.Thumbnails)
	}
	return v, true
}

func bestThumbnail(t *ytapi.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*ytapi.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if th != nil && strings.TrimSpace(th.Url) != "" {
			return strings.TrimSpace(th.Url)
		}
	}
	return ""
}

func classifyAPIError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusNotFound:
		return errors.Join(ErrChannelNotFound, err)
	case http.StatusTooManyRequests:
		return errors.Join(ErrRateLimited, err)
	case http.StatusForbidden:
		for _, item := range gerr.Errors {
			if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
				return errors.Join(ErrQuotaExceeded, err)
			}
		}
	}
	return err
}
