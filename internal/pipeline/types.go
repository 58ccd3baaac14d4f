package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Channel is a tracked content channel loaded from configuration.
type Channel struct {
	ID          string `yaml:"id" validate:"required"`
	DisplayName string `yaml:"name"`
}

// Name returns the display name, falling back to the channel ID.
func (c Channel) Name() string {
	if n := strings.TrimSpace(c.DisplayName); n != "" {
		return n
	}
	return c.ID
}

// Video is a recently published video as reported by a VideoSource.
// PublishedAt is zero when the source did not report a parseable date.
type Video struct {
	ID           string
	URL          string
	Title        string
	PublishedAt  time.Time
	ThumbnailURL string
}

// Window is the publication time range a run is interested in.
type Window struct {
	Start time.Time
	End   time.Time
}

// LookbackWindow returns the window ending at now and reaching back by lookback.
func LookbackWindow(now time.Time, lookback time.Duration) Window {
	return Window{Start: now.Add(-lookback), End: now}
}

// Contains reports whether t falls inside the window. A zero time is
// considered inside: videos with an unknown publication date are kept.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// FilterWindow returns the videos published inside w, preserving order.
func FilterWindow(videos []Video, w Window) []Video {
	out := make([]Video, 0, len(videos))
	for _, v := range videos {
		if w.Contains(v.PublishedAt) {
			out = append(out, v)
		}
	}
	return out
}

// LeadStatus is the review state of a lead record.
type LeadStatus string

const (
	LeadStatusPendingReview LeadStatus = "Pending Review"
)

// NewLead is the projection of a Video written to the RecordStore.
// Optional fields are omitted by stores when nil/empty.
type NewLead struct {
	Title                    string
	VideoID                  string
	URL                      string
	ChannelID                string
	ChannelName              string
	PublishedAt              *time.Time
	ThumbnailURL             string
	Status                   LeadStatus
	ApprovedForTranscription bool
}

// LeadFromVideo maps a video found on channel ch to the lead fields.
func LeadFromVideo(ch Channel, v Video) NewLead {
	lead := NewLead{
		Title:        v.Title,
		VideoID:      v.ID,
		URL:          v.URL,
		ChannelID:    ch.ID,
		ChannelName:  ch.Name(),
		ThumbnailURL: strings.TrimSpace(v.ThumbnailURL),
		Status:       LeadStatusPendingReview,
	}
	if !v.PublishedAt.IsZero() {
		published := v.PublishedAt.UTC()
		lead.PublishedAt = &published
	}
	return lead
}

// VideoSource lists the videos a channel published inside a window.
// Implementations return an empty slice, not an error, when nothing was published.
type VideoSource interface {
	Fetch(ctx context.Context, channelID string, window Window) ([]Video, error)
}

// RecordStore persists leads and resolves creator records.
// Implementations must be safe for concurrent use by channel tasks.
type RecordStore interface {
	LeadExists(ctx context.Context, videoID string) (bool, error)
	CreateLead(ctx context.Context, lead NewLead) (string, error)
	FindCreator(ctx context.Context, channelID string) (CreatorResolution, error)
	CreatorRelation(ctx context.Context, leadID string) ([]string, error)
	SetCreatorRelation(ctx context.Context, leadID, creatorID string) error
}

var (
	// ErrLeadExists is returned by CreateLead when a lead for the video is already stored.
	ErrLeadExists = errors.New("lead already exists")
	// ErrCreatorConflict marks a channel aborted because more than one creator matched.
	ErrCreatorConflict = errors.New("creator conflict")
)
