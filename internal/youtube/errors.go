package youtube

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelNotFound indicates the channel does not exist or has no public uploads.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrQuotaExceeded indicates the Data API daily quota is exhausted.
	ErrQuotaExceeded = errors.New("youtube api quota exceeded")
	// ErrRateLimited indicates the provider answered 429.
	ErrRateLimited = errors.New("rate limited")
)

// SourceError wraps a failure of one source strategy for one channel.
type SourceError struct {
	Source  string
	Channel string
	Err     error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: channel %s: %v", e.Source, e.Channel, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
