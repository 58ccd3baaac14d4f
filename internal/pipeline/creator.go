package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// CreatorState is the outcome of looking up a channel's creator record.
type CreatorState int

const (
	// CreatorUnlinked means no creator record matches the channel.
	CreatorUnlinked CreatorState = iota
	// CreatorLinked means exactly one creator record matches.
	CreatorLinked
	// CreatorConflict means several creator records match the same channel.
	CreatorConflict
)

func (s CreatorState) String() string {
	switch s {
	case CreatorUnlinked:
		return "unlinked"
	case CreatorLinked:
		return "linked"
	case CreatorConflict:
		return "conflict"
	default:
		return fmt.Sprintf("CreatorState(%d)", int(s))
	}
}

// CreatorResolution is a tagged result: CreatorID is set only for CreatorLinked,
// Conflicting only for CreatorConflict.
type CreatorResolution struct {
	State       CreatorState
	CreatorID   string
	Conflicting []string
}

func Unlinked() CreatorResolution {
	return CreatorResolution{State: CreatorUnlinked}
}

func Linked(creatorID string) CreatorResolution {
	return CreatorResolution{State: CreatorLinked, CreatorID: creatorID}
}

func Conflict(ids ...string) CreatorResolution {
	return CreatorResolution{State: CreatorConflict, Conflicting: append([]string(nil), ids...)}
}

// ResolveCreatorIDs turns the raw matches of a creator query into a resolution.
func ResolveCreatorIDs(ids []string) CreatorResolution {
	switch len(ids) {
	case 0:
		return Unlinked()
	case 1:
		return Linked(ids[0])
	default:
		return Conflict(ids...)
	}
}

// ConflictError describes a channel with more than one creator record.
type ConflictError struct {
	ChannelID  string
	CreatorIDs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("channel %s has %d creator records: %s", e.ChannelID, len(e.CreatorIDs), strings.Join(e.CreatorIDs, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrCreatorConflict }

// LinkCreator points leadID at creatorID. The current relation is read first and
// the write is skipped when it already equals exactly {creatorID}.
// It reports whether a write was issued.
func LinkCreator(ctx context.Context, store RecordStore, leadID, creatorID string) (bool, error) {
	current, err := store.CreatorRelation(ctx, leadID)
	if err != nil {
		return false, fmt.Errorf("read creator relation: %w", err)
	}
	if len(current) == 1 && current[0] == creatorID {
		return false, nil
	}
	if err := store.SetCreatorRelation(ctx, leadID, creatorID); err != nil {
		return false, fmt.Errorf("write creator relation: %w", err)
	}
	return true, nil
}
