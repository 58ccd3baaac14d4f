package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memorySource serves canned videos per channel.
type memorySource struct {
	videos map[string][]Video
	errs   map[string]error
}

func (s *memorySource) Fetch(_ context.Context, channelID string, window Window) ([]Video, error) {
	if err := s.errs[channelID]; err != nil {
		return nil, err
	}
	return FilterWindow(s.videos[channelID], window), nil
}

// memoryStore is a RecordStore that persists across runs within a test.
type memoryStore struct {
	mu        sync.Mutex
	leads     map[string]NewLead // by lead id
	byVideo   map[string]string  // video id -> lead id
	creators  map[string][]string
	relations map[string][]string

	createErr map[string]error // by video id
	setErr    error
	findErr   error

	createCalls int
	setCalls    int
	findCalls   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		leads:     map[string]NewLead{},
		byVideo:   map[string]string{},
		creators:  map[string][]string{},
		relations: map[string][]string{},
		createErr: map[string]error{},
	}
}

func (s *memoryStore) LeadExists(_ context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byVideo[videoID]
	return ok, nil
}

func (s *memoryStore) CreateLead(_ context.Context, lead NewLead) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if err := s.createErr[lead.VideoID]; err != nil {
		return "", err
	}
	if _, ok := s.byVideo[lead.VideoID]; ok {
		return "", ErrLeadExists
	}
	id := fmt.Sprintf("lead-%d", len(s.leads)+1)
	s.leads[id] = lead
	s.byVideo[lead.VideoID] = id
	return id, nil
}

func (s *memoryStore) FindCreator(_ context.Context, channelID string) (CreatorResolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return CreatorResolution{}, s.findErr
	}
	return ResolveCreatorIDs(s.creators[channelID]), nil
}

func (s *memoryStore) CreatorRelation(_ context.Context, leadID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.relations[leadID]...), nil
}

func (s *memoryStore) SetCreatorRelation(_ context.Context, leadID, creatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.relations[leadID] = []string{creatorID}
	return nil
}

func (s *memoryStore) leadByVideo(videoID string) (NewLead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byVideo[videoID]
	if !ok {
		return NewLead{}, false
	}
	return s.leads[id], true
}

var errBoom = errors.New("boom")
