package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"thirdcoast.systems/leadsync/internal/pipeline"
	"thirdcoast.systems/leadsync/pkg/utils/format"
)

// maxTextLength is Notion's limit for a single rich text run.
const maxTextLength = 2000

// creatorQueryPageSize is large enough to list every duplicate of a channel.
const creatorQueryPageSize = 100

// Schema maps lead and creator fields to the property names of the two
// Notion databases.
type Schema struct {
	Title            string
	VideoID          string
	URL              string
	ChannelID        string
	ChannelName      string
	Published        string
	Thumbnail        string
	Status           string
	Approved         string
	Creator          string
	CreatorChannelID string
}

func DefaultSchema() Schema {
	return Schema{
		Title:            "Title",
		VideoID:          "Video ID",
		URL:              "URL",
		ChannelID:        "Channel ID",
		ChannelName:      "Channel",
		Published:        "Published At",
		Thumbnail:        "Thumbnail",
		Status:           "Status",
		Approved:         "Approved for Transcription",
		Creator:          "Creator",
		CreatorChannelID: "Channel ID",
	}
}

// WithDefaults fills empty property names from DefaultSchema.
func (s Schema) WithDefaults() Schema {
	d := DefaultSchema()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&s.Title, d.Title)
	fill(&s.VideoID, d.VideoID)
	fill(&s.URL, d.URL)
	fill(&s.ChannelID, d.ChannelID)
	fill(&s.ChannelName, d.ChannelName)
	fill(&s.Published, d.Published)
	fill(&s.Thumbnail, d.Thumbnail)
	fill(&s.Status, d.Status)
	fill(&s.Approved, d.Approved)
	fill(&s.Creator, d.Creator)
	fill(&s.CreatorChannelID, d.CreatorChannelID)
	return s
}

// Store is a pipeline.RecordStore over a leads database and a creators
// database.
type Store struct {
	client     *Client
	leadsDB    string
	creatorsDB string
	schema     Schema
}

var _ pipeline.RecordStore = (*Store)(nil)

func NewStore(client *Client, leadsDB, creatorsDB string, schema Schema) *Store {
	return &Store{
		client:     client,
		leadsDB:    strings.TrimSpace(leadsDB),
		creatorsDB: strings.TrimSpace(creatorsDB),
		schema:     schema.WithDefaults(),
	}
}

func (s *Store) LeadExists(ctx context.Context, videoID string) (bool, error) {
	resp, err := s.client.QueryDatabase(ctx, s.leadsDB, DatabaseQuery{
		Filter:   &Filter{Property: s.schema.VideoID, RichText: &TextCondition{Equals: videoID}},
		PageSize: 1,
	})
	if err != nil {
		return false, fmt.Errorf("query leads: %w", err)
	}
	return len(resp.Results) > 0, nil
}

func (s *Store) CreateLead(ctx context.Context, lead pipeline.NewLead) (string, error) {
	page, err := s.client.CreatePage(ctx, CreatePageRequest{
		Parent:     Parent{DatabaseID: s.leadsDB},
		Properties: s.LeadProperties(lead),
	})
	if err != nil {
		return "", fmt.Errorf("create lead page: %w", err)
	}
	return page.ID, nil
}

// LeadProperties maps a lead onto the leads database. Optional fields are
// left out entirely: typed Notion properties reject null values.
func (s *Store) LeadProperties(lead pipeline.NewLead) map[string]Property {
	approved := lead.ApprovedForTranscription
	status := lead.Status
	if status == "" {
		status = pipeline.LeadStatusPendingReview
	}

	props := map[string]Property{
		s.schema.Title:       {Title: Text(textValue(lead.Title))},
		s.schema.VideoID:     {RichText: Text(lead.VideoID)},
		s.schema.ChannelID:   {RichText: Text(lead.ChannelID)},
		s.schema.ChannelName: {RichText: Text(textValue(lead.ChannelName))},
		s.schema.Status:      {Select: &SelectValue{Name: string(status)}},
		s.schema.Approved:    {Checkbox: &approved},
	}
	if u := strings.TrimSpace(lead.URL); u != "" {
		props[s.schema.URL] = Property{URL: &u}
	}
	if lead.PublishedAt != nil && !lead.PublishedAt.IsZero() {
		props[s.schema.Published] = Property{Date: &DateValue{Start: lead.PublishedAt.UTC().Format(time.RFC3339)}}
	}
	if thumb := strings.TrimSpace(lead.ThumbnailURL); thumb != "" {
		props[s.schema.Thumbnail] = Property{URL: &thumb}
	}
	return props
}

func (s *Store) FindCreator(ctx context.Context, channelID string) (pipeline.CreatorResolution, error) {
	var ids []string
	q := DatabaseQuery{
		Filter:   &Filter{Property: s.schema.CreatorChannelID, RichText: &TextCondition{Equals: channelID}},
		PageSize: creatorQueryPageSize,
	}
	for {
		resp, err := s.client.QueryDatabase(ctx, s.creatorsDB, q)
		if err != nil {
			return pipeline.CreatorResolution{}, fmt.Errorf("query creators: %w", err)
		}
		for _, p := range resp.Results {
			ids = append(ids, p.ID)
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		q.StartCursor = resp.NextCursor
	}
	return pipeline.ResolveCreatorIDs(ids), nil
}

func (s *Store) CreatorRelation(ctx context.Context, leadID string) ([]string, error) {
	page, err := s.client.GetPage(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead page: %w", err)
	}
	prop, ok := page.Properties[s.schema.Creator]
	if !ok {
		return nil, nil
	}
	ids := make([]string, 0, len(prop.Relation))
	for _, r := range prop.Relation {
		ids = append(ids, r.ID)
	}
	if prop.HasMore {
		// The page object truncates relations; more than one member never
		// equals a single creator, so report it as-is.
		ids = append(ids, "")
	}
	return ids, nil
}

func (s *Store) SetCreatorRelation(ctx context.Context, leadID, creatorID string) error {
	_, err := s.client.UpdatePageProperties(ctx, leadID, map[string]Property{
		s.schema.Creator: {Relation: []Relation{{ID: creatorID}}},
	})
	if err != nil {
		return fmt.Errorf("update lead relation: %w", err)
	}
	return nil
}

func textValue(s string) string {
	return format.Truncate(format.Text(s), maxTextLength)
}
