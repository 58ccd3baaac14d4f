package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"thirdcoast.systems/leadsync/internal/config"
	"thirdcoast.systems/leadsync/internal/db"
	"thirdcoast.systems/leadsync/internal/notion"
	"thirdcoast.systems/leadsync/internal/pipeline"
	"thirdcoast.systems/leadsync/internal/youtube"
)

// NewHTTPClient returns the HTTP session shared by every channel task.
func NewHTTPClient(conf config.Config) *http.Client {
	return &http.Client{Timeout: conf.HTTPTimeout}
}

// NewVideoSource builds the configured VideoSource strategy.
func NewVideoSource(ctx context.Context, conf config.Config, client *http.Client, log *slog.Logger) (pipeline.VideoSource, error) {
	switch conf.Strategy {
	case config.SourceFeed:
		return youtube.NewFeedSource(client,
			youtube.WithFeedURL(conf.FeedURL),
			youtube.WithFeedLogger(log),
		), nil
	case config.SourceAPI:
		svc, err := youtube.NewService(ctx, client, youtube.Credentials{
			APIKey:            conf.APIKey,
			ClientSecretsFile: conf.ClientSecretsFile,
			TokenFile:         conf.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		return youtube.NewAPISource(svc,
			youtube.WithMaxResults(conf.MaxResults),
			youtube.WithAPILogger(log),
		), nil
	default:
		return nil, fmt.Errorf("unknown video source %q", conf.Strategy)
	}
}

// NewRecordStore builds the configured RecordStore. The returned close
// function releases backend resources and is never nil.
func NewRecordStore(ctx context.Context, conf config.Config, client *http.Client, log *slog.Logger) (pipeline.RecordStore, func(), error) {
	switch conf.Backend {
	case config.StoreNotion:
		nc := notion.NewClient(conf.NotionToken,
			notion.WithBaseURL(conf.NotionAPIURL),
			notion.WithVersion(conf.NotionVersion),
			notion.WithHTTPClient(client),
		)
		return notion.NewStore(nc, conf.LeadsDatabase, conf.CreatorsDatabase, NotionSchema(conf)), func() {}, nil
	case config.StorePostgres:
		pool, err := OpenDBPoolWithRetry(ctx, conf, log)
		if err != nil {
			return nil, func() {}, err
		}
		conn, err := db.NewDatabaseConnection(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return db.NewStore(conn), conn.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown store backend %q", conf.Backend)
	}
}

// NotionSchema maps the configured property names; empty names keep the defaults.
func NotionSchema(conf config.Config) notion.Schema {
	return notion.Schema{
		Title:            conf.PropTitle,
		VideoID:          conf.PropVideoID,
		URL:              conf.PropURL,
		ChannelID:        conf.PropChannelID,
		ChannelName:      conf.PropChannelName,
		Published:        conf.PropPublished,
		Thumbnail:        conf.PropThumbnail,
		Status:           conf.PropStatus,
		Approved:         conf.PropApproved,
		Creator:          conf.PropCreator,
		CreatorChannelID: conf.PropCreatorChannelID,
	}.WithDefaults()
}
