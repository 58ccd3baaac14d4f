package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StoreNotion   = "notion"
	StorePostgres = "postgres"

	SourceFeed = "feed"
	SourceAPI  = "api"
)

type Config struct {
	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=text json"`

	// Run
	ChannelsFile string        `mapstructure:"CHANNELS_FILE" validate:"required"`
	Lookback     time.Duration `mapstructure:"LOOKBACK" validate:"gt=0"`
	BatchSize    int           `mapstructure:"BATCH_SIZE" validate:"min=1"`
	BatchDelay   time.Duration `mapstructure:"BATCH_DELAY" validate:"gte=0"`
	HTTPTimeout  time.Duration `mapstructure:"HTTP_TIMEOUT" validate:"gt=0"`

	YouTubeConfig `mapstructure:",squash"`
	StoreConfig   `mapstructure:",squash"`
}

type YouTubeConfig struct {
	Strategy          string `mapstructure:"VIDEO_SOURCE" validate:"oneof=feed api"`
	APIKey            string `mapstructure:"YOUTUBE_API_KEY"`
	ClientSecretsFile string `mapstructure:"YOUTUBE_CLIENT_SECRETS_FILE"`
	TokenFile         string `mapstructure:"YOUTUBE_TOKEN_FILE" validate:"required_with=ClientSecretsFile"`
	MaxResults        int    `mapstructure:"YOUTUBE_MAX_RESULTS" validate:"min=1,max=50"`
	FeedURL           string `mapstructure:"FEED_BASE_URL" validate:"omitempty,url"`
}

type StoreConfig struct {
	Backend string `mapstructure:"STORE_BACKEND" validate:"oneof=notion postgres"`

	NotionToken      string `mapstructure:"NOTION_TOKEN" validate:"required_if=Backend notion"`
	NotionAPIURL     string `mapstructure:"NOTION_API_URL" validate:"omitempty,url"`
	NotionVersion    string `mapstructure:"NOTION_VERSION"`
	LeadsDatabase    string `mapstructure:"NOTION_LEADS_DATABASE_ID" validate:"required_if=Backend notion"`
	CreatorsDatabase string `mapstructure:"NOTION_CREATORS_DATABASE_ID" validate:"required_if=Backend notion"`

	PropTitle            string `mapstructure:"NOTION_PROP_TITLE"`
	PropVideoID          string `mapstructure:"NOTION_PROP_VIDEO_ID"`
	PropURL              string `mapstructure:"NOTION_PROP_URL"`
	PropChannelID        string `mapstructure:"NOTION_PROP_CHANNEL_ID"`
	PropChannelName      string `mapstructure:"NOTION_PROP_CHANNEL_NAME"`
	PropPublished        string `mapstructure:"NOTION_PROP_PUBLISHED"`
	PropThumbnail        string `mapstructure:"NOTION_PROP_THUMBNAIL"`
	PropStatus           string `mapstructure:"NOTION_PROP_STATUS"`
	PropApproved         string `mapstructure:"NOTION_PROP_APPROVED"`
	PropCreator          string `mapstructure:"NOTION_PROP_CREATOR"`
	PropCreatorChannelID string `mapstructure:"NOTION_PROP_CREATOR_CHANNEL_ID"`

	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required_if=Backend postgres"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(v any) {
	typ := reflect.TypeOf(v)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Squashed structs share the flat key space.
		if field.Type.Kind() == reflect.Struct && (tag == "" || strings.HasSuffix(tag, ",squash")) {
			bindEnv(reflect.New(field.Type).Elem().Interface())
			continue
		}
		if tag != "" {
			_ = viper.BindEnv(tag)
		}
	}
}

// LoadConfig reads configuration from the environment and, when
// LEADSYNC_CONFIG_FILE is set, from that file. Environment wins.
func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("CHANNELS_FILE", "channels.yaml")
	viper.SetDefault("LOOKBACK", "168h")
	viper.SetDefault("BATCH_SIZE", 10)
	viper.SetDefault("BATCH_DELAY", "1s")
	viper.SetDefault("HTTP_TIMEOUT", "30s")
	viper.SetDefault("VIDEO_SOURCE", SourceFeed)
	viper.SetDefault("YOUTUBE_MAX_RESULTS", 50)
	viper.SetDefault("STORE_BACKEND", StoreNotion)
	viper.SetDefault("NOTION_API_URL", "https://api.notion.com/v1")
	viper.SetDefault("NOTION_VERSION", "2022-06-28")
	viper.SetDefault("DATABASE_RETRIES", 10)

	if file := strings.TrimSpace(os.Getenv("LEADSYNC_CONFIG_FILE")); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Strategy = strings.ToLower(strings.TrimSpace(cfg.Strategy))
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if cfg.Strategy == SourceAPI && cfg.APIKey == "" && cfg.TokenFile == "" {
		return nil, fmt.Errorf("validate config: VIDEO_SOURCE=api needs YOUTUBE_API_KEY or YOUTUBE_TOKEN_FILE")
	}

	slog.DebugContext(ctx, "Loaded configuration",
		"store", cfg.Backend,
		"source", cfg.Strategy,
		"channels_file", cfg.ChannelsFile,
		"lookback", cfg.Lookback,
		"batch_size", cfg.BatchSize)

	return &cfg, nil
}
