package config

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"thirdcoast.systems/leadsync/internal/pipeline"
)

type channelsFile struct {
	Channels []pipeline.Channel `yaml:"channels" validate:"dive"`
}

// LoadChannels reads the tracked channel list. YAML files use
//
//	channels:
//	  - id: UC...
//	    name: Some Creator
//
// Any other extension is read as one channel ID per line, with an optional
// display name after the first whitespace. Blank lines and lines starting
// with # are ignored. Duplicate IDs keep their first occurrence.
func LoadChannels(path string, log *slog.Logger) ([]pipeline.Channel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channels file: %w", err)
	}

	var channels []pipeline.Channel
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f channelsFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse channels file %s: %w", path, err)
		}
		channels = f.Channels
	default:
		channels = parseChannelLines(raw)
	}

	for i := range channels {
		channels[i].ID = strings.TrimSpace(channels[i].ID)
		channels[i].DisplayName = strings.TrimSpace(channels[i].DisplayName)
	}

	validate := validator.New()
	if err := validate.Struct(channelsFile{Channels: channels}); err != nil {
		return nil, fmt.Errorf("validate channels file %s: %w", path, err)
	}

	out := dedupChannels(channels, log)
	if len(out) == 0 {
		return nil, fmt.Errorf("channels file %s lists no channels", path)
	}
	return out, nil
}

func parseChannelLines(raw []byte) []pipeline.Channel {
	var channels []pipeline.Channel
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, name, _ := strings.Cut(line, " ")
		if before, after, ok := strings.Cut(line, "\t"); ok && len(before) < len(id) {
			id, name = before, after
		}
		channels = append(channels, pipeline.Channel{ID: id, DisplayName: name})
	}
	return channels
}

func dedupChannels(channels []pipeline.Channel, log *slog.Logger) []pipeline.Channel {
	seen := make(map[string]struct{}, len(channels))
	out := make([]pipeline.Channel, 0, len(channels))
	for _, ch := range channels {
		if _, dup := seen[ch.ID]; dup {
			if log != nil {
				log.Warn("Duplicate channel in channels file, ignoring", "channel_id", ch.ID)
			}
			continue
		}
		seen[ch.ID] = struct{}{}
		out = append(out, ch)
	}
	return out
}
