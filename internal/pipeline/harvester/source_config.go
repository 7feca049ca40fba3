package harvester

import (
	"fmt"

	"golang-crypto-sentinel/internal/pipeline/config"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"
)

var samplePresets = map[string][]SamplePost{
	"social": DefaultSocialPosts,
	"news":   DefaultNewsPosts,
}

// DefaultSourceConfigs is used when no source is configured.
var DefaultSourceConfigs = []config.Source{
	{ID: "social-sample", Name: "Social Feed", Type: string(dto.SourceTypeSample), Preset: "social", URL: "https://social.example.com", Active: true},
	{ID: "news-sample", Name: "News Feed", Type: string(dto.SourceTypeSample), Preset: "news", URL: "https://news.example.com", Active: true},
}

// NewSourceFromConfig builds the source described by sc.
func NewSourceFromConfig(sc config.Source, log *logger.Logger) (Source, error) {
	if sc.ID == "" {
		return nil, fmt.Errorf("source id is required")
	}
	name := sc.Name
	if name == "" {
		name = sc.ID
	}

	switch dto.SourceType(sc.Type) {
	case dto.SourceTypeSample:
		posts, ok := samplePresets[sc.Preset]
		if !ok {
			return nil, fmt.Errorf("source %s: unknown sample preset %q", sc.ID, sc.Preset)
		}
		return NewSampleSource(sc.ID, name, sc.URL, posts), nil
	case dto.SourceTypeRSS:
		if sc.URL == "" {
			return nil, fmt.Errorf("source %s: feed url is required", sc.ID)
		}
		return NewRSSSource(RSSConfig{
			ID:                  sc.ID,
			Name:                name,
			FeedURL:             sc.URL,
			MaxItems:            sc.MaxItems,
			MaxRequestPerMinute: sc.MaxRequestPerMinute,
			FetchFullContent:    sc.FetchFullContent,
		}, log), nil
	default:
		return nil, fmt.Errorf("source %s: unknown type %q", sc.ID, sc.Type)
	}
}

// RegisterFromConfig registers every configured source, falling back to
// DefaultSourceConfigs when the list is empty.
func (h *Harvester) RegisterFromConfig(sources []config.Source) error {
	if len(sources) == 0 {
		sources = DefaultSourceConfigs
	}
	for _, sc := range sources {
		src, err := NewSourceFromConfig(sc, h.logger)
		if err != nil {
			return err
		}
		h.Register(src, sc.Active)
	}
	return nil
}
