package harvester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

// RSSConfig configures an RSS/Atom backed source. FeedURL may contain a
// {symbol} placeholder.
type RSSConfig struct {
	ID                  string
	Name                string
	FeedURL             string
	MaxItems            int
	MaxRequestPerMinute int
	FetchFullContent    bool
}

// RSSSource harvests headlines and summaries from a news feed.
type RSSSource struct {
	cfg            RSSConfig
	logger         *logger.Logger
	parser         *gofeed.Parser
	client         *http.Client
	requestLimiter *rate.Limiter
}

func NewRSSSource(cfg RSSConfig, log *logger.Logger) *RSSSource {
	limit := rate.Inf
	if cfg.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.MaxRequestPerMinute))
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 20
	}
	client := &http.Client{Timeout: 15 * time.Second}
	parser := gofeed.NewParser()
	parser.Client = client
	return &RSSSource{
		cfg:            cfg,
		logger:         log,
		parser:         parser,
		client:         client,
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

func (s *RSSSource) Info() dto.DataSource {
	return dto.DataSource{ID: s.cfg.ID, Name: s.cfg.Name, URL: s.cfg.FeedURL, Type: dto.SourceTypeRSS}
}

func (s *RSSSource) feedURL(symbol string) string {
	return strings.ReplaceAll(s.cfg.FeedURL, "{symbol}", strings.ToUpper(symbol))
}

func (s *RSSSource) Fetch(ctx context.Context, symbol string) ([]dto.RawItem, error) {
	if err := s.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	url := s.feedURL(symbol)
	feed, err := s.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", url, err)
	}

	items := make([]dto.RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(items) >= s.cfg.MaxItems {
			break
		}

		body := item.Description
		if s.cfg.FetchFullContent && item.Link != "" {
			content, err := s.fetchArticle(ctx, item.Link)
			if err != nil {
				s.logger.WarnContext(ctx, "Falling back to feed description", logger.StringField("link", item.Link), logger.ErrorField(err))
			} else {
				body = content
			}
		}

		raw := dto.RawItem{
			Content: strings.TrimSpace(item.Title + ". " + htmlToText(body)),
			URL:     item.Link,
		}
		if item.PublishedParsed != nil {
			raw.Timestamp = *item.PublishedParsed
		}
		items = append(items, raw)
	}
	return items, nil
}

func (s *RSSSource) fetchArticle(ctx context.Context, link string) (string, error) {
	if err := s.requestLimiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; crypto-sentinel/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}
	return doc.Content(), nil
}

// htmlToText strips markup from a feed description or article body.
func htmlToText(html string) string {
	if !strings.Contains(html, "<") {
		return html
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}
