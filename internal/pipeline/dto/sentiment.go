package dto

import "time"

// Sentiment is the three-way classification of a text or aggregate.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

func (s Sentiment) IsValid() bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// SourceType identifies how a data source produces items.
type SourceType string

const (
	SourceTypeSample SourceType = "sample"
	SourceTypeRSS    SourceType = "rss"
)

func (t SourceType) IsValid() bool {
	return t == SourceTypeSample || t == SourceTypeRSS
}

// DataSource describes a registered harvester source.
type DataSource struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	URL    string     `json:"url"`
	Type   SourceType `json:"type"`
	Active bool       `json:"active"`
}

// RawItem is an unscored item as returned by a source.
type RawItem struct {
	Content   string    `json:"content"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HarvestedItem is a candidate text retained by the harvester.
type HarvestedItem struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	Content   string    `json:"content"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Relevance float64   `json:"relevance"`
	Symbols   []string  `json:"symbols"`
}

// CryptoEntity is a ticker or name mention found in text.
type CryptoEntity struct {
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Mentions int      `json:"mentions"`
	Contexts []string `json:"contexts"`
}

// SentimentScore is the lexicon verdict for a single text.
type SentimentScore struct {
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	Score      float64   `json:"score"`
}

// TextAnalysis is the full lexicon analysis of one text.
type TextAnalysis struct {
	SentimentScore
	Entities      []CryptoEntity `json:"entities"`
	Topics        []string       `json:"topics"`
	EmotionalTone string         `json:"emotional_tone"`
	RiskFactors   []string       `json:"risk_factors"`
}

// ProcessedItem is a harvested item after lexicon scoring.
type ProcessedItem struct {
	HarvestedItem
	TextAnalysis
}

// SentimentSummary aggregates the sentiment of all texts mentioning a symbol.
type SentimentSummary struct {
	Symbol     string    `json:"symbol"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	Score      float64   `json:"score"`
	SampleSize int       `json:"sample_size"`
}
