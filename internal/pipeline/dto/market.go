package dto

import "time"

// PriceDirection classifies a 24h percent change.
type PriceDirection string

const (
	PriceUp       PriceDirection = "up"
	PriceDown     PriceDirection = "down"
	PriceSideways PriceDirection = "sideways"
)

func (d PriceDirection) IsValid() bool {
	return d == PriceUp || d == PriceDown || d == PriceSideways
}

// Alignment relates sentiment direction to price direction.
type Alignment string

const (
	AlignmentAligned   Alignment = "aligned"
	AlignmentDivergent Alignment = "divergent"
	AlignmentNeutral   Alignment = "neutral"
)

func (a Alignment) IsValid() bool {
	return a == AlignmentAligned || a == AlignmentDivergent || a == AlignmentNeutral
}

// RiskLevel buckets the additive risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// AlertType names the predicate that produced a MarketAlert.
type AlertType string

const (
	AlertRiskWarning         AlertType = "risk_warning"
	AlertSentimentDivergence AlertType = "sentiment_divergence"
	AlertOpportunity         AlertType = "opportunity"
)

func (t AlertType) IsValid() bool {
	switch t {
	case AlertRiskWarning, AlertSentimentDivergence, AlertOpportunity:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// MarketSnapshot is one price observation for a symbol.
type MarketSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Volume24h     float64   `json:"volume_24h"`
	MarketCap     float64   `json:"market_cap"`
	PercentChange float64   `json:"percent_change_24h"`
	Timestamp     time.Time `json:"timestamp"`
}

// CorrelationResult is the sentiment/market verdict for a symbol.
type CorrelationResult struct {
	Symbol             string         `json:"symbol"`
	Coefficient        float64        `json:"correlation_coefficient"`
	PriceDirection     PriceDirection `json:"price_direction"`
	SentimentDirection Sentiment      `json:"sentiment_direction"`
	Alignment          Alignment      `json:"alignment"`
	RiskScore          int            `json:"risk_score"`
	RiskLevel          RiskLevel      `json:"risk_level"`
	Recommendation     string         `json:"recommendation"`
	Confidence         float64        `json:"confidence"`
	Market             MarketSnapshot `json:"market"`
	Timestamp          time.Time      `json:"timestamp"`
}

// MarketAlert is a notification derived from a CorrelationResult.
type MarketAlert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// CorrelatorSummary describes the symbols the correlator tracks.
type CorrelatorSummary struct {
	TrackedSymbols     int     `json:"tracked_symbols"`
	HighRiskFraction   float64 `json:"high_risk_fraction"`
	DivergenceFraction float64 `json:"divergence_fraction"`
}

// AlertReport is what the correlation stage hands to alert notifiers.
type AlertReport struct {
	WorkflowID string              `json:"workflow_id"`
	Results    []CorrelationResult `json:"results"`
	Alerts     []MarketAlert       `json:"alerts"`
}
