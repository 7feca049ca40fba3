package correlator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/google/uuid"
)

const (
	historyCap = 100
	minHistory = 10
)

// MarketProvider supplies the current market snapshot for a symbol.
type MarketProvider interface {
	Snapshot(ctx context.Context, symbol string) (dto.MarketSnapshot, error)
}

// symbolHistory is the rolling state for one symbol. Its mutex serialises
// every correlation of that symbol.
type symbolHistory struct {
	mu         sync.Mutex
	snapshots  []dto.MarketSnapshot
	sentiments []float64
	last       *dto.CorrelationResult
}

// Correlator compares aggregated sentiment with market movement. Histories
// persist across workflow runs and are shared by concurrent runs.
type Correlator struct {
	logger    *logger.Logger
	provider  MarketProvider
	now       func() time.Time
	mu        sync.RWMutex
	histories map[string]*symbolHistory
}

func New(log *logger.Logger, provider MarketProvider) *Correlator {
	return &Correlator{
		logger:    log,
		provider:  provider,
		now:       time.Now,
		histories: map[string]*symbolHistory{},
	}
}

func (c *Correlator) history(symbol string) *symbolHistory {
	c.mu.RLock()
	h, ok := c.histories[symbol]
	c.mu.RUnlock()
	if ok {
		return h
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok = c.histories[symbol]; !ok {
		h = &symbolHistory{}
		c.histories[symbol] = h
	}
	return h
}

// Correlate produces one result per summary. A symbol that fails is logged
// and skipped without affecting the others.
func (c *Correlator) Correlate(ctx context.Context, sentiments []dto.SentimentSummary) []dto.CorrelationResult {
	results := make([]dto.CorrelationResult, 0, len(sentiments))
	for _, s := range sentiments {
		r, err := c.correlateSymbol(ctx, s)
		if err != nil {
			c.logger.WarnContext(ctx, "Correlation failed, skipping symbol",
				logger.StringField("symbol", s.Symbol), logger.ErrorField(err))
			continue
		}
		results = append(results, r)
	}
	return results
}

func (c *Correlator) correlateSymbol(ctx context.Context, s dto.SentimentSummary) (dto.CorrelationResult, error) {
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	if s.Symbol == "" {
		return dto.CorrelationResult{}, fmt.Errorf("empty symbol")
	}
	if !s.Sentiment.IsValid() {
		return dto.CorrelationResult{}, fmt.Errorf("invalid sentiment %q", s.Sentiment)
	}

	snap, err := c.provider.Snapshot(ctx, s.Symbol)
	if err != nil {
		return dto.CorrelationResult{}, fmt.Errorf("failed to fetch market snapshot: %w", err)
	}

	h := c.history(s.Symbol)
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshots = appendCapped(h.snapshots, snap)
	h.sentiments = appendCapped(h.sentiments, s.Score)

	coefficient := Coefficient(h.sentiments, h.snapshots)
	direction := PriceDirectionFor(snap.PercentChange)
	alignment := AlignmentFor(s.Sentiment, direction)
	riskScore := RiskScore(s, snap.PercentChange, coefficient, alignment)

	r := dto.CorrelationResult{
		Symbol:             s.Symbol,
		Coefficient:        coefficient,
		PriceDirection:     direction,
		SentimentDirection: s.Sentiment,
		Alignment:          alignment,
		RiskScore:          riskScore,
		RiskLevel:          RiskLevelFor(riskScore),
		Confidence:         resultConfidence(s.Confidence, alignment),
		Market:             snap,
		Timestamp:          c.now(),
	}
	r.Recommendation = Recommendation(r)

	last := r
	h.last = &last
	return r, nil
}

func appendCapped[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > historyCap {
		s = append(s[:0:0], s[len(s)-historyCap:]...)
	}
	return s
}

// GenerateAlerts evaluates every alert predicate independently per result.
func (c *Correlator) GenerateAlerts(results []dto.CorrelationResult) []dto.MarketAlert {
	alerts := []dto.MarketAlert{}
	for _, r := range results {
		if r.RiskLevel == dto.RiskHigh {
			alerts = append(alerts, c.newAlert(dto.AlertRiskWarning, dto.SeverityHigh, r,
				fmt.Sprintf("High risk on %s: %s sentiment with %.2f%% 24h move (risk score %d).",
					r.Symbol, r.SentimentDirection, r.Market.PercentChange, r.RiskScore)))
		}
		if r.Alignment == dto.AlignmentDivergent && r.Confidence > divergenceAlertConf {
			alerts = append(alerts, c.newAlert(dto.AlertSentimentDivergence, dto.SeverityMedium, r,
				fmt.Sprintf("%s sentiment is %s while price is moving %s.",
					r.Symbol, r.SentimentDirection, r.PriceDirection)))
		}
		if r.Alignment == dto.AlignmentAligned && r.RiskLevel == dto.RiskLow && r.Confidence > opportunityAlertConf {
			alerts = append(alerts, c.newAlert(dto.AlertOpportunity, dto.SeverityLow, r,
				fmt.Sprintf("%s shows aligned %s sentiment and price %s with low risk (confidence %.0f%%).",
					r.Symbol, r.SentimentDirection, r.PriceDirection, r.Confidence*100)))
		}
	}
	return alerts
}

func (c *Correlator) newAlert(t dto.AlertType, sev dto.Severity, r dto.CorrelationResult, msg string) dto.MarketAlert {
	return dto.MarketAlert{
		ID:        uuid.NewString(),
		Type:      t,
		Symbol:    r.Symbol,
		Message:   msg,
		Severity:  sev,
		Timestamp: c.now(),
	}
}

// Summary reports tracked symbols and, over their latest results, the share
// at high risk and the share with divergent alignment.
func (c *Correlator) Summary() dto.CorrelatorSummary {
	c.mu.RLock()
	histories := make([]*symbolHistory, 0, len(c.histories))
	for _, h := range c.histories {
		histories = append(histories, h)
	}
	c.mu.RUnlock()

	summary := dto.CorrelatorSummary{TrackedSymbols: len(histories)}
	var withResult, highRisk, divergent int
	for _, h := range histories {
		h.mu.Lock()
		last := h.last
		h.mu.Unlock()
		if last == nil {
			continue
		}
		withResult++
		if last.RiskLevel == dto.RiskHigh {
			highRisk++
		}
		if last.Alignment == dto.AlignmentDivergent {
			divergent++
		}
	}
	if withResult > 0 {
		summary.HighRiskFraction = float64(highRisk) / float64(withResult)
		summary.DivergenceFraction = float64(divergent) / float64(withResult)
	}
	return summary
}

// HistoryLen returns the number of retained price and sentiment points.
func (c *Correlator) HistoryLen(symbol string) (prices, sentiments int) {
	c.mu.RLock()
	h, ok := c.histories[strings.ToUpper(symbol)]
	c.mu.RUnlock()
	if !ok {
		return 0, 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snapshots), len(h.sentiments)
}
