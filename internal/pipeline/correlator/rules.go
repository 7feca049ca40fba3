package correlator

import (
	"fmt"
	"math"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/utils"
)

const (
	priceMoveThreshold   = 2.0
	extremeMoveThreshold = 10.0
	lowConfidence        = 0.5
	weakCorrelation      = 0.2
	maxConfidence        = 0.9
	alignmentAdjustment  = 0.1

	highRiskScore   = 4
	mediumRiskScore = 2

	actionConfidence     = 0.7
	divergenceAlertConf  = 0.6
	opportunityAlertConf = 0.7
)

// PriceDirectionFor classifies a 24h percent change.
func PriceDirectionFor(percentChange float64) dto.PriceDirection {
	switch {
	case percentChange > priceMoveThreshold:
		return dto.PriceUp
	case percentChange < -priceMoveThreshold:
		return dto.PriceDown
	default:
		return dto.PriceSideways
	}
}

// AlignmentFor derives alignment purely from the direction pair.
func AlignmentFor(sentiment dto.Sentiment, direction dto.PriceDirection) dto.Alignment {
	if sentiment == dto.SentimentNeutral || direction == dto.PriceSideways {
		return dto.AlignmentNeutral
	}
	if (sentiment == dto.SentimentPositive && direction == dto.PriceUp) ||
		(sentiment == dto.SentimentNegative && direction == dto.PriceDown) {
		return dto.AlignmentAligned
	}
	return dto.AlignmentDivergent
}

// RiskScore adds up the four binary risk conditions.
func RiskScore(summary dto.SentimentSummary, percentChange, coefficient float64, alignment dto.Alignment) int {
	score := 0
	if summary.Sentiment != dto.SentimentNeutral && summary.Confidence < lowConfidence {
		score += 2
	}
	if math.Abs(percentChange) > extremeMoveThreshold {
		score += 2
	}
	if math.Abs(coefficient) < weakCorrelation {
		score++
	}
	if alignment == dto.AlignmentDivergent {
		score += 2
	}
	return score
}

func RiskLevelFor(score int) dto.RiskLevel {
	switch {
	case score >= highRiskScore:
		return dto.RiskHigh
	case score >= mediumRiskScore:
		return dto.RiskMedium
	default:
		return dto.RiskLow
	}
}

// Coefficient is the heuristic sentiment/price co-movement over the last
// minHistory paired samples: the mean of score * (percentChange / 100),
// clamped to [-1, 1]. It is 0 until both histories hold minHistory points.
func Coefficient(sentimentScores []float64, snapshots []dto.MarketSnapshot) float64 {
	if len(sentimentScores) < minHistory || len(snapshots) < minHistory {
		return 0
	}
	s := sentimentScores[len(sentimentScores)-minHistory:]
	p := snapshots[len(snapshots)-minHistory:]

	var sum float64
	for i := 0; i < minHistory; i++ {
		sum += s[i] * (p[i].PercentChange / 100)
	}
	return utils.Clamp(sum/minHistory, -1, 1)
}

func resultConfidence(sentimentConfidence float64, alignment dto.Alignment) float64 {
	c := sentimentConfidence
	switch alignment {
	case dto.AlignmentAligned:
		c += alignmentAdjustment
	case dto.AlignmentDivergent:
		c -= alignmentAdjustment
	}
	return utils.Clamp(c, 0, maxConfidence)
}

// Recommendation picks advice by fixed priority: high risk, confident
// alignment, divergence, medium risk, then the neutral default.
func Recommendation(r dto.CorrelationResult) string {
	switch {
	case r.RiskLevel == dto.RiskHigh:
		return fmt.Sprintf("High risk detected for %s: consider reducing exposure and tightening stop losses.", r.Symbol)
	case r.Alignment == dto.AlignmentAligned && r.Confidence > actionConfidence:
		if r.SentimentDirection == dto.SentimentPositive {
			return fmt.Sprintf("Sentiment and price agree on upside for %s: consider accumulating on strength.", r.Symbol)
		}
		return fmt.Sprintf("Sentiment and price agree on downside for %s: consider reducing positions.", r.Symbol)
	case r.Alignment == dto.AlignmentDivergent:
		return fmt.Sprintf("Sentiment diverges from price action for %s: watch for a potential trend reversal.", r.Symbol)
	case r.RiskLevel == dto.RiskMedium:
		return fmt.Sprintf("Mixed signals for %s: wait for clearer confirmation before acting.", r.Symbol)
	default:
		return fmt.Sprintf("No strong signal for %s: hold or continue dollar-cost averaging.", r.Symbol)
	}
}
