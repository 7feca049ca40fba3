package harvester

import (
	"regexp"
	"strings"

	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/pkg/utils"
)

var cryptoKeywords = []string{
	"crypto", "blockchain", "bitcoin", "ethereum", "defi", "token", "coin",
	"altcoin", "exchange", "trading", "market", "bullish", "bearish", "hodl",
	"price", "support", "resistance", "whale", "wallet",
}

var (
	percentRe = regexp.MustCompile(`\d+(\.\d+)?\s?%`)
	dollarRe  = regexp.MustCompile(`\$\s?\d[\d,]*(\.\d+)?[kKmMbB]?`)
)

const (
	keywordWeight  = 0.2
	symbolWeight   = 0.5
	nameWeight     = 0.4
	featureBonus   = 0.1
	minBonusLength = 50
	maxBonusLength = 500
)

// Relevance scores how pertinent content is to crypto in general and to
// symbol in particular. The result is clamped to [0, 1].
func Relevance(content, url, symbol string) float64 {
	lower := strings.ToLower(content)

	var score float64
	for _, kw := range cryptoKeywords {
		if strings.Contains(lower, kw) {
			score += keywordWeight
		}
	}

	if symbol != "" {
		symbol = strings.ToUpper(symbol)
		if analyzer.MentionsTicker(content, symbol) {
			score += symbolWeight
		}
		if name := analyzer.FullName(symbol); name != "" && strings.Contains(lower, strings.ToLower(name)) {
			score += nameWeight
		}
	}

	if n := len(content); n >= minBonusLength && n < maxBonusLength {
		score += featureBonus
	}
	if url != "" {
		score += featureBonus
	}
	if percentRe.MatchString(content) {
		score += featureBonus
	}
	if dollarRe.MatchString(content) {
		score += featureBonus
	}

	return utils.Clamp(score, 0, 1)
}
