package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"
	"golang-crypto-sentinel/pkg/utils"
)

const (
	textThreshold      = 0.5
	aggregateThreshold = 0.3
	minConfidence      = 0.1
	maxConfidence      = 0.95
	confidenceBase     = 0.3
	maxContexts        = 3
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Scorer is the rule-based lexicon scorer. Scoring itself never fails.
type Scorer struct {
	logger *logger.Logger
}

func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{logger: log}
}

// tokenize lowercases text, drops punctuation and symbols, then splits on
// whitespace. "short-squeeze" is one token, "shortsqueeze".
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Fields(cleaned)
}

// Score classifies text. Empty text is neutral with zero confidence; any
// other text gets a confidence in [0.1, 0.95].
func (s *Scorer) Score(text string) dto.SentimentScore {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return dto.SentimentScore{Sentiment: dto.SentimentNeutral}
	}

	var score float64
	hits := 0
	present := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		present[tok] = struct{}{}
		if delta := tokenScore(tok); delta != 0 {
			score += delta
			hits++
		}
	}

	for _, rule := range contextRules {
		if containsAll(present, rule.all) {
			score += rule.adjust
		}
	}

	confidence := utils.Clamp(float64(hits)/float64(len(tokens))+confidenceBase, minConfidence, maxConfidence)
	return dto.SentimentScore{
		Sentiment:  classify(score, textThreshold),
		Confidence: confidence,
		Score:      score,
	}
}

func tokenScore(tok string) float64 {
	for _, f := range positiveFragments {
		if strings.Contains(tok, f) {
			return 2
		}
	}
	for _, f := range negativeFragments {
		if strings.Contains(tok, f) {
			return -2
		}
	}
	if _, ok := positiveWords[tok]; ok {
		return 1
	}
	if _, ok := negativeWords[tok]; ok {
		return -1
	}
	return 0
}

func classify(score, threshold float64) dto.Sentiment {
	switch {
	case score > threshold:
		return dto.SentimentPositive
	case score < -threshold:
		return dto.SentimentNegative
	default:
		return dto.SentimentNeutral
	}
}

func containsAll(set map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

// ExtractEntities finds ticker (case-sensitive) and full-name
// (case-insensitive) mentions of every known cryptocurrency.
func (s *Scorer) ExtractEntities(text string) []dto.CryptoEntity {
	var entities []dto.CryptoEntity
	var sentences []string
	for _, m := range entityMatchers {
		count := m.count(text)
		if count == 0 {
			continue
		}
		if sentences == nil {
			sentences = splitSentences(text)
		}
		entities = append(entities, dto.CryptoEntity{
			Symbol:   m.symbol,
			Name:     m.name,
			Mentions: count,
			Contexts: m.contexts(sentences),
		})
	}
	return entities
}

func (m entityMatcher) count(text string) int {
	n := len(m.symbolRe.FindAllStringIndex(text, -1))
	if m.nameRe != nil {
		n += len(m.nameRe.FindAllStringIndex(text, -1))
	}
	return n
}

func (m entityMatcher) mentionedIn(text string) bool {
	return m.symbolRe.MatchString(text) || (m.nameRe != nil && m.nameRe.MatchString(text))
}

func (m entityMatcher) contexts(sentences []string) []string {
	contexts := []string{}
	for _, sentence := range sentences {
		if len(contexts) == maxContexts {
			break
		}
		if m.mentionedIn(sentence) {
			contexts = append(contexts, sentence)
		}
	}
	return contexts
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Analyze runs scoring, entity extraction, topic, tone and risk detection.
func (s *Scorer) Analyze(text string) dto.TextAnalysis {
	tokens := tokenize(text)
	return dto.TextAnalysis{
		SentimentScore: s.Score(text),
		Entities:       s.ExtractEntities(text),
		Topics:         detectTopics(tokens),
		EmotionalTone:  detectTone(tokens),
		RiskFactors:    detectRiskFactors(tokens),
	}
}

func detectTopics(tokens []string) []string {
	set := toSet(tokens...)
	topics := []string{}
	for _, t := range topicKeywords {
		for _, kw := range t.keywords {
			if _, ok := set[kw]; ok {
				topics = append(topics, t.topic)
				break
			}
		}
	}
	return topics
}

// detectTone picks the tone with the most keyword hits; ties keep the
// earlier tone in the table.
func detectTone(tokens []string) string {
	best, bestHits := "neutral", 0
	for _, t := range toneKeywords {
		hits := 0
		for _, tok := range tokens {
			for _, kw := range t.keywords {
				if tok == kw {
					hits++
				}
			}
		}
		if hits > bestHits {
			best, bestHits = t.tone, hits
		}
	}
	return best
}

func detectRiskFactors(tokens []string) []string {
	factors := []string{}
	for _, kw := range riskKeywords {
		for _, tok := range tokens {
			if tok == kw {
				factors = append(factors, kw)
				break
			}
		}
	}
	return factors
}

// AggregateForSymbol averages the scores of the texts that mention symbol
// and reclassifies the mean with the ±0.3 thresholds.
func (s *Scorer) AggregateForSymbol(texts []string, symbol string) dto.SentimentSummary {
	m := matcherFor(symbol)
	summary := dto.SentimentSummary{Symbol: m.symbol, Sentiment: dto.SentimentNeutral}

	var scoreSum, confSum float64
	for _, text := range texts {
		if !m.mentionedIn(text) {
			continue
		}
		r := s.Score(text)
		scoreSum += r.Score
		confSum += r.Confidence
		summary.SampleSize++
	}
	if summary.SampleSize == 0 {
		return summary
	}

	n := float64(summary.SampleSize)
	summary.Score = scoreSum / n
	summary.Confidence = confSum / n
	summary.Sentiment = classify(summary.Score, aggregateThreshold)
	return summary
}

// ProcessBatch scores every harvested item. A failing item is logged and
// skipped. Scoring stops early only when ctx is done.
func (s *Scorer) ProcessBatch(ctx context.Context, items []dto.HarvestedItem) []dto.ProcessedItem {
	processed := make([]dto.ProcessedItem, 0, len(items))
	for _, item := range items {
		if !utils.ShouldContinue(ctx) {
			s.logger.WarnContext(ctx, "Batch interrupted", logger.IntField("scored", len(processed)), logger.IntField("total", len(items)))
			break
		}
		p, err := s.processItem(item)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping item", logger.StringField("item_id", item.ID), logger.ErrorField(err))
			continue
		}
		processed = append(processed, p)
	}
	return processed
}

func (s *Scorer) processItem(item dto.HarvestedItem) (p dto.ProcessedItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while scoring: %v", r)
		}
	}()
	if strings.TrimSpace(item.Content) == "" {
		return p, fmt.Errorf("empty content")
	}
	return dto.ProcessedItem{HarvestedItem: item, TextAnalysis: s.Analyze(item.Content)}, nil
}

// Symbols returns the distinct symbols tagged on processed items, in first
// seen order.
func Symbols(items []dto.ProcessedItem) []string {
	seen := map[string]struct{}{}
	var symbols []string
	for _, item := range items {
		for _, e := range item.Entities {
			if _, ok := seen[e.Symbol]; ok {
				continue
			}
			seen[e.Symbol] = struct{}{}
			symbols = append(symbols, e.Symbol)
		}
	}
	return symbols
}
