package telegram

import (
	"fmt"
	"strings"

	"golang-crypto-sentinel/internal/pipeline/dto"
)

const maxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatMarketAlertsForTelegram formats alerts into Markdown messages, splitting
// into parts so no message exceeds the Telegram length limit.
func FormatMarketAlertsForTelegram(alerts []dto.MarketAlert) []string {
	if len(alerts) == 0 {
		return []string{"No market alerts for this run."}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString("🚨 *Crypto Market Alerts* 🚨\n\n")
			return
		}
		current.WriteString(fmt.Sprintf("---*Crypto Market Alerts Part %d*---\n\n", part))
	}
	startNewPart()

	for _, a := range alerts {
		var entry strings.Builder
		entry.WriteString(fmt.Sprintf("%s *%s* `%s`\n", severityIcon(a.Severity), alertTitle(a.Type), a.Symbol))
		entry.WriteString(fmt.Sprintf("💬 %s\n", markdownEscaper.Replace(a.Message)))
		entry.WriteString(fmt.Sprintf("🕒 %s\n\n", a.Timestamp.UTC().Format("2006-01-02 15:04 MST")))

		s := entry.String()
		if current.Len()+len(s) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(s)
	}

	return append(messages, current.String())
}

// FormatCorrelationForTelegram formats a single correlation verdict.
func FormatCorrelationForTelegram(r dto.CorrelationResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("--- 📊 *%s Sentiment vs Price* ---\n\n", r.Symbol))

	sentimentIcon := "😐"
	switch r.SentimentDirection {
	case dto.SentimentPositive:
		sentimentIcon = "😊"
	case dto.SentimentNegative:
		sentimentIcon = "😟"
	}
	b.WriteString(fmt.Sprintf("%s *Sentiment:* %s\n", sentimentIcon, r.SentimentDirection))
	b.WriteString(fmt.Sprintf("📈 *Price:* $%s (%+.2f%%, %s)\n", formatPrice(r.Market.Price), r.Market.PercentChange, r.PriceDirection))
	b.WriteString(fmt.Sprintf("🔗 *Alignment:* %s\n", r.Alignment))
	b.WriteString(fmt.Sprintf("⚠️ *Risk:* %s (%d)\n", r.RiskLevel, r.RiskScore))
	b.WriteString(fmt.Sprintf("🎯 *Confidence:* %.0f%%\n\n", r.Confidence*100))
	b.WriteString(fmt.Sprintf("💡 %s\n", markdownEscaper.Replace(r.Recommendation)))

	return b.String()
}

func severityIcon(s dto.Severity) string {
	switch s {
	case dto.SeverityHigh:
		return "🔴"
	case dto.SeverityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func alertTitle(t dto.AlertType) string {
	switch t {
	case dto.AlertRiskWarning:
		return "Risk Warning"
	case dto.AlertSentimentDivergence:
		return "Sentiment Divergence"
	case dto.AlertOpportunity:
		return "Opportunity"
	default:
		return "Alert"
	}
}

func formatPrice(p float64) string {
	if p >= 1 {
		return fmt.Sprintf("%.2f", p)
	}
	return fmt.Sprintf("%.6f", p)
}
