package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumsRejectUnknownValues(t *testing.T) {
	assert.True(t, SentimentNeutral.IsValid())
	assert.False(t, Sentiment("bullish").IsValid())

	assert.True(t, PriceSideways.IsValid())
	assert.False(t, PriceDirection("flat").IsValid())

	assert.True(t, AlignmentDivergent.IsValid())
	assert.False(t, Alignment("").IsValid())

	assert.True(t, RiskHigh.IsValid())
	assert.False(t, RiskLevel("critical").IsValid())

	assert.True(t, AlertOpportunity.IsValid())
	assert.False(t, AlertType("volume_spike").IsValid())

	assert.True(t, SeverityMedium.IsValid())
	assert.False(t, Severity("info").IsValid())

	assert.True(t, SourceTypeRSS.IsValid())
	assert.False(t, SourceType("twitter").IsValid())
}
