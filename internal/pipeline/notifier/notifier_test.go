package notifier

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/common"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	reports []dto.AlertReport
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, report dto.AlertReport) error {
	r.reports = append(r.reports, report)
	return r.err
}

type fakeTelegram struct {
	messages []string
	err      error
}

func (f *fakeTelegram) SendMessage(text string) error {
	f.messages = append(f.messages, text)
	return f.err
}

func sampleReport() dto.AlertReport {
	return dto.AlertReport{
		WorkflowID: "wf-1",
		Results: []dto.CorrelationResult{{
			Symbol:    "BTC",
			Alignment: dto.AlignmentAligned,
			RiskLevel: dto.RiskLow,
			Market:    dto.MarketSnapshot{Symbol: "BTC", Price: 47250, PercentChange: 5, Timestamp: time.Now()},
		}},
		Alerts: []dto.MarketAlert{{
			ID:       "a-1",
			Type:     dto.AlertOpportunity,
			Symbol:   "BTC",
			Message:  "aligned upside",
			Severity: dto.SeverityLow,
		}},
	}
}

func TestMultiNotifier_FansOutAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingNotifier{}
	b := &recordingNotifier{err: boom}
	c := &recordingNotifier{}

	err := NewMultiNotifier(a, b, c).Notify(context.Background(), sampleReport())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.reports, 1)
	assert.Len(t, b.reports, 1)
	assert.Len(t, c.reports, 1)

	assert.NoError(t, NewMultiNotifier().Notify(context.Background(), sampleReport()))
}

func TestNoopNotifier(t *testing.T) {
	assert.NoError(t, NewNoopNotifier().Notify(context.Background(), sampleReport()))
}

func TestTelegramNotifier(t *testing.T) {
	tg := &fakeTelegram{}
	n := NewTelegramNotifier(tg, logger.NewNop())

	require.NoError(t, n.Notify(context.Background(), sampleReport()))
	require.Len(t, tg.messages, 1)
	assert.Contains(t, tg.messages[0], "*Opportunity* `BTC`")

	require.NoError(t, n.Notify(context.Background(), dto.AlertReport{WorkflowID: "wf-2"}))
	assert.Len(t, tg.messages, 1)

	tg.err = errors.New("forbidden")
	assert.ErrorContains(t, n.Notify(context.Background(), sampleReport()), "forbidden")
}

func TestTelegramNotifier_HighRiskVerdicts(t *testing.T) {
	tg := &fakeTelegram{}
	n := NewTelegramNotifier(tg, logger.NewNop())

	report := sampleReport()
	report.Results = append(report.Results, dto.CorrelationResult{
		Symbol:             "DOGE",
		SentimentDirection: dto.SentimentPositive,
		PriceDirection:     dto.PriceDown,
		Alignment:          dto.AlignmentDivergent,
		RiskLevel:          dto.RiskHigh,
		RiskScore:          5,
		Recommendation:     "High risk detected",
		Market:             dto.MarketSnapshot{Symbol: "DOGE", Price: 0.08, PercentChange: -12},
	})
	report.Alerts = append(report.Alerts, dto.MarketAlert{ID: "a-2", Type: dto.AlertRiskWarning, Symbol: "DOGE", Severity: dto.SeverityHigh})

	require.NoError(t, n.Notify(context.Background(), report))
	require.Len(t, tg.messages, 2)
	assert.Contains(t, tg.messages[0], "*Risk Warning* `DOGE`")
	assert.Contains(t, tg.messages[1], "DOGE Sentiment vs Price")
	assert.Contains(t, tg.messages[1], "high (5)")
}

// Runs against a live redis when REDIS_ADDR is set.
func TestRedisNotifier(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	key := "last_snapshot:BTC"
	client.Del(ctx, key, common.RedisStreamMarketAlerts)

	n := NewRedisNotifier(client, logger.NewNop(), 100)
	require.NoError(t, n.Notify(ctx, sampleReport()))

	snap, err := client.HGetAll(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "47250", snap["price"])
	assert.Equal(t, "aligned", snap["alignment"])

	entries, err := client.XRange(ctx, common.RedisStreamMarketAlerts, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wf-1", entries[0].Values["workflow_id"])
	assert.Equal(t, "opportunity", entries[0].Values["type"])
}
