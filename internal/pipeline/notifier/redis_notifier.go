package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/common"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const lastSnapshotTTL = 24 * time.Hour

type redisNotifier struct {
	client    redis.Cmdable
	logger    *logger.Logger
	maxLen    int64
	streamKey string
}

// NewRedisNotifier publishes alerts to a redis stream and caches the latest
// market snapshot per symbol in a hash.
func NewRedisNotifier(client redis.Cmdable, log *logger.Logger, maxLen int64) AlertNotifier {
	return &redisNotifier{
		client:    client,
		logger:    log,
		maxLen:    maxLen,
		streamKey: common.RedisStreamMarketAlerts,
	}
}

func (n *redisNotifier) Notify(ctx context.Context, report dto.AlertReport) error {
	if len(report.Results) == 0 && len(report.Alerts) == 0 {
		return nil
	}

	pipe := n.client.Pipeline()
	for _, r := range report.Results {
		key := fmt.Sprintf(common.RedisKeyLastSnapshot, r.Symbol)
		pipe.HSet(ctx, key, map[string]interface{}{
			"price":          r.Market.Price,
			"percent_change": r.Market.PercentChange,
			"alignment":      string(r.Alignment),
			"risk_level":     string(r.RiskLevel),
			"timestamp":      r.Market.Timestamp.Unix(),
		})
		pipe.Expire(ctx, key, lastSnapshotTTL)
	}

	for _, a := range report.Alerts {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: n.streamKey,
			MaxLen: n.maxLen,
			Approx: true,
			Values: map[string]interface{}{
				"workflow_id": report.WorkflowID,
				"type":        string(a.Type),
				"symbol":      a.Symbol,
				"payload":     payload,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.ErrorContext(ctx, "Failed to execute Redis pipeline", logger.ErrorField(err))
		return fmt.Errorf("failed to publish alerts to redis: %w", err)
	}

	n.logger.DebugContext(ctx, "Published market alerts",
		logger.IntField("alerts", len(report.Alerts)), logger.IntField("snapshots", len(report.Results)))
	return nil
}
