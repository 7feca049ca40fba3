package common

const (
	RedisStreamMarketAlerts = "pipeline.market.alerts"
	RedisKeyLastSnapshot    = "last_snapshot:%s"

	// CancelledByUser is recorded on workflows and steps stopped through Cancel.
	CancelledByUser = "cancelled by user"
)
