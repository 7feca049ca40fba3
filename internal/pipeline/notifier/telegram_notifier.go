package notifier

import (
	"context"
	"errors"
	"fmt"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"
	"golang-crypto-sentinel/pkg/telegram"
)

type telegramNotifier struct {
	client telegram.Notifier
	logger *logger.Logger
}

// NewTelegramNotifier sends alerts to a Telegram chat, followed by the full
// verdict of every high-risk result. Runs without alerts send nothing.
func NewTelegramNotifier(client telegram.Notifier, log *logger.Logger) AlertNotifier {
	return &telegramNotifier{client: client, logger: log}
}

func (n *telegramNotifier) Notify(ctx context.Context, report dto.AlertReport) error {
	if len(report.Alerts) == 0 {
		return nil
	}

	messages := telegram.FormatMarketAlertsForTelegram(report.Alerts)
	for _, r := range report.Results {
		if r.RiskLevel == dto.RiskHigh {
			messages = append(messages, telegram.FormatCorrelationForTelegram(r))
		}
	}

	var errs []error
	for _, msg := range messages {
		if err := n.client.SendMessage(msg); err != nil {
			n.logger.ErrorContext(ctx, "Failed to send telegram message", logger.ErrorField(err))
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to send telegram alerts: %w", err)
	}
	return nil
}
