package notifier

import (
	"context"
	"errors"

	"golang-crypto-sentinel/internal/pipeline/dto"
)

// AlertNotifier delivers the outcome of a correlation stage.
type AlertNotifier interface {
	Notify(ctx context.Context, report dto.AlertReport) error
}

// NewMultiNotifier fans a report out to every notifier and joins their errors.
func NewMultiNotifier(notifiers ...AlertNotifier) AlertNotifier {
	return multiNotifier(notifiers)
}

type multiNotifier []AlertNotifier

func (m multiNotifier) Notify(ctx context.Context, report dto.AlertReport) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewNoopNotifier returns a notifier that drops every report.
func NewNoopNotifier() AlertNotifier {
	return noopNotifier{}
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, dto.AlertReport) error { return nil }
