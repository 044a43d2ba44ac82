// Package notify defines the outbound notification contract the scheduling
// engine dispatches through. Actual mail/SMS delivery and full templating
// live in the external notifications service; this package only renders the
// short operational messages the engine owns.
package notify

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/reminder"
	"go.uber.org/zap"
)

// Transport delivers one rendered message over one channel.
type Transport interface {
	Send(ctx context.Context, channel reminder.Channel, recipient, subject, body string) error
}

// LogTransport is the default transport for environments without a delivery
// backend: it records the message and succeeds.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(_ context.Context, channel reminder.Channel, recipient, subject, _ string) error {
	t.log.Info("notification dispatched",
		zap.String("channel", string(channel)),
		zap.String("recipient", recipient),
		zap.String("subject", subject),
	)
	return nil
}
