// Package notify delivers confirmation codes. Transports: a log sink for
// development, SMTP, and an AMQP queue consumed by a mailer.
package notify

import (
	"context"
	"time"

	"github.com/yamdb/reviewhub/internal/core/ports"
	"github.com/yamdb/reviewhub/internal/infrastructure/metrics"
)

// Instrumented records delivery outcome and latency per transport.
type Instrumented struct {
	next      ports.Notifier
	transport string
}

func NewInstrumented(next ports.Notifier, transport string) *Instrumented {
	return &Instrumented{next: next, transport: transport}
}

func (n *Instrumented) Send(ctx context.Context, recipient, subject, body string) error {
	start := time.Now()
	err := n.next.Send(ctx, recipient, subject, body)
	metrics.NotificationDuration.WithLabelValues(n.transport).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.NotificationsTotal.WithLabelValues(n.transport, result).Inc()
	return err
}
