package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.log.Info().
		Str("to", recipient).
		Str("subject", subject).
		Str("body", body).
		Msg("mail (log transport)")
	return nil
}
