package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes outgoing mail to the log instead of delivering it. It is
// the default backend until an SMTP or provider sender is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "mail_log_sender").Logger()}
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.log.Info().Str("to", to).Str("subject", subject).Msg("email delivery (log backend)")
	return nil
}
