package mailer

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

// LoggingMailer writes the links it would send to the log. It stands in for
// Brevo when no API key is configured.
type LoggingMailer struct{}

func NewLoggingMailer() LoggingMailer {
	return LoggingMailer{}
}

func (LoggingMailer) SendVerification(_ context.Context, to string, link string) error {
	logger.Info("mailer verification email not sent", logger.Fields{
		"to":   to,
		"link": link,
	})
	return nil
}

func (LoggingMailer) SendPasswordReset(_ context.Context, to string, link string) error {
	logger.Info("mailer password reset email not sent", logger.Fields{
		"to":   to,
		"link": link,
	})
	return nil
}

var _ services.Mailer = LoggingMailer{}
