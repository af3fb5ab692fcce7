package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/infra/logger"
)

// LoggingSender records notifications in the log instead of delivering them.
// Used when SMTP is not configured.
type LoggingSender struct {
	logger *zap.Logger
}

func NewLoggingSender(log *zap.Logger) *LoggingSender {
	return &LoggingSender{logger: log}
}

func (s *LoggingSender) logEmail(kind, to string, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("kind", kind),
		zap.String("to", logger.MaskEmail(to)),
	}, fields...)
	s.logger.Info("Email notification (logging sender)", fields...)
}

func (s *LoggingSender) SendActivationEmail(_ context.Context, to, activationLink string) error {
	s.logEmail("activation", to, zap.String("link", activationLink))
	return nil
}

func (s *LoggingSender) SendActivationCompleteEmail(_ context.Context, to string) error {
	s.logEmail("activation_complete", to)
	return nil
}

func (s *LoggingSender) SendPasswordResetEmail(_ context.Context, to, resetLink string) error {
	s.logEmail("password_reset", to, zap.String("link", resetLink))
	return nil
}

func (s *LoggingSender) SendPasswordResetCompleteEmail(_ context.Context, to string) error {
	s.logEmail("password_reset_complete", to)
	return nil
}

func (s *LoggingSender) SendPaymentSuccessEmail(_ context.Context, to string, orderID int64) error {
	s.logEmail("payment_success", to, zap.Int64("order_id", orderID))
	return nil
}

var _ port.EmailSender = (*LoggingSender)(nil)
