package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/infra/config"
	"github.com/msubchak/online-cinema/internal/infra/logger"
)

// SMTPSender delivers account and payment notifications over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPSender constructs an SMTP-backed sender from email settings.
func NewSMTPSender(cfg config.EmailSettings, log *zap.Logger) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	dialer.SSL = cfg.UseTLS

	return &SMTPSender{
		dialer: dialer,
		from:   cfg.From,
		logger: log,
	}
}

func (s *SMTPSender) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	)
	return nil
}

func (s *SMTPSender) SendActivationEmail(ctx context.Context, to, activationLink string) error {
	body := fmt.Sprintf(
		"<p>Welcome to Online Cinema!</p><p>Please confirm your email address by following <a href=%q>this link</a>. The link expires in 24 hours.</p>",
		activationLink,
	)
	return s.send(ctx, to, "Activate your account", body)
}

func (s *SMTPSender) SendActivationCompleteEmail(ctx context.Context, to string) error {
	body := "<p>Your account has been activated. You can now sign in and start browsing movies.</p>"
	return s.send(ctx, to, "Account activated", body)
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, to, resetLink string) error {
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p><p>Follow <a href=%q>this link</a> to choose a new password. If you did not request this, ignore this message.</p>",
		resetLink,
	)
	return s.send(ctx, to, "Reset your password", body)
}

func (s *SMTPSender) SendPasswordResetCompleteEmail(ctx context.Context, to string) error {
	body := "<p>Your password has been changed. If this was not you, contact support immediately.</p>"
	return s.send(ctx, to, "Password changed", body)
}

func (s *SMTPSender) SendPaymentSuccessEmail(ctx context.Context, to string, orderID int64) error {
	body := fmt.Sprintf("<p>Your payment for order #%d was successful. Enjoy your movies!</p>", orderID)
	return s.send(ctx, to, "Payment confirmation", body)
}

var _ port.EmailSender = (*SMTPSender)(nil)
