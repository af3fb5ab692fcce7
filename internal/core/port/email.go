package port

import "context"

// EmailSender delivers account and payment notifications. Implementations
// must be safe for use from background goroutines.
type EmailSender interface {
	SendActivationEmail(ctx context.Context, to, activationLink string) error
	SendActivationCompleteEmail(ctx context.Context, to string) error
	SendPasswordResetEmail(ctx context.Context, to, resetLink string) error
	SendPasswordResetCompleteEmail(ctx context.Context, to string) error
	SendPaymentSuccessEmail(ctx context.Context, to string, orderID int64) error
}
