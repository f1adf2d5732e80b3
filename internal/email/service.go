package email

import (
	"context"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendEmailConfirmation(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	// SendTemporaryPassword delivers the generated password of a secretary
	// account created on behalf of an anesthesiologist.
	SendTemporaryPassword(ctx context.Context, to, name, password, invitedBy string) error
	SendFeedbackInvite(ctx context.Context, to, procedureName, link string) error
}
