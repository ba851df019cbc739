// Package mail delivers one-time sign-up codes.
package mail

import (
	"context"

	"go.uber.org/zap"

	"pixelsmith.org/internal/obs"
)

// LogMailer writes codes to the structured log instead of sending email.
// It backs local development and any deploy where the SMTP relay is not
// configured yet; the real transport slots in behind identity.OTPMailer.
type LogMailer struct{}

func (LogMailer) SendOTP(_ context.Context, email, code string) error {
	obs.Logger().Info("otp issued",
		zap.String("email", email),
		zap.String("code", code),
	)
	return nil
}
