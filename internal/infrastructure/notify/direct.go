// Package notify delivers OTP codes directly over SNS and SMTP. It is the
// fallback route for environments without the delivery automation webhook.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dashcrm-api/internal/infrastructure/smtp"
	"github.com/dashcrm-api/internal/infrastructure/sns"
)

const emailSubject = "Seu código de acesso"

// DirectSender routes the code by the identifier the user logged in with:
// email goes through SMTP, phone through SNS SMS.
type DirectSender struct {
	sms    sns.SMSSender
	mailer smtp.Mailer
}

func NewDirectSender(sms sns.SMSSender, mailer smtp.Mailer) *DirectSender {
	return &DirectSender{sms: sms, mailer: mailer}
}

func (d *DirectSender) SendCode(ctx context.Context, email, phone, userName, _ string, code string, expiresAt time.Time, identifierType string) error {
	minutes := int(time.Until(expiresAt).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	message := fmt.Sprintf("Olá %s, seu código de acesso é %s. Ele expira em %d minutos.", userName, code, minutes)

	if identifierType == "email" && email != "" {
		if d.mailer == nil {
			return fmt.Errorf("smtp mailer not configured")
		}
		return d.mailer.SendEmail(email, emailSubject, message)
	}

	if d.sms == nil {
		return fmt.Errorf("sns sender not configured")
	}
	return d.sms.SendSMS(ctx, "+"+phone, message)
}
