package email

import (
	"context"
	"fmt"
	"html"
)

const brand = "SureKeys"

// OTPMailer sends verification codes through a Sender.
type OTPMailer struct {
	sender Sender
}

// NewOTPMailer creates an OTP mailer.
func NewOTPMailer(sender Sender) *OTPMailer {
	return &OTPMailer{sender: sender}
}

// SendOTP emails code to the account holder.
func (m *OTPMailer) SendOTP(ctx context.Context, to, name, code string) error {
	return m.sender.Send(ctx, otpMessage(to, name, code))
}

func otpMessage(to, name, code string) Message {
	text := fmt.Sprintf(
		"Hello %s,\n\nUse the code below to verify your email on %s:\n\n    %s\n\nThis code expires in 10 minutes. If you did not request it, you can ignore this email.\n\nThe %s Team\n",
		name, brand, code, brand,
	)
	body := fmt.Sprintf(
		`<div style="font-family: sans-serif; padding: 24px;">`+
			`<p>Hello %s,</p>`+
			`<p>Use the code below to verify your email on <strong>%s</strong>:</p>`+
			`<p style="font-size: 22px; font-weight: bold; letter-spacing: 3px;">%s</p>`+
			`<p>This code expires in <strong>10 minutes</strong>. If you did not request it, you can ignore this email.</p>`+
			`<p>The %s Team</p></div>`,
		html.EscapeString(name), brand, code, brand,
	)
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Your " + brand + " verification code",
		Text:    text,
		HTML:    body,
	}
}
