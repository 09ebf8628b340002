package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
	"leadboard/config"
)

// SendInvitationEmail mails a newly provisioned user their temporary password.
// It is a no-op when SMTP is not configured (local development).
func SendInvitationEmail(toEmail, fullName, tempPassword string) error {
	if config.AppConfig.SMTPHost == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your consultant dashboard account")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nAn account was created for you on the consultant dashboard.\n\n"+
			"Email: %s\nTemporary password: %s\n\n"+
			"You will be asked to change this password on first login.\n",
		fullName, toEmail, tempPassword,
	))

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)
	return d.DialAndSend(m)
}
