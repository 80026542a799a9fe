package email

import (
	"context"
	"os"

	"westcoastdigital.co.za/app/internal/config"
	"westcoastdigital.co.za/app/internal/mailer"
)

// Service is the delivery abstraction notification senders write to.
type Service interface {
	SendEmail(ctx context.Context, to, toName, subject, htmlBody, textBody string) error
}

// NewFromEnv selects the provider: the Mailtrap HTTP API when its
// credentials are present, plain SMTP otherwise.
func NewFromEnv(cfg config.Config) Service {
	if url := os.Getenv("MAILTRAP_API_URL"); url != "" {
		return NewMailtrapProvider(MailtrapConfig{
			APIURL:   url,
			APIToken: os.Getenv("MAILTRAP_API_TOKEN"),
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
		})
	}
	return NewMailerAdapter(mailer.NewSMTPMailer(cfg.SMTP), cfg.EmailFrom, cfg.EmailFromName)
}
