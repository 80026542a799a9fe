package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type MailtrapConfig struct {
	APIURL   string // e.g. "https://send.api.mailtrap.io/api/send"
	APIToken string // Bearer token
	From     string
	FromName string
}

type MailtrapProvider struct {
	cfg    MailtrapConfig
	client *http.Client
}

type mailtrapPayload struct {
	From     personInfo   `json:"from"`
	To       []personInfo `json:"to"`
	Subject  string       `json:"subject"`
	Text     string       `json:"text,omitempty"`
	HTML     string       `json:"html,omitempty"`
	Category string       `json:"category,omitempty"`
}

type personInfo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func NewMailtrapProvider(cfg MailtrapConfig) *MailtrapProvider {
	return &MailtrapProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MailtrapProvider) SendEmail(ctx context.Context, to, toName, subject, htmlBody, textBody string) error {
	if m.cfg.APIURL == "" || m.cfg.APIToken == "" {
		return fmt.Errorf("mailtrap credentials not configured")
	}

	payload := mailtrapPayload{
		From:     personInfo{Email: m.cfg.From, Name: m.cfg.FromName},
		To:       []personInfo{{Email: to, Name: toName}},
		Subject:  subject,
		HTML:     htmlBody,
		Text:     textBody,
		Category: "Transactional",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+m.cfg.APIToken)
	req.Header.Add("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("mailtrap API error: %d", res.StatusCode)
	}
	return nil
}
