package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"westcoastdigital.co.za/app/internal/mailer"
)

func TestMailerAdapterSendsThroughMailer(t *testing.T) {
	mock := &mailer.Mock{}
	a := NewMailerAdapter(mock, "noreply@westcoastdigital.co.za", "West Coast Digital")

	err := a.SendEmail(context.Background(),
		"owner@example.com", "Thandi",
		"Payment Confirmation - West Coast Digital",
		"<p>Paid</p>", "Paid")
	require.NoError(t, err)

	require.Len(t, mock.Sent, 1)
	e := mock.Sent[0]
	require.Equal(t, "noreply@westcoastdigital.co.za", e.From)
	require.Equal(t, "West Coast Digital", e.FromName)
	require.Equal(t, []string{"owner@example.com"}, e.To)
	require.Equal(t, "Payment Confirmation - West Coast Digital", e.Subject)
	require.Equal(t, "<p>Paid</p>", e.HTMLBody)
	require.Equal(t, "Paid", e.TextBody)
}

func TestMailerAdapterPropagatesSendError(t *testing.T) {
	mock := &mailer.Mock{Err: errors.New("smtp down")}
	a := NewMailerAdapter(mock, "noreply@westcoastdigital.co.za", "West Coast Digital")

	err := a.SendEmail(context.Background(), "owner@example.com", "", "s", "h", "t")
	require.EqualError(t, err, "smtp down")
}
