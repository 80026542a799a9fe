package notify

import (
	"context"
	"fmt"
	"log/slog"

	"westcoastdigital.co.za/app/internal/modules/businesses"
	"westcoastdigital.co.za/app/internal/modules/email"
	"westcoastdigital.co.za/app/internal/modules/payments"
)

type UserDirectory interface {
	ContactFor(ctx context.Context, id string) (name, email string, err error)
}

type BusinessDirectory interface {
	Get(ctx context.Context, id string) (businesses.Business, error)
}

// Dispatcher sends the payer and admin notices for settlement events.
// Delivery is detached from the caller: failures are logged and never
// reach the settlement path.
type Dispatcher struct {
	emails     email.Service
	users      UserDirectory
	businesses BusinessDirectory
	adminEmail string
	logger     *slog.Logger

	// async detaches delivery from the request; tests set it false.
	async bool
}

func NewDispatcher(emails email.Service, users UserDirectory, biz BusinessDirectory, adminEmail string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		emails:     emails,
		users:      users,
		businesses: biz,
		adminEmail: adminEmail,
		logger:     logger,
		async:      true,
	}
}

// SetSynchronous makes delivery block the caller (tests).
func (d *Dispatcher) SetSynchronous() { d.async = false }

func (d *Dispatcher) PaymentCompleted(ctx context.Context, p payments.Payment) {
	d.deliver(ctx, func(ctx context.Context) {
		name, addr, err := d.users.ContactFor(ctx, p.UserID)
		if err != nil {
			d.logger.ErrorContext(ctx, "payment confirmation: payer lookup failed",
				"payment_id", p.ID, "user_id", p.UserID, "err", err)
			return
		}

		businessName := p.BusinessID
		if b, err := d.businesses.Get(ctx, p.BusinessID); err == nil {
			businessName = b.Name
		}

		gatewayRef := ""
		if p.GatewayRef != nil {
			gatewayRef = *p.GatewayRef
		}
		paidAt := ""
		if p.PaymentDate != nil {
			paidAt = p.PaymentDate.Format("2 January 2006")
		}

		subject := "Payment Confirmation - West Coast Digital"
		html := fmt.Sprintf(`<h2>Payment Successful!</h2>
<p>Thank you for your payment to West Coast Digital.</p>
<p><strong>Business:</strong> %s</p>
<p><strong>Amount:</strong> R%s</p>
<p><strong>Plan:</strong> %s</p>
<p><strong>Payment Type:</strong> %s</p>
<p><strong>Transaction ID:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<br>
<p>If you have any questions about your payment, please contact our support team.</p>
<br>
<p>Best regards,<br>The West Coast Digital Team</p>`,
			businessName, payments.AmountString(p.AmountCents), p.Plan, p.Type, gatewayRef, paidAt)
		text := fmt.Sprintf("Payment successful!\n\nBusiness: %s\nAmount: R%s\nPlan: %s\nPayment type: %s\nTransaction ID: %s\nDate: %s\n\nBest regards,\nThe West Coast Digital Team",
			businessName, payments.AmountString(p.AmountCents), p.Plan, p.Type, gatewayRef, paidAt)

		if err := d.emails.SendEmail(ctx, addr, name, subject, html, text); err != nil {
			d.logger.ErrorContext(ctx, "payment confirmation delivery failed",
				"payment_id", p.ID, "to", addr, "err", err)
		}
	})
}

func (d *Dispatcher) FundsDistributed(ctx context.Context, p payments.Payment) {
	d.deliver(ctx, func(ctx context.Context) {
		if d.adminEmail == "" {
			return
		}

		subject := "Funds Distributed - West Coast Digital"
		html := fmt.Sprintf(`<h2>Funds Distributed</h2>
<p>The funds for payment %s have been transferred.</p>
<p><strong>Total:</strong> R%s</p>
<p><strong>Owner account (%s):</strong> R%s</p>
<p><strong>Reserve account (%s):</strong> R%s</p>
<p><strong>Tax due on owner share:</strong> R%s</p>`,
			p.ID,
			payments.AmountString(p.AmountCents),
			p.Distribution.OwnerAccount, payments.AmountString(p.Distribution.OwnerCents),
			p.Distribution.ReserveAccount, payments.AmountString(p.Distribution.ReserveCents),
			payments.AmountString(p.Tax.TaxCents))
		text := fmt.Sprintf("Funds distributed for payment %s.\nTotal: R%s\nOwner (%s): R%s\nReserve (%s): R%s\nTax due: R%s",
			p.ID,
			payments.AmountString(p.AmountCents),
			p.Distribution.OwnerAccount, payments.AmountString(p.Distribution.OwnerCents),
			p.Distribution.ReserveAccount, payments.AmountString(p.Distribution.ReserveCents),
			payments.AmountString(p.Tax.TaxCents))

		if err := d.emails.SendEmail(ctx, d.adminEmail, "", subject, html, text); err != nil {
			d.logger.ErrorContext(ctx, "distribution notice delivery failed",
				"payment_id", p.ID, "to", d.adminEmail, "err", err)
		}
	})
}

func (d *Dispatcher) deliver(ctx context.Context, fn func(context.Context)) {
	if !d.async {
		fn(ctx)
		return
	}
	go fn(context.WithoutCancel(ctx))
}
