package payments

import (
	"context"

	"westcoastdigital.co.za/app/internal/modules/subscriptions"
)

// SubscriptionAdapter bridges the settlement contracts onto the
// subscriptions repository.
type SubscriptionAdapter struct{ repo *subscriptions.Repo }

func NewSubscriptionAdapter(repo *subscriptions.Repo) *SubscriptionAdapter {
	return &SubscriptionAdapter{repo: repo}
}

func (a *SubscriptionAdapter) Activate(ctx context.Context, in SubscriptionActivation) error {
	_, err := a.repo.Upsert(ctx, subscriptions.UpsertInput{
		BusinessID:  in.BusinessID,
		UserID:      in.UserID,
		Plan:        in.Plan,
		AmountCents: in.AmountCents,
		Status:      subscriptions.StatusActive,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	})
	return err
}

func (a *SubscriptionAdapter) Cancel(ctx context.Context, businessID string) error {
	return a.repo.Cancel(ctx, businessID)
}
