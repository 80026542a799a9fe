package payments

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"westcoastdigital.co.za/app/internal/modules/businesses"
)

type ledgerMock struct{ mock.Mock }

func (m *ledgerMock) Create(ctx context.Context, p *Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ledgerMock) Get(ctx context.Context, id string) (Payment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Payment), args.Error(1)
}

func (m *ledgerMock) FindByGatewayRef(ctx context.Context, ref string) (Payment, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(Payment), args.Error(1)
}

func (m *ledgerMock) FindPendingByMerchantRef(ctx context.Context, ref string) (Payment, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(Payment), args.Error(1)
}

func (m *ledgerMock) CompleteIfPending(ctx context.Context, id, gatewayRef string, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, gatewayRef, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *ledgerMock) MarkFailedIfPending(ctx context.Context, id, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

func (m *ledgerMock) MarkRefunded(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ledgerMock) WriteDistribution(ctx context.Context, id string, d Distribution, t Tax) error {
	return m.Called(ctx, id, d, t).Error(0)
}

func (m *ledgerMock) MarkTransferred(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *ledgerMock) ListUndistributed(ctx context.Context, limit int) ([]Payment, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *ledgerMock) RecordNotification(ctx context.Context, n *GatewayNotification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *ledgerMock) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]Payment, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]Payment), args.Get(1).(int64), args.Error(2)
}

type businessStoreMock struct{ mock.Mock }

func (m *businessStoreMock) ApplySubscription(ctx context.Context, id, plan string, start, end time.Time) error {
	return m.Called(ctx, id, plan, start, end).Error(0)
}

func (m *businessStoreMock) ApplyBoost(ctx context.Context, id string, expiry time.Time) error {
	return m.Called(ctx, id, expiry).Error(0)
}

func (m *businessStoreMock) ResetSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *businessStoreMock) ClearBoost(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type subscriptionStoreMock struct{ mock.Mock }

func (m *subscriptionStoreMock) Activate(ctx context.Context, in SubscriptionActivation) error {
	return m.Called(ctx, in).Error(0)
}

func (m *subscriptionStoreMock) Cancel(ctx context.Context, businessID string) error {
	return m.Called(ctx, businessID).Error(0)
}

type transfererMock struct{ mock.Mock }

func (m *transfererMock) Transfer(ctx context.Context, req TransferRequest) error {
	return m.Called(ctx, req).Error(0)
}

type dispatcherMock struct{ mock.Mock }

func (m *dispatcherMock) PaymentCompleted(ctx context.Context, p Payment) {
	m.Called(ctx, p)
}

func (m *dispatcherMock) FundsDistributed(ctx context.Context, p Payment) {
	m.Called(ctx, p)
}

type directoryMock struct{ mock.Mock }

func (m *directoryMock) Get(ctx context.Context, id string) (businesses.Business, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(businesses.Business), args.Error(1)
}
