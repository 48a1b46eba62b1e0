package client

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExiter struct {
	mock.Mock
}

func (m *MockExiter) Exit(ctx context.Context, sessionID int64, method domain.PaymentMethod) (*domain.Receipt, error) {
	args := m.Called(ctx, sessionID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func activeSession() domain.ActiveSession {
	return domain.ActiveSession{Session: domain.Session{ID: 4, Plate: "ABC123"}, ElapsedText: "1h 0m"}
}

func TestCheckoutWizard_HappyPath(t *testing.T) {
	ctx := context.Background()
	exiter := &MockExiter{}
	receipt := &domain.Receipt{AmountFormatted: "RD$50.00"}
	exiter.On("Exit", ctx, int64(4), domain.PaymentCard).Return(receipt, nil).Once()

	w := NewCheckoutWizard(exiter)
	assert.Equal(t, WizardIdle, w.State())

	require.NoError(t, w.Start(activeSession()))
	assert.Equal(t, WizardConfirming, w.State())

	require.NoError(t, w.Confirm())
	assert.Equal(t, WizardChoosingPayment, w.State())

	got, err := w.ChoosePayment(ctx, domain.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, receipt, got)
	assert.Equal(t, WizardDone, w.State())
	assert.Equal(t, receipt, w.Receipt())

	_, err = w.ChoosePayment(ctx, domain.PaymentCard)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	exiter.AssertExpectations(t)
}

func TestCheckoutWizard_Cancel(t *testing.T) {
	w := NewCheckoutWizard(&MockExiter{})

	assert.ErrorIs(t, w.Cancel(), ErrInvalidTransition)

	require.NoError(t, w.Start(activeSession()))
	require.NoError(t, w.Cancel())
	assert.Equal(t, WizardCancelled, w.State())

	assert.ErrorIs(t, w.Confirm(), ErrInvalidTransition)
}

func TestCheckoutWizard_CancelFromPaymentChoice(t *testing.T) {
	w := NewCheckoutWizard(&MockExiter{})

	require.NoError(t, w.Start(activeSession()))
	require.NoError(t, w.Confirm())
	require.NoError(t, w.Cancel())
	assert.Equal(t, WizardCancelled, w.State())
}

func TestCheckoutWizard_FailureAndRetry(t *testing.T) {
	ctx := context.Background()
	exiter := &MockExiter{}
	exiter.On("Exit", ctx, int64(4), domain.PaymentCash).Return(nil, &NetworkError{Op: "exit", Err: errors.New("reset")}).Once()
	exiter.On("Exit", ctx, int64(4), domain.PaymentCash).Return(&domain.Receipt{}, nil).Once()

	w := NewCheckoutWizard(exiter)
	require.NoError(t, w.Start(activeSession()))
	require.NoError(t, w.Confirm())

	_, err := w.ChoosePayment(ctx, domain.PaymentCash)
	require.Error(t, err)
	assert.Equal(t, WizardFailed, w.State())
	assert.Error(t, w.Err())

	require.NoError(t, w.Retry())
	assert.Equal(t, WizardChoosingPayment, w.State())
	assert.NoError(t, w.Err())

	_, err = w.ChoosePayment(ctx, domain.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, WizardDone, w.State())
	exiter.AssertExpectations(t)
}

func TestCheckoutWizard_RejectsUnknownPayment(t *testing.T) {
	w := NewCheckoutWizard(&MockExiter{})
	require.NoError(t, w.Start(activeSession()))
	require.NoError(t, w.Confirm())

	_, err := w.ChoosePayment(context.Background(), "voucher")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, WizardChoosingPayment, w.State())
}

func TestCheckoutWizard_SkippingConfirmIsInvalid(t *testing.T) {
	w := NewCheckoutWizard(&MockExiter{})
	require.NoError(t, w.Start(activeSession()))

	_, err := w.ChoosePayment(context.Background(), domain.PaymentCash)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, w.Start(activeSession()), ErrInvalidTransition)
}
