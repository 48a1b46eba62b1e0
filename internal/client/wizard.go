package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Domenick1991/parkinglot/internal/domain"
)

type WizardState string

const (
	WizardIdle            WizardState = "idle"
	WizardConfirming      WizardState = "confirming"
	WizardChoosingPayment WizardState = "choosing_payment"
	WizardSubmitting      WizardState = "submitting"
	WizardDone            WizardState = "done"
	WizardFailed          WizardState = "failed"
	WizardCancelled       WizardState = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid checkout step")

type Exiter interface {
	Exit(ctx context.Context, sessionID int64, method domain.PaymentMethod) (*domain.Receipt, error)
}

// CheckoutWizard drives a vehicle exit through confirmation and payment
// choice. It holds no rendering state; a UI renders State() after each step.
//
//	Idle -> Confirming -> ChoosingPayment -> Submitting -> Done | Failed
//	Confirming | ChoosingPayment -> Cancelled
//	Failed -> ChoosingPayment (retry)
type CheckoutWizard struct {
	exiter Exiter

	mu      sync.Mutex
	state   WizardState
	session domain.ActiveSession
	method  domain.PaymentMethod
	receipt *domain.Receipt
	err     error
}

func NewCheckoutWizard(exiter Exiter) *CheckoutWizard {
	return &CheckoutWizard{exiter: exiter, state: WizardIdle}
}

func (w *CheckoutWizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *CheckoutWizard) Session() domain.ActiveSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *CheckoutWizard) Receipt() *domain.Receipt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.receipt
}

func (w *CheckoutWizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Start opens the confirmation step for an active session.
func (w *CheckoutWizard) Start(session domain.ActiveSession) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(WizardIdle); err != nil {
		return err
	}
	w.session = session
	w.state = WizardConfirming
	return nil
}

func (w *CheckoutWizard) Confirm() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(WizardConfirming); err != nil {
		return err
	}
	w.state = WizardChoosingPayment
	return nil
}

func (w *CheckoutWizard) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(WizardConfirming, WizardChoosingPayment); err != nil {
		return err
	}
	w.state = WizardCancelled
	return nil
}

// Retry returns a failed checkout to the payment choice.
func (w *CheckoutWizard) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(WizardFailed); err != nil {
		return err
	}
	w.err = nil
	w.state = WizardChoosingPayment
	return nil
}

// ChoosePayment submits the exit. A second call while one is in flight is an
// invalid transition, so one wizard never submits twice.
func (w *CheckoutWizard) ChoosePayment(ctx context.Context, method domain.PaymentMethod) (*domain.Receipt, error) {
	if _, err := domain.ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}

	w.mu.Lock()
	if err := w.expect(WizardChoosingPayment); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.method = method
	w.state = WizardSubmitting
	sessionID := w.session.ID
	w.mu.Unlock()

	receipt, err := w.exiter.Exit(ctx, sessionID, method)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = WizardFailed
		w.err = err
		return nil, err
	}
	w.state = WizardDone
	w.receipt = receipt
	return receipt, nil
}

// expect must be called with mu held.
func (w *CheckoutWizard) expect(states ...WizardState) error {
	for _, s := range states {
		if w.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot leave %s", ErrInvalidTransition, w.state)
}
