package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/feria-api/internal/models"
)

// ErrIllegalTransition is returned when a status change is not reachable by
// applying a payment. It means the stored status disagrees with the payments.
var ErrIllegalTransition = errors.New("illegal purchase status transition")

// Purchase events
const (
	EventPayPartial = "pay_partial"
	EventSettle     = "settle"
)

// PurchaseFSM wraps a purchase with its payment state machine
type PurchaseFSM struct {
	purchase *models.Purchase
	fsm      *fsm.FSM
}

// NewPurchaseFSM creates a new purchase state machine
func NewPurchaseFSM(purchase *models.Purchase) *PurchaseFSM {
	pfsm := &PurchaseFSM{
		purchase: purchase,
	}

	pfsm.fsm = fsm.NewFSM(
		string(purchase.Status),
		fsm.Events{
			// unpaid → partially_paid
			{Name: EventPayPartial, Src: []string{string(models.PaymentStatusUnpaid)}, Dst: string(models.PaymentStatusPartiallyPaid)},

			// unpaid/partially_paid → paid
			{Name: EventSettle, Src: []string{string(models.PaymentStatusUnpaid), string(models.PaymentStatusPartiallyPaid)}, Dst: string(models.PaymentStatusPaid)},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Advance moves the purchase to target. Staying in the same state is allowed;
// any move a payment cannot cause (e.g. paid → partially_paid) is rejected.
func (p *PurchaseFSM) Advance(ctx context.Context, target models.PaymentStatus) error {
	if string(target) == p.fsm.Current() {
		return nil
	}

	event, err := eventFor(target)
	if err != nil {
		return err
	}

	if err := p.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s → %s: %v", ErrIllegalTransition, p.fsm.Current(), target, err)
	}

	p.purchase.Status = models.PaymentStatus(p.fsm.Current())
	return nil
}

// Current returns the current state
func (p *PurchaseFSM) Current() models.PaymentStatus {
	return models.PaymentStatus(p.fsm.Current())
}

func eventFor(target models.PaymentStatus) (string, error) {
	switch target {
	case models.PaymentStatusPartiallyPaid:
		return EventPayPartial, nil
	case models.PaymentStatusPaid:
		return EventSettle, nil
	case models.PaymentStatusUnpaid, models.PaymentStatusOverdue:
		return "", fmt.Errorf("%w: no payment event leads to %s", ErrIllegalTransition, target)
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, target)
	}
}
