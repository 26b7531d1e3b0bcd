package payment

import (
	"context"
	"fmt"

	"casamar/models"
)

// ReservationService is the common contract over the two payment rails.
// Reserve is the only place a transaction mutates the record's used
// amount, and always covers the full transaction amount in one call.
type ReservationService interface {
	// Confirm verifies that the payment behind the id can be trusted:
	// the rail record exists and the underlying payment cleared.
	Confirm(ctx context.Context, paymentID string) error
	// Reserve atomically consumes amount from the record's balance.
	Reserve(ctx context.Context, paymentID string, amount float64) error
	// Release undoes a prior Reserve of the same amount.
	Release(ctx context.Context, paymentID string, amount float64) error
	// AppendReservationCode idempotently records a reservation reference
	// on the payment record.
	AppendReservationCode(ctx context.Context, paymentID, code string) error
}

// ForMethod selects the rail implementation for the transaction's payment
// method. Selection happens once per transaction and is never
// re-dispatched mid-flow.
func ForMethod(method models.PaymentMethod, card, transfer ReservationService) (ReservationService, error) {
	switch method {
	case models.MethodCard:
		return card, nil
	case models.MethodTransfer:
		return transfer, nil
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", method)
	}
}
