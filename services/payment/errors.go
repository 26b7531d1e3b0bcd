package payment

import (
	"errors"
	"fmt"

	paymentRepo "casamar/database/repository/payment"
)

// ErrInsufficientFunds means the record's remaining balance cannot cover
// the transaction amount. Never retried.
var ErrInsufficientFunds = paymentRepo.ErrInsufficientFunds

// ErrRecordNotFound means the rail has no record under the id. For bank
// transfers this usually means the transfer has not been registered yet,
// so the recovery machine treats it as retryable.
var ErrRecordNotFound = paymentRepo.ErrRecordNotFound

// ConfirmationError marks a payment that could not be confirmed right
// now. Transient causes (rail unreachable, record not yet registered,
// card authorization still processing) are retryable.
type ConfirmationError struct {
	PaymentID string
	Transient bool
	Err       error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("payment %s could not be confirmed: %v", e.PaymentID, e.Err)
}

func (e *ConfirmationError) Unwrap() error { return e.Err }

// IsRetryableConfirmation reports whether err is a confirmation failure
// the recovery machine should keep retrying.
func IsRetryableConfirmation(err error) bool {
	var ce *ConfirmationError
	if errors.As(err, &ce) {
		return ce.Transient
	}
	return false
}
