package booking

import (
	"errors"
	"fmt"

	"casamar/services/payment"
	"casamar/services/rooms"
)

// ValidationError covers structurally bad input. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CapacityError wraps an occupancy-bound violation. Never retried.
type CapacityError struct {
	Violation *rooms.Violation
}

func (e *CapacityError) Error() string {
	return e.Violation.Error()
}

// SubmissionError marks a rejected or timed-out booking API call.
// Retryable through the recovery machine, never by the caller.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("booking submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PendingError means payment could not be confirmed yet; the transaction
// must be handed to the recovery machine.
type PendingError struct {
	Err error
}

func (e *PendingError) Error() string {
	return fmt.Sprintf("payment confirmation pending: %v", e.Err)
}

func (e *PendingError) Unwrap() error { return e.Err }

// Retryable reports whether the recovery machine should keep re-running
// the transaction after this failure. Validation, capacity and exhausted
// funds are terminal; inventory, submission and transient payment
// failures are not.
func Retryable(err error) bool {
	var (
		pendingErr      *PendingError
		availabilityErr *rooms.AvailabilityError
		submissionErr   *SubmissionError
	)
	switch {
	case errors.As(err, &pendingErr),
		errors.As(err, &availabilityErr),
		errors.As(err, &submissionErr):
		return true
	case errors.Is(err, payment.ErrRecordNotFound):
		return true
	}
	return payment.IsRetryableConfirmation(err)
}

// CustomerMessage renders a guest-facing message for a failed or pending
// transaction. The text is safe to relay verbatim.
func CustomerMessage(err error) string {
	var (
		validationErr   *ValidationError
		capacityErr     *CapacityError
		availabilityErr *rooms.AvailabilityError
	)
	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("We could not process your booking: %s.", validationErr.Message)
	case errors.As(err, &capacityErr):
		return capacityErr.Violation.Suggestion
	case errors.As(err, &availabilityErr) && availabilityErr.Missing > 0:
		return fmt.Sprintf("We are %d %s room(s) short for those dates. We will keep trying and let you know.",
			availabilityErr.Missing, availabilityErr.RoomType)
	case errors.Is(err, payment.ErrInsufficientFunds):
		return "Your payment does not cover the full booking amount. Please check your payment and try again."
	case Retryable(err):
		return "We are processing your payment. We will confirm your booking shortly."
	}
	return "Something went wrong while processing your booking. Please try again later."
}
