package payment

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeIntentVerifier confirms card authorizations against Stripe.
// Payment ids that are not Stripe payment-intent ids are accepted as-is;
// those rails are verified through the ledger alone.
type StripeIntentVerifier struct {
	Logger *zap.Logger
}

// Verify looks up the payment intent and requires a succeeded status.
// Processor lookups that fail outright are treated as transient.
func (v *StripeIntentVerifier) Verify(ctx context.Context, paymentID string) error {
	if !strings.HasPrefix(paymentID, "pi_") {
		return nil
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := paymentintent.Get(paymentID, params)
	if err != nil {
		v.Logger.Warn("stripe payment intent lookup failed",
			zap.String("paymentId", paymentID), zap.Error(err))
		return &ConfirmationError{PaymentID: paymentID, Transient: true, Err: err}
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return &ConfirmationError{
			PaymentID: paymentID,
			Transient: intent.Status == stripe.PaymentIntentStatusProcessing,
			Err:       errStatus(intent.Status),
		}
	}
	return nil
}

type errStatus stripe.PaymentIntentStatus

func (e errStatus) Error() string {
	return "payment intent status is " + string(e)
}
