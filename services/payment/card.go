package payment

import (
	"context"

	paymentRepo "casamar/database/repository/payment"

	"go.uber.org/zap"
)

// IntentVerifier checks the card authorization behind a ledger record
// with the card processor.
type IntentVerifier interface {
	Verify(ctx context.Context, paymentID string) error
}

// CardService is the card-authorization rail.
type CardService struct {
	railService
	Intents IntentVerifier
}

// NewCardService builds the card rail over its ledger repository.
func NewCardService(repo paymentRepo.RecordRepository, intents IntentVerifier, logger *zap.Logger) *CardService {
	return &CardService{
		railService: railService{name: "card", repo: repo, logger: logger},
		Intents:     intents,
	}
}

// Confirm verifies the authorization with the processor first, then the
// ledger record.
func (s *CardService) Confirm(ctx context.Context, paymentID string) error {
	if s.Intents != nil {
		if err := s.Intents.Verify(ctx, paymentID); err != nil {
			return err
		}
	}
	return s.confirmLedger(ctx, paymentID, 0)
}
