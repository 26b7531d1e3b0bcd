package payment

import (
	"context"

	paymentRepo "casamar/database/repository/payment"

	"go.uber.org/zap"
)

// TransferService is the bank-transfer rail. A transfer is confirmed as
// soon as the back office has registered its ledger record; until then
// confirmation stays transiently unavailable.
type TransferService struct {
	railService
}

// NewTransferService builds the bank-transfer rail over its ledger repository.
func NewTransferService(repo paymentRepo.RecordRepository, logger *zap.Logger) *TransferService {
	return &TransferService{
		railService: railService{name: "transfer", repo: repo, logger: logger},
	}
}

// Confirm checks that the transfer has been registered on the ledger.
func (s *TransferService) Confirm(ctx context.Context, paymentID string) error {
	return s.confirmLedger(ctx, paymentID, 0)
}
