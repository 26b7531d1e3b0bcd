package booking

import (
	"context"

	recordsRepo "casamar/database/repository/records"
	"casamar/models"
	"casamar/services/payment"
	"casamar/services/pms"
	"casamar/services/rooms"

	"go.uber.org/zap"
)

// TransactionService runs one payment-gated booking transaction from
// validation through submission. One run yields exactly one of: full
// success with every requested room booked under a single reservation
// reference, or failure with zero externally-visible bookings.
type TransactionService interface {
	Execute(ctx context.Context, tx models.BookingTransaction) (*models.BookingResult, error)
}

// DefaultTransactionService implements TransactionService.
type DefaultTransactionService struct {
	Oracle   *rooms.Oracle
	Card     payment.ReservationService
	Transfer payment.ReservationService
	PMS      pms.Client
	Archive  recordsRepo.ArchiveRepository
	Logger   *zap.Logger
}
