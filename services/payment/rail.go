package payment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	paymentRepo "casamar/database/repository/payment"

	"go.uber.org/zap"
)

// railService carries the behavior shared by both rails: atomic
// reservation against the ledger and the idempotent code write.
type railService struct {
	name   string
	repo   paymentRepo.RecordRepository
	logger *zap.Logger
}

func (s *railService) Reserve(ctx context.Context, paymentID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("invalid reservation amount %.2f", amount)
	}
	if err := s.repo.ReserveAmount(ctx, paymentID, amount); err != nil {
		return err
	}
	s.logger.Info("reserved payment amount",
		zap.String("rail", s.name),
		zap.String("paymentId", paymentID),
		zap.Float64("amount", amount))
	return nil
}

func (s *railService) Release(ctx context.Context, paymentID string, amount float64) error {
	if err := s.repo.ReleaseAmount(ctx, paymentID, amount); err != nil {
		return err
	}
	s.logger.Info("released payment amount",
		zap.String("rail", s.name),
		zap.String("paymentId", paymentID),
		zap.Float64("amount", amount))
	return nil
}

// AppendReservationCode merges the code into the record's stored set and
// overwrites the field with the sorted, comma-joined result. Applying the
// same code twice leaves the stored value unchanged.
func (s *railService) AppendReservationCode(ctx context.Context, paymentID, code string) error {
	record, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return err
	}

	merged := MergeReservationCodes(record.ReservationCodes, code)
	if merged == record.ReservationCodes {
		return nil
	}
	return s.repo.SetReservationCodes(ctx, paymentID, merged)
}

// MergeReservationCodes returns the comma-joined union of the existing
// code list and the new code, sorted for a deterministic stored value.
func MergeReservationCodes(existing, code string) string {
	set := map[string]bool{}
	for _, c := range strings.Split(existing, ",") {
		if c = strings.TrimSpace(c); c != "" {
			set[c] = true
		}
	}
	if code = strings.TrimSpace(code); code != "" {
		set[code] = true
	}

	codes := make([]string, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return strings.Join(codes, ",")
}

// confirmLedger is the ledger half of Confirm, shared by both rails.
func (s *railService) confirmLedger(ctx context.Context, paymentID string, amount float64) error {
	record, err := s.repo.Get(ctx, paymentID)
	if errors.Is(err, paymentRepo.ErrRecordNotFound) {
		return &ConfirmationError{PaymentID: paymentID, Transient: true, Err: err}
	}
	if err != nil {
		return &ConfirmationError{PaymentID: paymentID, Transient: true, Err: err}
	}
	if amount > 0 && record.Remaining() < amount {
		return ErrInsufficientFunds
	}
	return nil
}
