package booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"casamar/models"
	"casamar/services/payment"
	"casamar/services/pms"
	"casamar/services/rooms"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	// Bounded rounds of re-selection when previously-picked rooms vanish
	// between selection and submission.
	maxReselectionRounds = 3
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Execute runs the booking transaction end to end. Any failure aborts the
// remaining steps; externally-visible effects are either completed in full
// or rolled back (the payment reservation) before returning.
func (s *DefaultTransactionService) Execute(ctx context.Context, tx models.BookingTransaction) (*models.BookingResult, error) {
	if tx.TransactionID == "" {
		tx.TransactionID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	logger := s.Logger.With(
		zap.String("transactionId", tx.TransactionID),
		zap.String("guestId", tx.GuestID))

	// 1. Structural validation.
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	// 2. Occupancy bounds on every room request, before any external call.
	for _, req := range tx.Rooms {
		if v := rooms.ValidateCapacity(req.RoomType, req.Adults, req.ChildrenLow, req.ChildrenHalf); v != nil {
			return nil, &CapacityError{Violation: v}
		}
	}

	// 3. Fetch availability once and pick a concrete room per request,
	// in request order. Each pick is excluded from the next.
	snapshot, err := s.Oracle.FetchAvailability(ctx, tx.CheckIn, tx.CheckOut)
	if err != nil {
		return nil, err
	}
	assigned, err := assignRooms(snapshot, tx.Rooms, nil)
	if err != nil {
		return nil, err
	}

	// 4. Reserve the full transaction amount before touching the booking
	// API. A failure past this point converts into "payment reserved,
	// booking not yet attempted", which is safely retryable.
	rail, err := payment.ForMethod(tx.PaymentMethod, s.Card, s.Transfer)
	if err != nil {
		return nil, &ValidationError{Field: "paymentMethod", Message: err.Error()}
	}
	if err := rail.Confirm(ctx, tx.PaymentID); err != nil {
		if payment.IsRetryableConfirmation(err) {
			return nil, &PendingError{Err: err}
		}
		return nil, err
	}
	if err := rail.Reserve(ctx, tx.PaymentID, tx.TotalAmount); err != nil {
		if errors.Is(err, payment.ErrRecordNotFound) {
			return nil, &PendingError{Err: err}
		}
		return nil, err
	}

	// 5. Re-validate availability immediately before submission; rooms
	// that vanished since selection are re-picked from the fresh snapshot.
	assigned, err = s.revalidate(ctx, tx, assigned)
	if err != nil {
		s.releaseReservation(ctx, rail, tx, err)
		return nil, err
	}

	// 6. One atomic submission covering every selected room.
	ref, err := s.PMS.SubmitReservation(ctx, buildReservation(tx, assigned))
	if err != nil {
		s.releaseReservation(ctx, rail, tx, err)
		return nil, &SubmissionError{Err: err}
	}
	logger.Info("reservation submitted",
		zap.String("reservationRef", ref),
		zap.Strings("rooms", assigned))

	// 7. Best-effort bookkeeping: a booking that succeeded but whose
	// ledger update failed is logged, never reversed.
	if err := rail.AppendReservationCode(ctx, tx.PaymentID, ref); err != nil {
		logger.Error("ledger write failed after successful booking",
			zap.String("reservationRef", ref), zap.Error(err))
	}
	if s.Archive != nil {
		record := models.BookingRecord{
			ReservationRef: ref,
			RoomNumbers:    assigned,
			Transaction:    tx,
		}
		if _, err := s.Archive.SaveBooking(ctx, record); err != nil {
			logger.Error("failed to archive booking", zap.Error(err))
		}
	}

	return &models.BookingResult{
		ReservationRef: ref,
		RoomNumbers:    assigned,
		Message: fmt.Sprintf("Your reservation %s is confirmed: room(s) %s from %s to %s.",
			ref, strings.Join(assigned, ", "), tx.CheckIn, tx.CheckOut),
	}, nil
}

// assignRooms picks one room per request in order. preassigned pins
// positions that already hold a still-valid pick (used by re-validation);
// nil or empty entries get a fresh selection.
func assignRooms(snapshot models.AvailabilitySnapshot, requests []models.RoomRequest, preassigned []string) ([]string, error) {
	assigned := make([]string, len(requests))
	excluded := make(map[string]bool)
	for i, roomID := range preassigned {
		if roomID != "" {
			assigned[i] = roomID
			excluded[roomID] = true
		}
	}

	// Check every type's shortfall before picking anything, so the error
	// names how many rooms the whole request is short.
	needed := make(map[models.RoomType]int)
	for i, req := range requests {
		if assigned[i] == "" {
			needed[req.RoomType]++
		}
	}
	for roomType, count := range needed {
		if available := rooms.CountAvailable(snapshot, roomType, excluded); available < count {
			return nil, &rooms.AvailabilityError{RoomType: roomType, Missing: count - available}
		}
	}

	for i, req := range requests {
		if assigned[i] != "" {
			continue
		}
		roomID, ok := rooms.SelectRoom(snapshot, req.RoomType, excluded)
		if !ok {
			return nil, &rooms.AvailabilityError{RoomType: req.RoomType, Missing: 1}
		}
		assigned[i] = roomID
		excluded[roomID] = true
	}
	return assigned, nil
}

// revalidate re-fetches availability and confirms every selected room is
// still present, re-selecting only the slots that disappeared. Bounded;
// cross-transaction conflicts surface here rather than at submission.
func (s *DefaultTransactionService) revalidate(ctx context.Context, tx models.BookingTransaction, assigned []string) ([]string, error) {
	for round := 0; round < maxReselectionRounds; round++ {
		snapshot, err := s.Oracle.FetchAvailability(ctx, tx.CheckIn, tx.CheckOut)
		if err != nil {
			return nil, err
		}

		kept := make([]string, len(assigned))
		stable := true
		for i, roomID := range assigned {
			if snapshot.Has(roomID) && snapshot.Rooms[roomID] == tx.Rooms[i].RoomType {
				kept[i] = roomID
			} else {
				stable = false
			}
		}
		if stable {
			return assigned, nil
		}

		s.Logger.Warn("selected rooms vanished before submission, re-selecting",
			zap.String("transactionId", tx.TransactionID),
			zap.Int("round", round+1))
		assigned, err = assignRooms(snapshot, tx.Rooms, kept)
		if err != nil {
			return nil, err
		}
	}
	return nil, &rooms.AvailabilityError{
		Err: fmt.Errorf("room selection would not stabilize after %d rounds", maxReselectionRounds),
	}
}

// releaseReservation rolls back the full-amount reservation after an
// abort. A failed release is flagged for manual reconciliation instead of
// failing the abort path twice.
func (s *DefaultTransactionService) releaseReservation(ctx context.Context, rail payment.ReservationService, tx models.BookingTransaction, cause error) {
	if err := rail.Release(ctx, tx.PaymentID, tx.TotalAmount); err != nil {
		s.Logger.Error("failed to release payment reservation, flagging for manual reconciliation",
			zap.String("transactionId", tx.TransactionID),
			zap.String("paymentId", tx.PaymentID),
			zap.Float64("amount", tx.TotalAmount),
			zap.NamedError("cause", cause),
			zap.Error(err))
		if s.Archive != nil {
			record := models.EscalationRecord{
				GuestID:     tx.GuestID,
				Transaction: tx,
				Reason:      fmt.Sprintf("payment reserved but booking aborted (%v); release failed: %v", cause, err),
			}
			if _, archiveErr := s.Archive.SaveEscalation(ctx, record); archiveErr != nil {
				s.Logger.Error("failed to record reconciliation flag", zap.Error(archiveErr))
			}
		}
	}
}

// buildReservation encodes the room assignment as the booking API's
// parallel delimited lists, e.g. reserverooms "24+25" with adultcount "2+2".
func buildReservation(tx models.BookingTransaction, assigned []string) pms.ReservationRequest {
	adults := make([]string, len(tx.Rooms))
	children := make([]string, len(tx.Rooms))
	for i, req := range tx.Rooms {
		adults[i] = strconv.Itoa(req.Adults)
		children[i] = strconv.Itoa(req.ChildrenLow + req.ChildrenHalf)
	}
	return pms.ReservationRequest{
		CheckIn:       tx.CheckIn,
		CheckOut:      tx.CheckOut,
		FirstName:     tx.FirstName,
		LastName:      tx.LastName,
		Email:         tx.Email,
		Phone:         tx.Phone,
		ReserveRooms:  strings.Join(assigned, "+"),
		AdultCount:    strings.Join(adults, "+"),
		ChildrenCount: strings.Join(children, "+"),
	}
}

func validateTransaction(tx models.BookingTransaction) error {
	switch {
	case tx.GuestID == "":
		return &ValidationError{Field: "guestId", Message: "guest identifier is required"}
	case tx.FirstName == "" || tx.LastName == "":
		return &ValidationError{Field: "name", Message: "first and last name are required"}
	case !emailPattern.MatchString(tx.Email):
		return &ValidationError{Field: "email", Message: "email address is not valid"}
	case len(tx.Rooms) == 0:
		return &ValidationError{Field: "rooms", Message: "at least one room request is required"}
	case tx.TotalAmount <= 0:
		return &ValidationError{Field: "totalAmount", Message: "total amount must be positive"}
	case tx.PaymentID == "":
		return &ValidationError{Field: "paymentId", Message: "payment identifier is required"}
	}

	checkIn, err := time.Parse(dateLayout, tx.CheckIn)
	if err != nil {
		return &ValidationError{Field: "checkIn", Message: "check-in date must be YYYY-MM-DD"}
	}
	checkOut, err := time.Parse(dateLayout, tx.CheckOut)
	if err != nil {
		return &ValidationError{Field: "checkOut", Message: "check-out date must be YYYY-MM-DD"}
	}
	if !checkOut.After(checkIn) {
		return &ValidationError{Field: "checkOut", Message: "check-out must be after check-in"}
	}

	for i, req := range tx.Rooms {
		if !req.RoomType.Valid() {
			return &ValidationError{
				Field:   fmt.Sprintf("rooms[%d].roomType", i),
				Message: fmt.Sprintf("unknown room type %q", req.RoomType),
			}
		}
		if req.Adults <= 0 && req.RoomType != models.RoomDayPass {
			return &ValidationError{
				Field:   fmt.Sprintf("rooms[%d].adults", i),
				Message: "at least one adult is required per room",
			}
		}
	}
	return nil
}
