package recovery

import (
	"context"
	"fmt"
	"time"

	recordsRepo "casamar/database/repository/records"
	retryRepo "casamar/database/repository/retry"
	"casamar/models"
	"casamar/services/booking"
	"casamar/services/notify"

	"go.uber.org/zap"
)

// Scheduler plants a future recovery tick for a guest. Scheduling is only
// a hint: duplicate or lost ticks are tolerated because the persisted
// state, claimed atomically, decides who actually runs an attempt.
type Scheduler interface {
	ScheduleAttempt(guestID string, delay time.Duration) error
}

// Machine drives staged re-attempts of pending booking transactions.
// Its authoritative state lives in the retry-state store and survives
// process restarts; any worker may claim and advance it.
type Machine struct {
	States   retryRepo.StateRepository
	Booking  booking.TransactionService
	Archive  recordsRepo.ArchiveRepository
	Notifier notify.Sender
	Schedule Scheduler
	Policy   RetryPolicy
	Logger   *zap.Logger
}

// Begin persists a fresh stage-1 state for the pending transaction and
// plants the first tick. The caller has already told the guest their
// payment is being processed.
func (m *Machine) Begin(ctx context.Context, tx models.BookingTransaction) error {
	stage, _ := m.Policy.StageFor(1)

	state := models.NewRetryState(tx)
	state.NextAttemptAt = time.Now().Add(stage.Interval)
	if err := m.States.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to persist recovery state: %w", err)
	}

	if err := m.Schedule.ScheduleAttempt(tx.GuestID, stage.Interval); err != nil {
		// The poll loop will pick the state up from its nextAttemptAt.
		m.Logger.Warn("failed to schedule recovery tick, relying on poll loop",
			zap.String("guestId", tx.GuestID), zap.Error(err))
	}

	m.Logger.Info("transaction entered recovery",
		zap.String("guestId", tx.GuestID),
		zap.String("transactionId", tx.TransactionID))
	return nil
}

// Pending reports whether the guest already has a transaction waiting in
// recovery, without claiming it.
func (m *Machine) Pending(ctx context.Context, guestID string) (bool, error) {
	state, err := m.States.Get(ctx, guestID)
	if err != nil {
		return false, err
	}
	return state != nil, nil
}

// HandleTick runs one recovery attempt for a guest. Whichever worker
// claims the pending record proceeds; a worker that finds nothing exits
// quietly.
func (m *Machine) HandleTick(ctx context.Context, guestID string) error {
	state, err := m.States.Claim(ctx, guestID)
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}

	attemptErr := m.attempt(ctx, state.Transaction)
	if attemptErr == nil {
		// Resolved. The claim already removed the state.
		return nil
	}

	if !booking.Retryable(attemptErr) {
		m.Logger.Warn("recovery attempt failed terminally",
			zap.String("guestId", guestID), zap.Error(attemptErr))
		m.sendText(ctx, guestID, booking.CustomerMessage(attemptErr))
		return nil
	}

	return m.recordFailure(ctx, state, attemptErr)
}

// attempt re-runs the full orchestrator, whose own payment confirmation
// gates the rest of the transaction. Re-running is safe: recovery only
// exists while no reservation reference has been obtained.
func (m *Machine) attempt(ctx context.Context, tx models.BookingTransaction) error {
	result, err := m.Booking.Execute(ctx, tx)
	if err != nil {
		return err
	}

	m.sendText(ctx, tx.GuestID, result.Message)
	m.Logger.Info("recovery resolved pending transaction",
		zap.String("guestId", tx.GuestID),
		zap.String("reservationRef", result.ReservationRef))
	return nil
}

// recordFailure bumps the current stage's attempt counter, advances the
// stage when its bound is exhausted, and either re-persists the state
// with the next tick planted or escalates past the final stage.
func (m *Machine) recordFailure(ctx context.Context, state *models.RetryState, attemptErr error) error {
	idx := state.Stage - 1
	state.StageAttempts[idx]++
	state.LastError = attemptErr.Error()

	stage, _ := m.Policy.StageFor(state.Stage)
	if state.StageAttempts[idx] >= stage.MaxAttempts {
		if state.Stage >= m.Policy.LastStage() {
			return m.escalate(ctx, state,
				fmt.Sprintf("recovery exhausted after %v attempts; last error: %s", state.StageAttempts, state.LastError))
		}
		state.Stage++
		m.Logger.Info("recovery advanced to next stage",
			zap.String("guestId", state.GuestID),
			zap.Int("stage", state.Stage))
	}

	next, _ := m.Policy.StageFor(state.Stage)
	state.NextAttemptAt = time.Now().Add(next.Interval)
	if err := m.States.Save(ctx, *state); err != nil {
		// The claim already removed the old record; failing to write the
		// new one would silently end recovery for this guest.
		m.Logger.Error("failed to re-persist recovery state, escalating",
			zap.String("guestId", state.GuestID), zap.Error(err))
		return m.escalate(ctx, state,
			fmt.Sprintf("recovery state could not be re-persisted (%v); last error: %s", err, state.LastError))
	}
	if err := m.Schedule.ScheduleAttempt(state.GuestID, next.Interval); err != nil {
		m.Logger.Warn("failed to schedule recovery tick, relying on poll loop",
			zap.String("guestId", state.GuestID), zap.Error(err))
	}
	return nil
}

// escalate is terminal: the state stays deleted, a record is written for
// human follow-up, and no further automatic attempts occur.
func (m *Machine) escalate(ctx context.Context, state *models.RetryState, reason string) error {
	m.Logger.Error("recovery escalated to human follow-up",
		zap.String("guestId", state.GuestID),
		zap.String("transactionId", state.Transaction.TransactionID),
		zap.String("reason", reason))

	record := models.EscalationRecord{
		GuestID:     state.GuestID,
		Transaction: state.Transaction,
		Reason:      reason,
	}
	if _, err := m.Archive.SaveEscalation(ctx, record); err != nil {
		return fmt.Errorf("failed to record escalation: %w", err)
	}

	m.sendText(ctx, state.GuestID,
		"We could not confirm your payment automatically. Our team has been notified and will contact you shortly.")
	return nil
}

func (m *Machine) sendText(ctx context.Context, guestID, text string) {
	if m.Notifier == nil {
		return
	}
	if err := m.Notifier.SendText(ctx, guestID, text); err != nil {
		m.Logger.Error("failed to deliver outcome message",
			zap.String("guestId", guestID), zap.Error(err))
	}
}
