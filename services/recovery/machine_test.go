package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"casamar/models"
	"casamar/services/booking"
	"casamar/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStateRepo struct {
	states  map[string]models.RetryState
	saveErr error
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: map[string]models.RetryState{}}
}

func (f *fakeStateRepo) Save(ctx context.Context, state models.RetryState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.states[state.GuestID] = state
	return nil
}

func (f *fakeStateRepo) Claim(ctx context.Context, guestID string) (*models.RetryState, error) {
	state, ok := f.states[guestID]
	if !ok {
		return nil, nil
	}
	delete(f.states, guestID)
	return &state, nil
}

func (f *fakeStateRepo) Get(ctx context.Context, guestID string) (*models.RetryState, error) {
	state, ok := f.states[guestID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (f *fakeStateRepo) ListDue(ctx context.Context, now time.Time) ([]models.RetryState, error) {
	var due []models.RetryState
	for _, state := range f.states {
		if !state.NextAttemptAt.After(now) {
			due = append(due, state)
		}
	}
	return due, nil
}

type stubBooking struct {
	result *models.BookingResult
	err    error
	calls  int
}

func (s *stubBooking) Execute(ctx context.Context, tx models.BookingTransaction) (*models.BookingResult, error) {
	s.calls++
	return s.result, s.err
}

type recordingArchive struct {
	escalations []models.EscalationRecord
}

func (r *recordingArchive) SaveBooking(ctx context.Context, record models.BookingRecord) (string, error) {
	return "rec-1", nil
}

func (r *recordingArchive) GetBookingByGuest(ctx context.Context, guestID string) ([]models.BookingRecord, error) {
	return nil, nil
}

func (r *recordingArchive) SaveEscalation(ctx context.Context, record models.EscalationRecord) (string, error) {
	r.escalations = append(r.escalations, record)
	return "esc-1", nil
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) SendText(ctx context.Context, guestID, text string) error {
	r.messages = append(r.messages, text)
	return nil
}

type recordingScheduler struct {
	guests []string
	delays []time.Duration
	err    error
}

func (r *recordingScheduler) ScheduleAttempt(guestID string, delay time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.guests = append(r.guests, guestID)
	r.delays = append(r.delays, delay)
	return nil
}

func pendingTransaction() models.BookingTransaction {
	return models.BookingTransaction{
		TransactionID: "tx-1",
		GuestID:       "guest-1",
		PaymentMethod: models.MethodTransfer,
		PaymentID:     "tr-1",
		TotalAmount:   200,
		Rooms:         []models.RoomRequest{{RoomType: models.RoomJunior, Adults: 2}},
	}
}

func transientConfirmation() error {
	return &payment.ConfirmationError{PaymentID: "tr-1", Transient: true, Err: errors.New("still processing")}
}

func newTestMachine(states *fakeStateRepo, svc *stubBooking, archive *recordingArchive, notifier *recordingNotifier, sched *recordingScheduler) *Machine {
	return &Machine{
		States:   states,
		Booking:  svc,
		Archive:  archive,
		Notifier: notifier,
		Schedule: sched,
		Policy:   DefaultPolicy(),
		Logger:   zap.NewNop(),
	}
}

func TestBeginPersistsStateAndPlantsFirstTick(t *testing.T) {
	states := newFakeStateRepo()
	sched := &recordingScheduler{}
	m := newTestMachine(states, &stubBooking{}, &recordingArchive{}, &recordingNotifier{}, sched)

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))

	state, err := states.Get(context.Background(), "guest-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 1, state.Stage)
	assert.Equal(t, []int{0, 0, 0}, state.StageAttempts)
	assert.False(t, state.NextAttemptAt.IsZero())

	require.Len(t, sched.delays, 1)
	assert.Equal(t, 2*time.Minute, sched.delays[0])
}

func TestBeginSurvivesSchedulerFailure(t *testing.T) {
	states := newFakeStateRepo()
	sched := &recordingScheduler{err: errors.New("redis down")}
	m := newTestMachine(states, &stubBooking{}, &recordingArchive{}, &recordingNotifier{}, sched)

	// The poll loop recovers states the scheduler failed to plant.
	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))
	state, _ := states.Get(context.Background(), "guest-1")
	require.NotNil(t, state)
}

func TestPendingReflectsRecoveryState(t *testing.T) {
	states := newFakeStateRepo()
	m := newTestMachine(states, &stubBooking{}, &recordingArchive{}, &recordingNotifier{}, &recordingScheduler{})

	pending, err := m.Pending(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))
	pending, err = m.Pending(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestHandleTickWithNothingClaimedIsQuiet(t *testing.T) {
	svc := &stubBooking{}
	m := newTestMachine(newFakeStateRepo(), svc, &recordingArchive{}, &recordingNotifier{}, &recordingScheduler{})

	require.NoError(t, m.HandleTick(context.Background(), "unknown-guest"))
	assert.Zero(t, svc.calls)
}

func TestHandleTickResolvedTransactionClearsStateAndNotifies(t *testing.T) {
	states := newFakeStateRepo()
	svc := &stubBooking{result: &models.BookingResult{
		ReservationRef: "R-77",
		Message:        "Your reservation R-77 is confirmed.",
	}}
	notifier := &recordingNotifier{}
	m := newTestMachine(states, svc, &recordingArchive{}, notifier, &recordingScheduler{})

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))
	require.NoError(t, m.HandleTick(context.Background(), "guest-1"))

	state, _ := states.Get(context.Background(), "guest-1")
	assert.Nil(t, state)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "R-77")
}

func TestHandleTickTerminalFailureStopsWithoutRescheduling(t *testing.T) {
	states := newFakeStateRepo()
	svc := &stubBooking{err: payment.ErrInsufficientFunds}
	notifier := &recordingNotifier{}
	sched := &recordingScheduler{}
	m := newTestMachine(states, svc, &recordingArchive{}, notifier, sched)

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))
	scheduledAtBegin := len(sched.delays)

	require.NoError(t, m.HandleTick(context.Background(), "guest-1"))

	state, _ := states.Get(context.Background(), "guest-1")
	assert.Nil(t, state)
	assert.Len(t, sched.delays, scheduledAtBegin)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "payment does not cover")
}

func TestHandleTickRetryableFailureAdvancesStages(t *testing.T) {
	states := newFakeStateRepo()
	svc := &stubBooking{err: transientConfirmation()}
	sched := &recordingScheduler{}
	m := newTestMachine(states, svc, &recordingArchive{}, &recordingNotifier{}, sched)

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))

	// Stage 1 absorbs 5 failures at 2m; the 5th exhausts it.
	for i := 0; i < 5; i++ {
		require.NoError(t, m.HandleTick(context.Background(), "guest-1"))
	}
	state, _ := states.Get(context.Background(), "guest-1")
	require.NotNil(t, state)
	assert.Equal(t, 2, state.Stage)
	assert.Equal(t, []int{5, 0, 0}, state.StageAttempts)
	assert.Equal(t, 10*time.Minute, sched.delays[len(sched.delays)-1])
	assert.Equal(t, 5, svc.calls)
}

func TestHandleTickEscalatesAfterFinalStage(t *testing.T) {
	states := newFakeStateRepo()
	archive := &recordingArchive{}
	notifier := &recordingNotifier{}
	sched := &recordingScheduler{}
	m := newTestMachine(states, &stubBooking{err: transientConfirmation()}, archive, notifier, sched)

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))

	// 5 + 6 + 4 failed attempts walk through every stage.
	for i := 0; i < 15; i++ {
		require.NoError(t, m.HandleTick(context.Background(), "guest-1"))
	}

	state, _ := states.Get(context.Background(), "guest-1")
	assert.Nil(t, state)
	require.Len(t, archive.escalations, 1)
	assert.Equal(t, "guest-1", archive.escalations[0].GuestID)
	assert.Contains(t, archive.escalations[0].Reason, "recovery exhausted")
	require.NotEmpty(t, notifier.messages)
	assert.Contains(t, notifier.messages[len(notifier.messages)-1], "could not confirm your payment")

	// Escalation plants no further ticks.
	planted := len(sched.delays)
	require.NoError(t, m.HandleTick(context.Background(), "guest-1"))
	assert.Len(t, sched.delays, planted)
}

func TestHandleTickEscalatesWhenStateCannotBeRePersisted(t *testing.T) {
	states := newFakeStateRepo()
	archive := &recordingArchive{}
	notifier := &recordingNotifier{}
	m := newTestMachine(states, &stubBooking{err: &booking.SubmissionError{Err: errors.New("503")}}, archive, notifier, &recordingScheduler{})

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))
	states.saveErr = errors.New("mongo down")

	require.NoError(t, m.HandleTick(context.Background(), "guest-1"))

	// The claim removed the state and the re-save failed, so the guest is
	// handed to a human instead of being silently dropped.
	require.Len(t, archive.escalations, 1)
	assert.Contains(t, archive.escalations[0].Reason, "re-persisted")
	require.NotEmpty(t, notifier.messages)
	assert.Contains(t, notifier.messages[len(notifier.messages)-1], "could not confirm your payment")
}

func TestHandleTickRecordsRetryableOrchestratorFailure(t *testing.T) {
	states := newFakeStateRepo()
	svc := &stubBooking{err: &booking.SubmissionError{Err: errors.New("503")}}
	m := newTestMachine(states, svc, &recordingArchive{}, &recordingNotifier{}, &recordingScheduler{})

	require.NoError(t, m.Begin(context.Background(), pendingTransaction()))
	require.NoError(t, m.HandleTick(context.Background(), "guest-1"))

	assert.Equal(t, 1, svc.calls)
	state, _ := states.Get(context.Background(), "guest-1")
	require.NotNil(t, state)
	assert.Equal(t, []int{1, 0, 0}, state.StageAttempts)
	assert.Contains(t, state.LastError, "submission failed")
}

func TestRequeuePendingReplantsOnlyDueStates(t *testing.T) {
	states := newFakeStateRepo()
	sched := &recordingScheduler{}
	m := newTestMachine(states, &stubBooking{}, &recordingArchive{}, &recordingNotifier{}, sched)

	overdue := models.NewRetryState(pendingTransaction())
	overdue.NextAttemptAt = time.Now().Add(-time.Minute)
	require.NoError(t, states.Save(context.Background(), overdue))

	futureTx := pendingTransaction()
	futureTx.GuestID = "guest-2"
	future := models.NewRetryState(futureTx)
	future.NextAttemptAt = time.Now().Add(time.Hour)
	require.NoError(t, states.Save(context.Background(), future))

	require.NoError(t, m.RequeuePending(context.Background()))

	// Only the overdue state is re-planted, and immediately.
	require.Len(t, sched.guests, 1)
	assert.Equal(t, "guest-1", sched.guests[0])
	assert.Equal(t, time.Duration(0), sched.delays[0])

	// Both states stay persisted; requeueing only schedules ticks.
	state, _ := states.Get(context.Background(), "guest-1")
	assert.NotNil(t, state)
	state, _ = states.Get(context.Background(), "guest-2")
	assert.NotNil(t, state)
}
