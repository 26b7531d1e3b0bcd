package payment

import (
	"context"
	"sync"
	"testing"

	paymentRepo "casamar/database/repository/payment"
	"casamar/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRecordRepo honors the repository's atomicity contract in memory.
type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]*models.PaymentRecord
}

func newFakeRecordRepo(records ...models.PaymentRecord) *fakeRecordRepo {
	repo := &fakeRecordRepo{records: map[string]*models.PaymentRecord{}}
	for i := range records {
		r := records[i]
		repo.records[r.ID] = &r
	}
	return repo
}

func (f *fakeRecordRepo) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, paymentRepo.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRecordRepo) ReserveAmount(ctx context.Context, id string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return paymentRepo.ErrRecordNotFound
	}
	if record.Used+amount > record.Total {
		return paymentRepo.ErrInsufficientFunds
	}
	record.Used += amount
	return nil
}

func (f *fakeRecordRepo) ReleaseAmount(ctx context.Context, id string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok || record.Used < amount {
		return paymentRepo.ErrRecordNotFound
	}
	record.Used -= amount
	return nil
}

func (f *fakeRecordRepo) SetReservationCodes(ctx context.Context, id string, codes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return paymentRepo.ErrRecordNotFound
	}
	record.ReservationCodes = codes
	return nil
}

func TestReserveNeverOverdraws(t *testing.T) {
	repo := newFakeRecordRepo(models.PaymentRecord{ID: "tr-1", Total: 500})
	svc := NewTransferService(repo, zap.NewNop())
	ctx := context.Background()

	// 10 workers race to reserve 100 each against a 500 balance.
	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Reserve(ctx, "tr-1", 100)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 5, succeeded)

	record, err := repo.Get(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, record.Used)
	assert.LessOrEqual(t, record.Used, record.Total)
}

func TestReserveRejectsMissingRecordAndBadAmount(t *testing.T) {
	svc := NewTransferService(newFakeRecordRepo(), zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, svc.Reserve(ctx, "nope", 100), ErrRecordNotFound)
	assert.Error(t, svc.Reserve(ctx, "nope", 0))
	assert.Error(t, svc.Reserve(ctx, "nope", -5))
}

func TestReleaseRestoresBalance(t *testing.T) {
	repo := newFakeRecordRepo(models.PaymentRecord{ID: "tr-1", Total: 300})
	svc := NewTransferService(repo, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Reserve(ctx, "tr-1", 300))
	require.NoError(t, svc.Release(ctx, "tr-1", 300))
	require.NoError(t, svc.Reserve(ctx, "tr-1", 300))
}

func TestMergeReservationCodes(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		code     string
		want     string
	}{
		{"empty ledger", "", "R-100", "R-100"},
		{"appends new code", "R-100", "R-200", "R-100,R-200"},
		{"same code is a no-op", "R-100,R-200", "R-200", "R-100,R-200"},
		{"normalizes whitespace", " R-100 , R-200", "R-150", "R-100,R-150,R-200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeReservationCodes(tt.existing, tt.code))
		})
	}
}

func TestAppendReservationCodeIsIdempotent(t *testing.T) {
	repo := newFakeRecordRepo(models.PaymentRecord{ID: "ca-1", Total: 100})
	svc := NewCardService(repo, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.AppendReservationCode(ctx, "ca-1", "R-42"))
	once, err := repo.Get(ctx, "ca-1")
	require.NoError(t, err)

	require.NoError(t, svc.AppendReservationCode(ctx, "ca-1", "R-42"))
	twice, err := repo.Get(ctx, "ca-1")
	require.NoError(t, err)

	assert.Equal(t, once.ReservationCodes, twice.ReservationCodes)
	assert.Equal(t, "R-42", twice.ReservationCodes)
}

func TestTransferConfirmIsTransientUntilRegistered(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := NewTransferService(repo, zap.NewNop())
	ctx := context.Background()

	err := svc.Confirm(ctx, "tr-unregistered")
	require.Error(t, err)
	assert.True(t, IsRetryableConfirmation(err))

	repo.records["tr-unregistered"] = &models.PaymentRecord{ID: "tr-unregistered", Total: 100}
	assert.NoError(t, svc.Confirm(ctx, "tr-unregistered"))
}

func TestForMethodDispatchesOnce(t *testing.T) {
	card := NewCardService(newFakeRecordRepo(), nil, zap.NewNop())
	transfer := NewTransferService(newFakeRecordRepo(), zap.NewNop())

	svc, err := ForMethod(models.MethodCard, card, transfer)
	require.NoError(t, err)
	assert.Same(t, ReservationService(card), svc)

	svc, err = ForMethod(models.MethodTransfer, card, transfer)
	require.NoError(t, err)
	assert.Same(t, ReservationService(transfer), svc)

	_, err = ForMethod("crypto", card, transfer)
	assert.Error(t, err)
}
