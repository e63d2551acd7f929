package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/contractor-payments/internal/model"
	"github.com/nurpe/contractor-payments/internal/storetest"
)

type stubReceipts struct {
	got model.Payment
}

func (s *stubReceipts) Generate(payment model.Payment) ([]byte, error) {
	s.got = payment
	return []byte("%PDF-stub"), nil
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// newTransferStore holds one in-progress contract between client 1 and
// contractor 2 with a single unpaid job of the given price.
func newTransferStore(clientBalance, price string) *storetest.Store {
	store := storetest.New()
	store.AddProfile(model.Profile{ID: 1, FirstName: "Ada", LastName: "Client", Balance: dec(clientBalance), Type: model.ProfileTypeClient})
	store.AddProfile(model.Profile{ID: 2, FirstName: "Bob", LastName: "Builder", Profession: "Builder", Balance: dec("10"), Type: model.ProfileTypeContractor})
	store.AddProfile(model.Profile{ID: 3, FirstName: "Eve", LastName: "Other", Balance: dec("1000"), Type: model.ProfileTypeClient})
	store.AddContract(model.Contract{ID: 1, Status: model.ContractStatusInProgress, ClientID: 1, ContractorID: 2})
	store.AddJob(model.Job{ID: 1, Description: "work", Price: dec(price), ContractID: 1})
	return store
}

func newPaymentService(store *storetest.Store) *PaymentService {
	svc := NewPaymentService(store, &stubReceipts{})
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestPayTransfersPrice(t *testing.T) {
	store := newTransferStore("150", "100")
	svc := newPaymentService(store)

	payment, err := svc.Pay(context.Background(), PayInput{JobID: 1, Caller: store.Profile(1)})
	require.NoError(t, err)

	assert.True(t, dec("50").Equal(store.Profile(1).Balance))
	assert.True(t, dec("110").Equal(store.Profile(2).Balance))
	assert.True(t, store.Job(1).IsPaid())
	require.NotNil(t, store.Job(1).PaymentDate)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), *store.Job(1).PaymentDate)
	assert.True(t, payment.Job.IsPaid())
}

func TestPayConservesBalance(t *testing.T) {
	store := newTransferStore("321.45", "120.40")
	svc := newPaymentService(store)
	before := store.Profile(1).Balance.Add(store.Profile(2).Balance)

	_, err := svc.Pay(context.Background(), PayInput{JobID: 1, Caller: store.Profile(1)})
	require.NoError(t, err)

	after := store.Profile(1).Balance.Add(store.Profile(2).Balance)
	assert.True(t, before.Equal(after), "before=%s after=%s", before, after)
}

func TestPayExactBalance(t *testing.T) {
	store := newTransferStore("100", "100")
	svc := newPaymentService(store)

	_, err := svc.Pay(context.Background(), PayInput{JobID: 1, Caller: store.Profile(1)})
	require.NoError(t, err)
	assert.True(t, store.Profile(1).Balance.IsZero())
}

func TestPayFailures(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		jobID   uint
		caller  uint
		prepay  bool
		wantErr error
	}{
		{name: "missing job", balance: "150", jobID: 99, caller: 1, wantErr: ErrNotFound},
		{name: "zero job id", balance: "150", jobID: 0, caller: 1, wantErr: ErrNotFound},
		{name: "not the client", balance: "150", jobID: 1, caller: 3, wantErr: ErrPermissionDenied},
		{name: "contractor cannot pay", balance: "150", jobID: 1, caller: 2, wantErr: ErrPermissionDenied},
		{name: "already paid", balance: "500", jobID: 1, caller: 1, prepay: true, wantErr: ErrAlreadyPaid},
		{name: "already paid other caller", balance: "500", jobID: 1, caller: 3, prepay: true, wantErr: ErrPermissionDenied},
		{name: "insufficient balance", balance: "99.99", jobID: 1, caller: 1, wantErr: ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTransferStore(tt.balance, "100")
			svc := newPaymentService(store)
			if tt.prepay {
				_, err := svc.Pay(context.Background(), PayInput{JobID: 1, Caller: store.Profile(1)})
				require.NoError(t, err)
			}
			clientBefore := store.Profile(1).Balance
			contractorBefore := store.Profile(2).Balance

			_, err := svc.Pay(context.Background(), PayInput{JobID: tt.jobID, Caller: store.Profile(tt.caller)})
			require.ErrorIs(t, err, tt.wantErr)

			assert.True(t, clientBefore.Equal(store.Profile(1).Balance))
			assert.True(t, contractorBefore.Equal(store.Profile(2).Balance))
		})
	}
}

func TestPayTwiceFailsForClient(t *testing.T) {
	store := newTransferStore("500", "100")
	svc := newPaymentService(store)
	caller := store.Profile(1)

	_, err := svc.Pay(context.Background(), PayInput{JobID: 1, Caller: caller})
	require.NoError(t, err)
	_, err = svc.Pay(context.Background(), PayInput{JobID: 1, Caller: caller})
	require.ErrorIs(t, err, ErrAlreadyPaid)
	assert.True(t, dec("400").Equal(store.Profile(1).Balance))
}

func TestPayConcurrentAttemptsSucceedOnce(t *testing.T) {
	store := newTransferStore("1000", "100")
	svc := newPaymentService(store)
	caller := store.Profile(1)

	const attempts = 16
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		succeeded   int
		alreadyPaid int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Pay(context.Background(), PayInput{JobID: 1, Caller: caller})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrAlreadyPaid):
				alreadyPaid++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, alreadyPaid)
	assert.True(t, dec("900").Equal(store.Profile(1).Balance))
	assert.True(t, dec("110").Equal(store.Profile(2).Balance))
}

func TestDepositLimit(t *testing.T) {
	assert.True(t, dec("50").Equal(DepositLimit(dec("200"))))
	assert.True(t, dec("100.25").Equal(DepositLimit(dec("401"))))
	assert.True(t, DepositLimit(decimal.Zero).IsZero())
}

func TestDepositBoundary(t *testing.T) {
	store := newTransferStore("0", "200")
	svc := newPaymentService(store)
	caller := store.Profile(1)

	_, err := svc.Deposit(context.Background(), DepositInput{TargetID: 1, Caller: caller, Amount: dec("51")})
	require.ErrorIs(t, err, ErrLimitExceeded)
	_, err = svc.Deposit(context.Background(), DepositInput{TargetID: 1, Caller: caller, Amount: dec("50.01")})
	require.ErrorIs(t, err, ErrLimitExceeded)

	profile, err := svc.Deposit(context.Background(), DepositInput{TargetID: 1, Caller: caller, Amount: dec("50")})
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(profile.Balance))
	assert.True(t, dec("50").Equal(store.Profile(1).Balance))
}

func TestDepositFailures(t *testing.T) {
	store := newTransferStore("0", "200")
	svc := newPaymentService(store)

	tests := []struct {
		name    string
		input   DepositInput
		wantErr error
	}{
		{
			name:    "other profile",
			input:   DepositInput{TargetID: 1, Caller: store.Profile(3), Amount: dec("10")},
			wantErr: ErrPermissionDenied,
		},
		{
			name:    "other profile with zero amount",
			input:   DepositInput{TargetID: 1, Caller: store.Profile(3), Amount: decimal.Zero},
			wantErr: ErrPermissionDenied,
		},
		{
			name:    "unknown profile",
			input:   DepositInput{TargetID: 42, Caller: model.Profile{ID: 42}, Amount: dec("10")},
			wantErr: ErrNotFound,
		},
		{
			name:    "contractor",
			input:   DepositInput{TargetID: 2, Caller: store.Profile(2), Amount: dec("0.01")},
			wantErr: ErrInvalidOperation,
		},
		{
			name:    "no unpaid work",
			input:   DepositInput{TargetID: 3, Caller: store.Profile(3), Amount: dec("0.01")},
			wantErr: ErrLimitExceeded,
		},
		{
			name:    "zero amount",
			input:   DepositInput{TargetID: 1, Caller: store.Profile(1), Amount: decimal.Zero},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative amount",
			input:   DepositInput{TargetID: 1, Caller: store.Profile(1), Amount: dec("-5")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "sub-cent amount",
			input:   DepositInput{TargetID: 1, Caller: store.Profile(1), Amount: dec("1.001")},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Deposit(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.True(t, store.Profile(1).Balance.IsZero())
	assert.True(t, dec("10").Equal(store.Profile(2).Balance))
}

func TestReceipt(t *testing.T) {
	store := newTransferStore("150", "100")
	receipts := &stubReceipts{}
	svc := NewPaymentService(store, receipts)

	_, err := svc.Receipt(context.Background(), 1, store.Profile(1))
	require.ErrorIs(t, err, ErrNotPaid)

	_, err = svc.Pay(context.Background(), PayInput{JobID: 1, Caller: store.Profile(1)})
	require.NoError(t, err)

	_, err = svc.Receipt(context.Background(), 1, store.Profile(3))
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Receipt(context.Background(), 7, store.Profile(1))
	require.ErrorIs(t, err, ErrNotFound)

	result, err := svc.Receipt(context.Background(), 1, store.Profile(2))
	require.NoError(t, err)
	assert.Equal(t, "receipt-job-1.pdf", result.FileName)
	assert.Equal(t, uint(1), receipts.got.Job.ID)
	assert.True(t, receipts.got.Job.IsPaid())
}
