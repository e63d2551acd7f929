package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/model"
)

// depositLimitRatio caps a single deposit at a quarter of the client's
// outstanding unpaid work.
var depositLimitRatio = decimal.New(25, -2)

type PaymentStore interface {
	PayJob(ctx context.Context, jobID uint, paidAt time.Time, check func(model.Payment) error) (*model.Payment, error)
	DepositToProfile(
		ctx context.Context,
		profileID uint,
		amount decimal.Decimal,
		check func(profile model.Profile, unpaidTotal decimal.Decimal) error,
	) (*model.Profile, error)
	GetPayment(ctx context.Context, jobID uint) (*model.Payment, error)
}

type ReceiptGenerator interface {
	Generate(payment model.Payment) ([]byte, error)
}

type PaymentService struct {
	store    PaymentStore
	receipts ReceiptGenerator
	now      func() time.Time
}

func NewPaymentService(store PaymentStore, receipts ReceiptGenerator) *PaymentService {
	return &PaymentService{
		store:    store,
		receipts: receipts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type PayInput struct {
	JobID  uint
	Caller model.Profile
}

type DepositInput struct {
	TargetID uint
	Caller   model.Profile
	Amount   decimal.Decimal
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

// Pay transfers the job price from the contract's client to its contractor
// and marks the job paid. Checks run against rows locked by the store, in
// order: job exists, caller is the client, job unpaid, balance covers price.
func (s *PaymentService) Pay(ctx context.Context, input PayInput) (*model.Payment, error) {
	if input.JobID == 0 {
		return nil, ErrNotFound
	}

	payment, err := s.store.PayJob(ctx, input.JobID, s.now(), func(p model.Payment) error {
		return checkPayment(p, input.Caller.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %d", ErrNotFound, input.JobID)
		}
		return nil, err
	}
	return payment, nil
}

func checkPayment(p model.Payment, callerID uint) error {
	if p.Contract.ClientID != callerID {
		return fmt.Errorf("%w: you are not the client associated with this job", ErrPermissionDenied)
	}
	if p.Job.IsPaid() {
		return ErrAlreadyPaid
	}
	if p.Client.Balance.LessThan(p.Job.Price) {
		return ErrInsufficientBalance
	}
	return nil
}

// DepositLimit is the largest single deposit allowed for a client with the
// given unpaid total. No unpaid work means no deposit.
func DepositLimit(unpaidTotal decimal.Decimal) decimal.Decimal {
	if unpaidTotal.IsNegative() {
		return decimal.Zero
	}
	return unpaidTotal.Mul(depositLimitRatio)
}

// Deposit credits a client's own balance, bounded by DepositLimit.
func (s *PaymentService) Deposit(ctx context.Context, input DepositInput) (*model.Profile, error) {
	if input.Caller.ID != input.TargetID {
		return nil, fmt.Errorf("%w: you are not authorized to perform this action", ErrPermissionDenied)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if !input.Amount.Equal(input.Amount.Round(2)) {
		return nil, fmt.Errorf("%w: amount must have at most two decimal places", ErrInvalidInput)
	}

	profile, err := s.store.DepositToProfile(ctx, input.TargetID, input.Amount,
		func(profile model.Profile, unpaidTotal decimal.Decimal) error {
			if !profile.IsClient() {
				return fmt.Errorf("%w: only clients can make deposits", ErrInvalidOperation)
			}
			if input.Amount.GreaterThan(DepositLimit(unpaidTotal)) {
				return ErrLimitExceeded
			}
			return nil
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, input.TargetID)
		}
		return nil, err
	}
	return profile, nil
}

// Receipt renders the payment receipt of a paid job for either party of its
// contract.
func (s *PaymentService) Receipt(ctx context.Context, jobID uint, caller model.Profile) (*ReceiptResult, error) {
	payment, err := s.store.GetPayment(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !payment.Contract.Involves(caller.ID) {
		return nil, ErrPermissionDenied
	}
	if !payment.Job.IsPaid() {
		return nil, ErrNotPaid
	}

	content, err := s.receipts.Generate(*payment)
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{
		FileName: fmt.Sprintf("receipt-job-%d.pdf", payment.Job.ID),
		Content:  content,
	}, nil
}
