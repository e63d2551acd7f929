package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job is a billable unit of work under a contract. Paid is NULL until the
// job is paid, after which it is true and PaymentDate is set.
type Job struct {
	ID          uint            `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        *bool           `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	ContractID  uint            `json:"contractId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (j Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}

// Payment groups a job with its contract and both parties, as loaded for
// paying the job or rendering its receipt.
type Payment struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
