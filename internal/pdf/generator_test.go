package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/contractor-payments/internal/model"
)

func paidPayment() model.Payment {
	paid := true
	paidAt := time.Date(2020, 8, 15, 19, 11, 26, 0, time.UTC)
	return model.Payment{
		Job: model.Job{
			ID:          7,
			Description: "work",
			Price:       decimal.NewFromInt(200),
			Paid:        &paid,
			PaymentDate: &paidAt,
			ContractID:  2,
		},
		Contract:   model.Contract{ID: 2, Status: model.ContractStatusInProgress, ClientID: 1, ContractorID: 6},
		Client:     model.Profile{ID: 1, FirstName: "Harry", LastName: "Potter", Type: model.ProfileTypeClient},
		Contractor: model.Profile{ID: 6, FirstName: "Linus", LastName: "Torvalds", Profession: "Programmer", Type: model.ProfileTypeContractor},
	}
}

func TestGenerateReceipt(t *testing.T) {
	content, err := NewGenerator().Generate(paidPayment())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestGenerateRejectsUnpaidJob(t *testing.T) {
	payment := paidPayment()
	payment.Job.Paid = nil
	payment.Job.PaymentDate = nil

	_, err := NewGenerator().Generate(payment)
	assert.Error(t, err)
}
