package storetest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/contractor-payments/internal/model"
)

// Demo returns a store loaded with the same marketplace as db.Seed.
func Demo() *Store {
	s := New()

	profiles := []struct {
		first, last, profession string
		balance                 string
		kind                    model.ProfileType
	}{
		{"Harry", "Potter", "Wizard", "1150", model.ProfileTypeClient},
		{"Mr", "Robot", "Hacker", "231.11", model.ProfileTypeClient},
		{"John", "Snow", "Knows nothing", "451.3", model.ProfileTypeClient},
		{"Ash", "Kethcum", "Pokemon master", "1.3", model.ProfileTypeClient},
		{"John", "Lenon", "Musician", "64", model.ProfileTypeContractor},
		{"Linus", "Torvalds", "Programmer", "1214", model.ProfileTypeContractor},
		{"Alan", "Turing", "Programmer", "22", model.ProfileTypeContractor},
		{"Aragorn", "II Elessar Telcontarion", "Fighter", "314", model.ProfileTypeContractor},
	}
	for i, p := range profiles {
		s.AddProfile(model.Profile{
			ID:         uint(i + 1),
			FirstName:  p.first,
			LastName:   p.last,
			Profession: p.profession,
			Balance:    decimal.RequireFromString(p.balance),
			Type:       p.kind,
		})
	}

	contracts := []struct {
		status             model.ContractStatus
		client, contractor uint
	}{
		{model.ContractStatusTerminated, 1, 5},
		{model.ContractStatusInProgress, 1, 6},
		{model.ContractStatusInProgress, 2, 6},
		{model.ContractStatusInProgress, 2, 7},
		{model.ContractStatusNew, 3, 8},
		{model.ContractStatusInProgress, 3, 7},
		{model.ContractStatusInProgress, 4, 7},
		{model.ContractStatusInProgress, 4, 6},
		{model.ContractStatusInProgress, 4, 8},
	}
	for i, c := range contracts {
		s.AddContract(model.Contract{
			ID:           uint(i + 1),
			Terms:        "bla bla bla",
			Status:       c.status,
			ClientID:     c.client,
			ContractorID: c.contractor,
		})
	}

	jobs := []struct {
		description string
		price       int64
		paidAt      string
		contract    uint
	}{
		{"work", 200, "", 1},
		{"work", 201, "", 2},
		{"work", 202, "", 3},
		{"work", 200, "", 4},
		{"work", 200, "", 7},
		{"work", 2020, "2020-08-15T19:11:26.737Z", 7},
		{"work", 200, "2020-08-15T19:11:26.737Z", 2},
		{"work", 200, "2020-08-16T19:11:26.737Z", 3},
		{"work", 200, "2020-08-17T19:11:26.737Z", 1},
		{"work", 200, "2020-08-17T19:11:26.737Z", 5},
		{"work", 21, "2020-08-10T19:11:26.737Z", 1},
		{"work", 21, "2020-08-15T19:11:26.737Z", 2},
		{"work", 121, "2020-08-15T19:11:26.737Z", 3},
		{"Programming", 121, "2020-08-14T23:11:26.737Z", 3},
	}
	for i, j := range jobs {
		job := model.Job{
			ID:          uint(i + 1),
			Description: j.description,
			Price:       decimal.NewFromInt(j.price),
			ContractID:  j.contract,
		}
		if j.paidAt != "" {
			paidAt, err := time.Parse(time.RFC3339, j.paidAt)
			if err != nil {
				panic(err)
			}
			paid := true
			job.Paid = &paid
			job.PaymentDate = &paidAt
		}
		s.AddJob(job)
	}

	return s
}
