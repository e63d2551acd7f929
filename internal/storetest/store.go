// Package storetest provides an in-memory implementation of the service
// stores. One mutex serializes every mutation, standing in for the row
// locks the postgres repositories take.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/model"
)

type Store struct {
	mu        sync.Mutex
	profiles  map[uint]model.Profile
	contracts map[uint]model.Contract
	jobs      map[uint]model.Job
}

func New() *Store {
	return &Store{
		profiles:  make(map[uint]model.Profile),
		contracts: make(map[uint]model.Contract),
		jobs:      make(map[uint]model.Job),
	}
}

func (s *Store) AddProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *Store) AddContract(c model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[c.ID] = c
}

func (s *Store) AddJob(j model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

// Profile returns a snapshot of a stored profile.
func (s *Store) Profile(id uint) model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[id]
}

// Job returns a snapshot of a stored job.
func (s *Store) Job(id uint) model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *Store) GetProfile(_ context.Context, id uint) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *Store) GetContract(_ context.Context, id uint) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (s *Store) ListActiveForProfile(_ context.Context, profileID uint) ([]model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Contract
	for _, c := range s.contracts {
		if c.Involves(profileID) && c.Status != model.ContractStatusTerminated {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListUnpaidForProfile(_ context.Context, profileID uint) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Job
	for _, j := range s.jobs {
		c := s.contracts[j.ContractID]
		if !j.IsPaid() && c.Status == model.ContractStatusInProgress && c.Involves(profileID) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *Store) paymentLocked(jobID uint) (*model.Payment, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	contract, ok := s.contracts[job.ContractID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	client, ok := s.profiles[contract.ClientID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	contractor, ok := s.profiles[contract.ContractorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Payment{Job: job, Contract: contract, Client: client, Contractor: contractor}, nil
}

func (s *Store) GetPayment(_ context.Context, jobID uint) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentLocked(jobID)
}

func (s *Store) PayJob(_ context.Context, jobID uint, paidAt time.Time, check func(model.Payment) error) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, err := s.paymentLocked(jobID)
	if err != nil {
		return nil, err
	}
	if err := check(*payment); err != nil {
		return nil, err
	}

	price := payment.Job.Price
	client := s.profiles[payment.Client.ID]
	client.Balance = client.Balance.Sub(price)
	s.profiles[client.ID] = client

	contractor := s.profiles[payment.Contractor.ID]
	contractor.Balance = contractor.Balance.Add(price)
	s.profiles[contractor.ID] = contractor

	paid := true
	job := s.jobs[jobID]
	job.Paid = &paid
	job.PaymentDate = &paidAt
	job.UpdatedAt = paidAt
	s.jobs[jobID] = job

	return s.paymentLocked(jobID)
}

func (s *Store) DepositToProfile(
	_ context.Context,
	profileID uint,
	amount decimal.Decimal,
	check func(profile model.Profile, unpaidTotal decimal.Decimal) error,
) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[profileID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	unpaid := decimal.Zero
	for _, j := range s.jobs {
		if !j.IsPaid() && s.contracts[j.ContractID].ClientID == profileID {
			unpaid = unpaid.Add(j.Price)
		}
	}
	if err := check(profile, unpaid); err != nil {
		return nil, err
	}

	profile.Balance = profile.Balance.Add(amount)
	s.profiles[profileID] = profile
	return &profile, nil
}

func (s *Store) paidJobsLocked(from, to time.Time) []model.Job {
	var out []model.Job
	for _, j := range s.jobs {
		if !j.IsPaid() || j.PaymentDate == nil {
			continue
		}
		if j.PaymentDate.Before(from) || j.PaymentDate.After(to) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

func (s *Store) ProfessionEarnings(_ context.Context, from, to time.Time, limit int) ([]model.ProfessionEarnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[string]decimal.Decimal)
	for _, j := range s.paidJobsLocked(from, to) {
		profession := s.profiles[s.contracts[j.ContractID].ContractorID].Profession
		totals[profession] = totals[profession].Add(j.Price)
	}

	out := make([]model.ProfessionEarnings, 0, len(totals))
	for profession, total := range totals {
		out = append(out, model.ProfessionEarnings{Profession: profession, TotalEarned: total})
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].TotalEarned.Equal(out[k].TotalEarned) {
			return out[i].TotalEarned.GreaterThan(out[k].TotalEarned)
		}
		return out[i].Profession < out[k].Profession
	})
	return truncate(out, limit), nil
}

func (s *Store) TopPaidJobs(_ context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := s.paidJobsLocked(from, to)
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].Price.GreaterThan(jobs[k].Price) })

	out := make([]model.ClientPayment, 0, len(jobs))
	for _, j := range jobs {
		client := s.profiles[s.contracts[j.ContractID].ClientID]
		out = append(out, model.ClientPayment{ID: client.ID, FullName: client.FullName(), Paid: j.Price})
	}
	return truncate(out, limit), nil
}

func (s *Store) TopPayingClients(_ context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[uint]decimal.Decimal)
	for _, j := range s.paidJobsLocked(from, to) {
		clientID := s.contracts[j.ContractID].ClientID
		totals[clientID] = totals[clientID].Add(j.Price)
	}

	out := make([]model.ClientPayment, 0, len(totals))
	for id, total := range totals {
		out = append(out, model.ClientPayment{ID: id, FullName: s.profiles[id].FullName(), Paid: total})
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].Paid.Equal(out[k].Paid) {
			return out[i].Paid.GreaterThan(out[k].Paid)
		}
		return out[i].ID < out[k].ID
	})
	return truncate(out, limit), nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
