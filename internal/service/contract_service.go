package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/config"
	"github.com/nurpe/contractor-payments/internal/model"
)

type ContractStore interface {
	GetContract(ctx context.Context, id uint) (*model.Contract, error)
	ListActiveForProfile(ctx context.Context, profileID uint) ([]model.Contract, error)
}

type UnpaidJobStore interface {
	ListUnpaidForProfile(ctx context.Context, profileID uint) ([]model.Job, error)
}

type ContractService struct {
	contracts         ContractStore
	jobs              UnpaidJobStore
	contractorVisible bool
}

func NewContractService(contracts ContractStore, jobs UnpaidJobStore, cfg *config.Config) *ContractService {
	return &ContractService{
		contracts:         contracts,
		jobs:              jobs,
		contractorVisible: cfg.API.ContractorCanViewContracts,
	}
}

// GetContract returns the contract only when the caller may see it. A
// contract owned by someone else is reported as ErrNotFound, never as
// ErrPermissionDenied, so ids of foreign contracts are not confirmed.
func (s *ContractService) GetContract(ctx context.Context, id uint, caller model.Profile) (*model.Contract, error) {
	if id == 0 {
		return nil, ErrNotFound
	}

	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if contract.ClientID == caller.ID {
		return contract, nil
	}
	if s.contractorVisible && contract.ContractorID == caller.ID {
		return contract, nil
	}
	return nil, ErrNotFound
}

func (s *ContractService) ListContracts(ctx context.Context, caller model.Profile) ([]model.Contract, error) {
	contracts, err := s.contracts.ListActiveForProfile(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if contracts == nil {
		contracts = []model.Contract{}
	}
	return contracts, nil
}

func (s *ContractService) ListUnpaidJobs(ctx context.Context, caller model.Profile) ([]model.Job, error) {
	jobs, err := s.jobs.ListUnpaidForProfile(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs, nil
}
