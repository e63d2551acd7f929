package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetContract(ctx context.Context, id uint) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id, created_at, updated_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

// ListActiveForProfile returns the non-terminated contracts where the
// profile is either the client or the contractor.
func (r *ContractRepository) ListActiveForProfile(ctx context.Context, profileID uint) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id, created_at, updated_at
		FROM contracts
		WHERE (client_id = ? OR contractor_id = ?)
			AND status <> ?
		ORDER BY id ASC
	`, profileID, profileID, model.ContractStatusTerminated).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}
