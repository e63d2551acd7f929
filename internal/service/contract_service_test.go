package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/contractor-payments/internal/config"
	"github.com/nurpe/contractor-payments/internal/model"
	"github.com/nurpe/contractor-payments/internal/storetest"
)

func newContractService(contractorVisible bool) (*ContractService, *storetest.Store) {
	store := storetest.Demo()
	cfg := &config.Config{API: config.APIConfig{ContractorCanViewContracts: contractorVisible}}
	return NewContractService(store, store, cfg), store
}

func TestGetContractOwnedByClient(t *testing.T) {
	svc, store := newContractService(false)

	contract, err := svc.GetContract(context.Background(), 2, store.Profile(1))
	require.NoError(t, err)
	assert.Equal(t, uint(2), contract.ID)
	assert.Equal(t, uint(6), contract.ContractorID)
}

func TestGetContractHidesForeignContracts(t *testing.T) {
	svc, store := newContractService(false)

	_, err := svc.GetContract(context.Background(), 3, store.Profile(1))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetContract(context.Background(), 2, store.Profile(6))
	assert.ErrorIs(t, err, ErrNotFound, "contractor is not the owner by default")

	_, err = svc.GetContract(context.Background(), 404, store.Profile(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetContractVisibleToContractorWhenEnabled(t *testing.T) {
	svc, store := newContractService(true)

	contract, err := svc.GetContract(context.Background(), 2, store.Profile(6))
	require.NoError(t, err)
	assert.Equal(t, uint(1), contract.ClientID)

	_, err = svc.GetContract(context.Background(), 2, store.Profile(7))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListContractsExcludesTerminated(t *testing.T) {
	svc, store := newContractService(false)

	contracts, err := svc.ListContracts(context.Background(), store.Profile(1))
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, uint(2), contracts[0].ID)

	contracts, err = svc.ListContracts(context.Background(), store.Profile(6))
	require.NoError(t, err)
	ids := make([]uint, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []uint{2, 3, 8}, ids)
}

func TestListContractsEmpty(t *testing.T) {
	svc, _ := newContractService(false)

	contracts, err := svc.ListContracts(context.Background(), model.Profile{ID: 99})
	require.NoError(t, err)
	assert.NotNil(t, contracts)
	assert.Empty(t, contracts)
}

func TestListUnpaidJobsOnlyInProgress(t *testing.T) {
	svc, store := newContractService(false)

	jobs, err := svc.ListUnpaidJobs(context.Background(), store.Profile(1))
	require.NoError(t, err)
	require.Len(t, jobs, 1, "job 1 sits on a terminated contract")
	assert.Equal(t, uint(2), jobs[0].ID)

	jobs, err = svc.ListUnpaidJobs(context.Background(), store.Profile(7))
	require.NoError(t, err)
	ids := make([]uint, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
		assert.False(t, j.IsPaid())
	}
	assert.Equal(t, []uint{4, 5}, ids)

	jobs, err = svc.ListUnpaidJobs(context.Background(), store.Profile(3))
	require.NoError(t, err)
	assert.Empty(t, jobs, "contract 5 is new and contract 6 has no jobs")
}
