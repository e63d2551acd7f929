package model

import "time"

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

type Contract struct {
	ID           uint           `json:"id"`
	Terms        string         `json:"terms"`
	Status       ContractStatus `json:"status"`
	ClientID     uint           `json:"clientId"`
	ContractorID uint           `json:"contractorId"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Involves reports whether the profile is either party of the contract.
func (c Contract) Involves(profileID uint) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}
