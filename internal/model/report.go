package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProfessionEarnings struct {
	Profession  string          `json:"profession"`
	TotalEarned decimal.Decimal `json:"totalEarned"`
}

type ClientPayment struct {
	ID       uint            `json:"id"`
	FullName string          `json:"fullName"`
	Paid     decimal.Decimal `json:"paid"`
}

// AdminReport is the export payload for a payment window.
type AdminReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedAt time.Time
	Professions []ProfessionEarnings
	Clients     []ClientPayment
}

func (r AdminReport) TotalEarned() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Professions {
		total = total.Add(p.TotalEarned)
	}
	return total
}
