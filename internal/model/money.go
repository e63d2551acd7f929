package model

import "github.com/shopspring/decimal"

func init() {
	// Balances and prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
