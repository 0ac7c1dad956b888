package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is an active fixed-price sell order. The key (AssetContract,
// TokenID) holds at most one listing at any time; the asset itself sits in
// marketplace escrow for the listing's lifetime.
type Listing struct {
	AssetContract string
	TokenID       uint64
	Seller        string
	PaymentUnit   string
	Price         decimal.Decimal
	ListedAt      time.Time
}

func (l Listing) IsZero() bool {
	return l.AssetContract == "" && l.Seller == ""
}
