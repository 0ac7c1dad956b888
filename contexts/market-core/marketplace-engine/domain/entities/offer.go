package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer is an alternate-price proposal against a listed asset, keyed by
// (AssetContract, TokenID, Offerer). Offers only exist while the listing
// does; a repeated offer from the same offerer overwrites the previous one.
type Offer struct {
	AssetContract string
	TokenID       uint64
	Offerer       string
	Amount        decimal.Decimal
	OfferedAt     time.Time
}
