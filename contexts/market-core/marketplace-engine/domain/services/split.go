package services

import (
	"github.com/shopspring/decimal"

	domainerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
)

const BpsDenominator = 10000

var bpsDenominator = decimal.NewFromInt(BpsDenominator)

// Split is the exact three-way partition of a settlement amount.
// PlatformFee + RoyaltyFee + SellerAmount always equals the input total.
type Split struct {
	PlatformFee  decimal.Decimal
	RoyaltyFee   decimal.Decimal
	SellerAmount decimal.Decimal
}

// ComputeSplit partitions total using floor division on basis points.
// The seller leg is derived by subtraction so rounding remainders stay
// with the seller and the partition is never lossy.
func ComputeSplit(total decimal.Decimal, platformBps int64, royaltyBps int64) (Split, error) {
	if platformBps < 0 || platformBps > BpsDenominator ||
		royaltyBps < 0 || royaltyBps > BpsDenominator ||
		platformBps+royaltyBps > BpsDenominator {
		return Split{}, domainerrors.ErrFeeConfigInvariant
	}

	platformFee := FeeFloor(total, platformBps)
	royaltyFee := FeeFloor(total, royaltyBps)
	return Split{
		PlatformFee:  platformFee,
		RoyaltyFee:   royaltyFee,
		SellerAmount: total.Sub(platformFee).Sub(royaltyFee),
	}, nil
}

// FeeFloor is floor(amount * bps / 10000).
func FeeFloor(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(bps)).Div(bpsDenominator).Floor()
}

// ValidatePlatformFeeBps guards fee configuration writes.
func ValidatePlatformFeeBps(bps int64) error {
	if bps < 0 || bps > BpsDenominator {
		return domainerrors.ErrFeeConfigInvariant
	}
	return nil
}
