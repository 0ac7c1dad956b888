package errors

import "errors"

var (
	ErrUnauthorized              = errors.New("caller is not the marketplace owner")
	ErrNotOwnerOrApproved        = errors.New("caller does not own and is not approved for the asset")
	ErrNotSeller                 = errors.New("caller is not the listing seller")
	ErrAlreadyListed             = errors.New("asset is already listed")
	ErrListingNotFound           = errors.New("listing not found")
	ErrOfferNotFound             = errors.New("offer not found")
	ErrInvalidPrice              = errors.New("listing price must be positive")
	ErrInvalidAmount             = errors.New("offer amount must be positive")
	ErrUnsupportedPaymentUnit    = errors.New("payment unit is not whitelisted")
	ErrPriceMismatch             = errors.New("buy amount does not match listed price")
	ErrInsufficientAuthorization = errors.New("payment authorization is insufficient")
	ErrInsufficientBalance       = errors.New("payment balance is insufficient")
	ErrFeeConfigInvariant        = errors.New("fee configuration violates basis point invariant")
)
