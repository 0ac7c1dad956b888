package http

type AddPayableTokenRequest struct {
	PaymentUnit string `json:"payment_unit"`
}

type PayableTokenResponse struct {
	Status string          `json:"status"`
	Data   PayableTokenDTO `json:"data"`
}

type PayableTokenDTO struct {
	PaymentUnit string `json:"payment_unit"`
	Accepted    bool   `json:"accepted"`
}

type PlatformFeeResponse struct {
	Status string         `json:"status"`
	Data   PlatformFeeDTO `json:"data"`
}

type PlatformFeeDTO struct {
	Amount      string `json:"amount"`
	PlatformFee string `json:"platform_fee"`
}

type UpdatePlatformFeeRequest struct {
	PlatformFeeBps int64  `json:"platform_fee_bps"`
	FeeRecipient   string `json:"fee_recipient"`
}

type UpdatePlatformFeeResponse struct {
	Status string `json:"status"`
}

type CreateSaleRequest struct {
	AssetContract string `json:"asset_contract"`
	TokenID       uint64 `json:"token_id"`
	PaymentUnit   string `json:"payment_unit"`
	Price         string `json:"price"`
}

type ListingResponse struct {
	Status string     `json:"status"`
	Data   ListingDTO `json:"data"`
}

type ListingDTO struct {
	AssetContract string `json:"asset_contract"`
	TokenID       uint64 `json:"token_id"`
	Seller        string `json:"seller"`
	PaymentUnit   string `json:"payment_unit"`
	Price         string `json:"price"`
	ListedAt      string `json:"listed_at"`
}

type CancelListingResponse struct {
	Status string `json:"status"`
}

type BuyRequest struct {
	Amount string `json:"amount"`
}

type MakeOfferRequest struct {
	Amount string `json:"amount"`
}

type OfferResponse struct {
	Status string   `json:"status"`
	Data   OfferDTO `json:"data"`
}

type OfferDTO struct {
	AssetContract string `json:"asset_contract"`
	TokenID       uint64 `json:"token_id"`
	Offerer       string `json:"offerer"`
	Amount        string `json:"amount"`
	OfferedAt     string `json:"offered_at"`
}

type SaleResponse struct {
	Status string  `json:"status"`
	Data   SaleDTO `json:"data"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SaleDTO struct {
	SaleID        string `json:"sale_id"`
	AssetContract string `json:"asset_contract"`
	TokenID       uint64 `json:"token_id"`
	Seller        string `json:"seller"`
	Buyer         string `json:"buyer"`
	PaymentUnit   string `json:"payment_unit"`
	Amount        string `json:"amount"`
	PlatformFee   string `json:"platform_fee"`
	RoyaltyFee    string `json:"royalty_fee"`
	SellerAmount  string `json:"seller_amount"`
	SettledAt     string `json:"settled_at"`
}
