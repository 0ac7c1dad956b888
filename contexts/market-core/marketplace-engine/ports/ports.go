package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"nftmarket/contexts/market-core/marketplace-engine/domain/entities"
	"nftmarket/internal/shared/events"
)

// FeeConfig is the marketplace-wide platform fee, set at construction and
// mutable only by the marketplace owner.
type FeeConfig struct {
	PlatformFeeBps int64
	FeeRecipient   string
}

// RoyaltyConfig is the per-asset-contract creator royalty owned by the
// asset registry. It is read fresh at every settlement and never cached.
type RoyaltyConfig struct {
	RoyaltyBps       int64
	RoyaltyRecipient string
}

type CreateSaleInput struct {
	AssetContract string
	TokenID       uint64
	PaymentUnit   string
	Price         decimal.Decimal
}

type MakeOfferInput struct {
	AssetContract string
	TokenID       uint64
	Amount        decimal.Decimal
}

// SaleRecord captures a completed settlement for the outbox event payload.
type SaleRecord struct {
	SaleID        string
	AssetContract string
	TokenID       uint64
	Seller        string
	Buyer         string
	PaymentUnit   string
	Amount        decimal.Decimal
	PlatformFee   decimal.Decimal
	RoyaltyFee    decimal.Decimal
	SellerAmount  decimal.Decimal
	SettledAt     time.Time
}

// Repository owns the listing and offer registries, the payable-token
// whitelist and the fee config. Write boundaries that must be atomic
// (listing creation, settlement completion) take the outbox envelope so
// adapters can commit state change and event together.
type Repository interface {
	CreateListingWithOutbox(ctx context.Context, listing entities.Listing, envelope events.Envelope) error
	GetListing(ctx context.Context, assetContract string, tokenID uint64) (entities.Listing, error)
	DeleteListing(ctx context.Context, assetContract string, tokenID uint64) error

	PutOffer(ctx context.Context, offer entities.Offer) error
	GetOffer(ctx context.Context, assetContract string, tokenID uint64, offerer string) (entities.Offer, error)

	// CompleteSettlement deletes the listing and every offer on its key and
	// appends the sale outbox row, all in one transaction.
	CompleteSettlement(ctx context.Context, sale SaleRecord, envelope events.Envelope) error

	AddPayableToken(ctx context.Context, unit string) error
	IsPayableToken(ctx context.Context, unit string) (bool, error)

	GetFeeConfig(ctx context.Context) (FeeConfig, error)
	PutFeeConfig(ctx context.Context, config FeeConfig) error
}

// CustodyAdapter wraps the external asset registry's transfer primitive.
type CustodyAdapter interface {
	TransferCustody(ctx context.Context, assetContract string, tokenID uint64, from string, to string) error
	IsApprovedOrOwner(ctx context.Context, assetContract string, tokenID uint64, who string) (bool, error)
}

// PaymentLedger wraps the external fungible-payment ledger. Transfer moves
// funds the marketplace is trusted to operate on; AuthorizedAmount reports
// how much the owner has pre-authorized the spender to move.
type PaymentLedger interface {
	Transfer(ctx context.Context, unit string, from string, to string, amount decimal.Decimal) error
	AuthorizedAmount(ctx context.Context, unit string, owner string, spender string) (decimal.Decimal, error)
}

// RoyaltySource exposes the asset registry's royalty configuration.
type RoyaltySource interface {
	RoyaltyInfo(ctx context.Context, assetContract string) (RoyaltyConfig, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = events.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
