package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"nftmarket/contexts/market-core/marketplace-engine/domain/entities"
	domainerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
	"nftmarket/contexts/market-core/marketplace-engine/domain/services"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
)

const (
	sourceService    = "marketplace-engine"
	listedEventType  = "market.listed"
	saleSettledEvent = "market.sale_settled"
	logModule        = "market-core/marketplace-engine"
)

type Service struct {
	Repo     ports.Repository
	Custody  ports.CustodyAdapter
	Payments ports.PaymentLedger
	Royalty  ports.RoyaltySource
	Clock    ports.Clock
	IDGen    ports.IDGenerator

	// Owner may mutate the whitelist and fee config; EscrowAccount holds
	// custody of listed assets and is the spender buyers authorize.
	Owner         string
	EscrowAccount string

	Logger *slog.Logger
}

// AddPayableToken whitelists a payment unit. Owner-only, idempotent.
func (s Service) AddPayableToken(ctx context.Context, caller string, unit string) error {
	if strings.TrimSpace(caller) == "" || caller != s.Owner {
		return domainerrors.ErrUnauthorized
	}
	if strings.TrimSpace(unit) == "" {
		return domainerrors.ErrUnsupportedPaymentUnit
	}
	if err := s.Repo.AddPayableToken(ctx, unit); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("payable token added",
		"event", "market_payable_token_added",
		"module", logModule,
		"layer", "application",
		"payment_unit", unit,
	)
	return nil
}

func (s Service) CheckIsPayableToken(ctx context.Context, unit string) (bool, error) {
	if strings.TrimSpace(unit) == "" {
		return false, nil
	}
	return s.Repo.IsPayableToken(ctx, unit)
}

// CalculatePlatformFee previews floor(amount * platformFeeBps / 10000)
// against the current fee config. No side effects.
func (s Service) CalculatePlatformFee(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Decimal{}, domainerrors.ErrInvalidAmount
	}
	config, err := s.Repo.GetFeeConfig(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return services.FeeFloor(amount, config.PlatformFeeBps), nil
}

// UpdatePlatformFee replaces the fee config. Owner-only; basis points are
// validated at write time, not at settlement time.
func (s Service) UpdatePlatformFee(ctx context.Context, caller string, platformFeeBps int64, feeRecipient string) error {
	if strings.TrimSpace(caller) == "" || caller != s.Owner {
		return domainerrors.ErrUnauthorized
	}
	if err := services.ValidatePlatformFeeBps(platformFeeBps); err != nil {
		return err
	}
	if platformFeeBps > 0 && strings.TrimSpace(feeRecipient) == "" {
		return domainerrors.ErrFeeConfigInvariant
	}
	if err := s.Repo.PutFeeConfig(ctx, ports.FeeConfig{
		PlatformFeeBps: platformFeeBps,
		FeeRecipient:   strings.TrimSpace(feeRecipient),
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("platform fee updated",
		"event", "market_platform_fee_updated",
		"module", logModule,
		"layer", "application",
		"platform_fee_bps", platformFeeBps,
		"fee_recipient", feeRecipient,
	)
	return nil
}

// CreateSale lists an owned asset at a fixed price and moves it into
// marketplace escrow. The listing row and its outbox event commit together;
// a failed commit returns custody to the seller.
func (s Service) CreateSale(ctx context.Context, caller string, input ports.CreateSaleInput) (entities.Listing, error) {
	logger := ResolveLogger(s.Logger)
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return entities.Listing{}, domainerrors.ErrNotOwnerOrApproved
	}
	if !input.Price.IsPositive() {
		return entities.Listing{}, domainerrors.ErrInvalidPrice
	}

	payable, err := s.Repo.IsPayableToken(ctx, input.PaymentUnit)
	if err != nil {
		return entities.Listing{}, err
	}
	if !payable {
		return entities.Listing{}, domainerrors.ErrUnsupportedPaymentUnit
	}

	approved, err := s.Custody.IsApprovedOrOwner(ctx, input.AssetContract, input.TokenID, caller)
	if err != nil {
		return entities.Listing{}, err
	}
	if !approved {
		return entities.Listing{}, domainerrors.ErrNotOwnerOrApproved
	}

	if _, err := s.Repo.GetListing(ctx, input.AssetContract, input.TokenID); err == nil {
		return entities.Listing{}, domainerrors.ErrAlreadyListed
	} else if !errors.Is(err, domainerrors.ErrListingNotFound) {
		return entities.Listing{}, err
	}

	now := s.now()
	listing := entities.Listing{
		AssetContract: input.AssetContract,
		TokenID:       input.TokenID,
		Seller:        caller,
		PaymentUnit:   input.PaymentUnit,
		Price:         input.Price,
		ListedAt:      now,
	}
	envelope, err := s.listedEnvelope(ctx, listing)
	if err != nil {
		return entities.Listing{}, err
	}

	if err := s.Custody.TransferCustody(ctx, input.AssetContract, input.TokenID, caller, s.EscrowAccount); err != nil {
		return entities.Listing{}, err
	}
	if err := s.Repo.CreateListingWithOutbox(ctx, listing, envelope); err != nil {
		if unwindErr := s.Custody.TransferCustody(ctx, input.AssetContract, input.TokenID, s.EscrowAccount, caller); unwindErr != nil {
			logger.Error("escrow unwind failed after listing write failure",
				"event", "market_listing_unwind_failed",
				"module", logModule,
				"layer", "application",
				"asset_contract", input.AssetContract,
				"token_id", input.TokenID,
				"error", unwindErr.Error(),
			)
		}
		return entities.Listing{}, err
	}

	logger.Info("asset listed",
		"event", "market_listing_created",
		"module", logModule,
		"layer", "application",
		"asset_contract", listing.AssetContract,
		"token_id", listing.TokenID,
		"seller", listing.Seller,
		"payment_unit", listing.PaymentUnit,
		"price", listing.Price.String(),
	)
	return listing, nil
}

// CancelListedNFT delists the asset and returns custody to the seller.
func (s Service) CancelListedNFT(ctx context.Context, caller string, assetContract string, tokenID uint64) error {
	listing, err := s.Repo.GetListing(ctx, assetContract, tokenID)
	if err != nil {
		return err
	}
	if caller != listing.Seller {
		return domainerrors.ErrNotSeller
	}

	if err := s.Custody.TransferCustody(ctx, assetContract, tokenID, s.EscrowAccount, listing.Seller); err != nil {
		return err
	}
	if err := s.Repo.DeleteListing(ctx, assetContract, tokenID); err != nil {
		if unwindErr := s.Custody.TransferCustody(ctx, assetContract, tokenID, listing.Seller, s.EscrowAccount); unwindErr != nil {
			ResolveLogger(s.Logger).Error("escrow unwind failed after delist write failure",
				"event", "market_cancel_unwind_failed",
				"module", logModule,
				"layer", "application",
				"asset_contract", assetContract,
				"token_id", tokenID,
				"error", unwindErr.Error(),
			)
		}
		return err
	}

	ResolveLogger(s.Logger).Info("listing cancelled",
		"event", "market_listing_cancelled",
		"module", logModule,
		"layer", "application",
		"asset_contract", assetContract,
		"token_id", tokenID,
		"seller", listing.Seller,
	)
	return nil
}

func (s Service) GetListedNFT(ctx context.Context, assetContract string, tokenID uint64) (entities.Listing, error) {
	return s.Repo.GetListing(ctx, assetContract, tokenID)
}

// MakeOffer records an alternate-price proposal against a listed asset.
// The offerer's payment authorization is checked, not consumed, here.
func (s Service) MakeOffer(ctx context.Context, caller string, input ports.MakeOfferInput) (entities.Offer, error) {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return entities.Offer{}, domainerrors.ErrInvalidAmount
	}
	listing, err := s.Repo.GetListing(ctx, input.AssetContract, input.TokenID)
	if err != nil {
		return entities.Offer{}, err
	}
	if !input.Amount.IsPositive() {
		return entities.Offer{}, domainerrors.ErrInvalidAmount
	}

	authorized, err := s.Payments.AuthorizedAmount(ctx, listing.PaymentUnit, caller, s.EscrowAccount)
	if err != nil {
		return entities.Offer{}, err
	}
	if authorized.LessThan(input.Amount) {
		return entities.Offer{}, domainerrors.ErrInsufficientAuthorization
	}

	offer := entities.Offer{
		AssetContract: input.AssetContract,
		TokenID:       input.TokenID,
		Offerer:       caller,
		Amount:        input.Amount,
		OfferedAt:     s.now(),
	}
	if err := s.Repo.PutOffer(ctx, offer); err != nil {
		return entities.Offer{}, err
	}

	ResolveLogger(s.Logger).Info("offer recorded",
		"event", "market_offer_recorded",
		"module", logModule,
		"layer", "application",
		"asset_contract", offer.AssetContract,
		"token_id", offer.TokenID,
		"offerer", offer.Offerer,
		"amount", offer.Amount.String(),
	)
	return offer, nil
}

// Buy settles the listing at its exact listed price.
func (s Service) Buy(ctx context.Context, caller string, assetContract string, tokenID uint64, amount decimal.Decimal) (ports.SaleRecord, error) {
	listing, err := s.Repo.GetListing(ctx, assetContract, tokenID)
	if err != nil {
		return ports.SaleRecord{}, err
	}
	if !amount.Equal(listing.Price) {
		return ports.SaleRecord{}, domainerrors.ErrPriceMismatch
	}
	return s.settle(ctx, listing, strings.TrimSpace(caller), amount)
}

// AcceptOffer settles the listing at the offered amount. Only the listing
// seller may accept; all other offers on the key die with the listing.
func (s Service) AcceptOffer(ctx context.Context, caller string, assetContract string, tokenID uint64, offerer string) (ports.SaleRecord, error) {
	listing, err := s.Repo.GetListing(ctx, assetContract, tokenID)
	if err != nil {
		return ports.SaleRecord{}, err
	}
	if caller != listing.Seller {
		return ports.SaleRecord{}, domainerrors.ErrNotSeller
	}
	offer, err := s.Repo.GetOffer(ctx, assetContract, tokenID, offerer)
	if err != nil {
		return ports.SaleRecord{}, err
	}
	return s.settle(ctx, listing, offer.Offerer, offer.Amount)
}

type paymentLeg struct {
	to     string
	amount decimal.Decimal
}

// settle runs the shared fee-split settlement: fresh royalty read, split
// computation, three payment legs from the buyer, custody release, then the
// registry commit. Every effect applied before a failure is unwound in
// reverse so a failed settlement leaves no observable change.
func (s Service) settle(ctx context.Context, listing entities.Listing, buyer string, total decimal.Decimal) (ports.SaleRecord, error) {
	logger := ResolveLogger(s.Logger)

	config, err := s.Repo.GetFeeConfig(ctx)
	if err != nil {
		return ports.SaleRecord{}, err
	}
	royalty, err := s.Royalty.RoyaltyInfo(ctx, listing.AssetContract)
	if err != nil {
		return ports.SaleRecord{}, err
	}
	split, err := services.ComputeSplit(total, config.PlatformFeeBps, royalty.RoyaltyBps)
	if err != nil {
		logger.Error("settlement rejected by fee configuration",
			"event", "market_settlement_config_invalid",
			"module", logModule,
			"layer", "application",
			"asset_contract", listing.AssetContract,
			"token_id", listing.TokenID,
			"platform_fee_bps", config.PlatformFeeBps,
			"royalty_bps", royalty.RoyaltyBps,
		)
		return ports.SaleRecord{}, err
	}

	authorized, err := s.Payments.AuthorizedAmount(ctx, listing.PaymentUnit, buyer, s.EscrowAccount)
	if err != nil {
		return ports.SaleRecord{}, err
	}
	if authorized.LessThan(total) {
		return ports.SaleRecord{}, domainerrors.ErrInsufficientAuthorization
	}

	saleID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.SaleRecord{}, err
	}
	sale := ports.SaleRecord{
		SaleID:        saleID,
		AssetContract: listing.AssetContract,
		TokenID:       listing.TokenID,
		Seller:        listing.Seller,
		Buyer:         buyer,
		PaymentUnit:   listing.PaymentUnit,
		Amount:        total,
		PlatformFee:   split.PlatformFee,
		RoyaltyFee:    split.RoyaltyFee,
		SellerAmount:  split.SellerAmount,
		SettledAt:     s.now(),
	}
	envelope, err := s.settledEnvelope(ctx, sale)
	if err != nil {
		return ports.SaleRecord{}, err
	}

	legs := make([]paymentLeg, 0, 3)
	if split.PlatformFee.IsPositive() {
		legs = append(legs, paymentLeg{to: config.FeeRecipient, amount: split.PlatformFee})
	}
	if split.RoyaltyFee.IsPositive() {
		legs = append(legs, paymentLeg{to: royalty.RoyaltyRecipient, amount: split.RoyaltyFee})
	}
	if split.SellerAmount.IsPositive() {
		legs = append(legs, paymentLeg{to: listing.Seller, amount: split.SellerAmount})
	}

	applied := make([]paymentLeg, 0, len(legs))
	for _, leg := range legs {
		if err := s.Payments.Transfer(ctx, listing.PaymentUnit, buyer, leg.to, leg.amount); err != nil {
			s.unwindPayments(ctx, logger, listing, buyer, applied)
			return ports.SaleRecord{}, err
		}
		applied = append(applied, leg)
	}

	if err := s.Custody.TransferCustody(ctx, listing.AssetContract, listing.TokenID, s.EscrowAccount, buyer); err != nil {
		s.unwindPayments(ctx, logger, listing, buyer, applied)
		return ports.SaleRecord{}, err
	}

	if err := s.Repo.CompleteSettlement(ctx, sale, envelope); err != nil {
		if unwindErr := s.Custody.TransferCustody(ctx, listing.AssetContract, listing.TokenID, buyer, s.EscrowAccount); unwindErr != nil {
			logger.Error("custody unwind failed after settlement write failure",
				"event", "market_settlement_unwind_failed",
				"module", logModule,
				"layer", "application",
				"sale_id", sale.SaleID,
				"error", unwindErr.Error(),
			)
		}
		s.unwindPayments(ctx, logger, listing, buyer, applied)
		return ports.SaleRecord{}, err
	}

	logger.Info("sale settled",
		"event", "market_sale_settled",
		"module", logModule,
		"layer", "application",
		"sale_id", sale.SaleID,
		"asset_contract", sale.AssetContract,
		"token_id", sale.TokenID,
		"seller", sale.Seller,
		"buyer", sale.Buyer,
		"amount", sale.Amount.String(),
		"platform_fee", sale.PlatformFee.String(),
		"royalty_fee", sale.RoyaltyFee.String(),
		"seller_amount", sale.SellerAmount.String(),
	)
	return sale, nil
}

// unwindPayments reverses completed legs, newest first.
func (s Service) unwindPayments(ctx context.Context, logger *slog.Logger, listing entities.Listing, buyer string, applied []paymentLeg) {
	for i := len(applied) - 1; i >= 0; i-- {
		leg := applied[i]
		if err := s.Payments.Transfer(ctx, listing.PaymentUnit, leg.to, buyer, leg.amount); err != nil {
			logger.Error("payment unwind failed",
				"event", "market_payment_unwind_failed",
				"module", logModule,
				"layer", "application",
				"asset_contract", listing.AssetContract,
				"token_id", listing.TokenID,
				"payment_unit", listing.PaymentUnit,
				"to", leg.to,
				"amount", leg.amount.String(),
				"error", err.Error(),
			)
		}
	}
}

func (s Service) listedEnvelope(ctx context.Context, listing entities.Listing) (ports.EventEnvelope, error) {
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	data, err := json.Marshal(map[string]any{
		"asset_contract": listing.AssetContract,
		"token_id":       listing.TokenID,
		"seller":         listing.Seller,
		"payment_unit":   listing.PaymentUnit,
		"price":          listing.Price.String(),
		"listed_at":      listing.ListedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     listedEventType,
		SourceService: sourceService,
		OccurredAt:    listing.ListedAt.UTC(),
		SchemaVersion: 1,
		PartitionKey:  listingPartitionKey(listing.AssetContract, listing.TokenID),
		Data:          data,
	}, nil
}

func (s Service) settledEnvelope(ctx context.Context, sale ports.SaleRecord) (ports.EventEnvelope, error) {
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	data, err := json.Marshal(map[string]any{
		"sale_id":        sale.SaleID,
		"asset_contract": sale.AssetContract,
		"token_id":       sale.TokenID,
		"seller":         sale.Seller,
		"buyer":          sale.Buyer,
		"payment_unit":   sale.PaymentUnit,
		"amount":         sale.Amount.String(),
		"platform_fee":   sale.PlatformFee.String(),
		"royalty_fee":    sale.RoyaltyFee.String(),
		"seller_amount":  sale.SellerAmount.String(),
		"settled_at":     sale.SettledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     saleSettledEvent,
		SourceService: sourceService,
		OccurredAt:    sale.SettledAt.UTC(),
		SchemaVersion: 1,
		PartitionKey:  listingPartitionKey(sale.AssetContract, sale.TokenID),
		Data:          data,
	}, nil
}

func listingPartitionKey(assetContract string, tokenID uint64) string {
	return assetContract + "/" + strconv.FormatUint(tokenID, 10)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
