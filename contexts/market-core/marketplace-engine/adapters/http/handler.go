package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"nftmarket/contexts/market-core/marketplace-engine/application"
	"nftmarket/contexts/market-core/marketplace-engine/domain/entities"
	domainerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
	httptransport "nftmarket/contexts/market-core/marketplace-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AddPayableTokenHandler(ctx context.Context, caller string, req httptransport.AddPayableTokenRequest) (httptransport.PayableTokenResponse, error) {
	if err := h.Service.AddPayableToken(ctx, caller, req.PaymentUnit); err != nil {
		return httptransport.PayableTokenResponse{}, err
	}
	return httptransport.PayableTokenResponse{
		Status: "success",
		Data: httptransport.PayableTokenDTO{
			PaymentUnit: strings.TrimSpace(req.PaymentUnit),
			Accepted:    true,
		},
	}, nil
}

func (h Handler) CheckPayableTokenHandler(ctx context.Context, unit string) (httptransport.PayableTokenResponse, error) {
	accepted, err := h.Service.CheckIsPayableToken(ctx, unit)
	if err != nil {
		return httptransport.PayableTokenResponse{}, err
	}
	return httptransport.PayableTokenResponse{
		Status: "success",
		Data: httptransport.PayableTokenDTO{
			PaymentUnit: strings.TrimSpace(unit),
			Accepted:    accepted,
		},
	}, nil
}

func (h Handler) CalculatePlatformFeeHandler(ctx context.Context, amountRaw string) (httptransport.PlatformFeeResponse, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(amountRaw))
	if err != nil {
		return httptransport.PlatformFeeResponse{}, domainerrors.ErrInvalidAmount
	}
	fee, err := h.Service.CalculatePlatformFee(ctx, amount)
	if err != nil {
		return httptransport.PlatformFeeResponse{}, err
	}
	return httptransport.PlatformFeeResponse{
		Status: "success",
		Data: httptransport.PlatformFeeDTO{
			Amount:      amount.String(),
			PlatformFee: fee.String(),
		},
	}, nil
}

func (h Handler) UpdatePlatformFeeHandler(ctx context.Context, caller string, req httptransport.UpdatePlatformFeeRequest) (httptransport.UpdatePlatformFeeResponse, error) {
	if err := h.Service.UpdatePlatformFee(ctx, caller, req.PlatformFeeBps, req.FeeRecipient); err != nil {
		return httptransport.UpdatePlatformFeeResponse{}, err
	}
	return httptransport.UpdatePlatformFeeResponse{Status: "success"}, nil
}

func (h Handler) CreateSaleHandler(ctx context.Context, caller string, req httptransport.CreateSaleRequest) (httptransport.ListingResponse, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return httptransport.ListingResponse{}, domainerrors.ErrInvalidPrice
	}
	listing, err := h.Service.CreateSale(ctx, caller, ports.CreateSaleInput{
		AssetContract: strings.TrimSpace(req.AssetContract),
		TokenID:       req.TokenID,
		PaymentUnit:   strings.TrimSpace(req.PaymentUnit),
		Price:         price,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{
		Status: "success",
		Data:   toListingDTO(listing),
	}, nil
}

func (h Handler) GetListingHandler(ctx context.Context, assetContract string, tokenID uint64) (httptransport.ListingResponse, error) {
	listing, err := h.Service.GetListedNFT(ctx, assetContract, tokenID)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{
		Status: "success",
		Data:   toListingDTO(listing),
	}, nil
}

func (h Handler) CancelListingHandler(ctx context.Context, caller string, assetContract string, tokenID uint64) (httptransport.CancelListingResponse, error) {
	if err := h.Service.CancelListedNFT(ctx, caller, assetContract, tokenID); err != nil {
		return httptransport.CancelListingResponse{}, err
	}
	return httptransport.CancelListingResponse{Status: "success"}, nil
}

func (h Handler) BuyHandler(ctx context.Context, caller string, assetContract string, tokenID uint64, req httptransport.BuyRequest) (httptransport.SaleResponse, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return httptransport.SaleResponse{}, domainerrors.ErrInvalidAmount
	}
	sale, err := h.Service.Buy(ctx, caller, assetContract, tokenID, amount)
	if err != nil {
		return httptransport.SaleResponse{}, err
	}
	return httptransport.SaleResponse{
		Status: "success",
		Data:   toSaleDTO(sale),
	}, nil
}

func (h Handler) MakeOfferHandler(ctx context.Context, caller string, assetContract string, tokenID uint64, req httptransport.MakeOfferRequest) (httptransport.OfferResponse, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return httptransport.OfferResponse{}, domainerrors.ErrInvalidAmount
	}
	offer, err := h.Service.MakeOffer(ctx, caller, ports.MakeOfferInput{
		AssetContract: strings.TrimSpace(assetContract),
		TokenID:       tokenID,
		Amount:        amount,
	})
	if err != nil {
		return httptransport.OfferResponse{}, err
	}
	return httptransport.OfferResponse{
		Status: "success",
		Data: httptransport.OfferDTO{
			AssetContract: offer.AssetContract,
			TokenID:       offer.TokenID,
			Offerer:       offer.Offerer,
			Amount:        offer.Amount.String(),
			OfferedAt:     offer.OfferedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

func (h Handler) AcceptOfferHandler(ctx context.Context, caller string, assetContract string, tokenID uint64, offerer string) (httptransport.SaleResponse, error) {
	sale, err := h.Service.AcceptOffer(ctx, caller, assetContract, tokenID, offerer)
	if err != nil {
		return httptransport.SaleResponse{}, err
	}
	return httptransport.SaleResponse{
		Status: "success",
		Data:   toSaleDTO(sale),
	}, nil
}

func toListingDTO(listing entities.Listing) httptransport.ListingDTO {
	return httptransport.ListingDTO{
		AssetContract: listing.AssetContract,
		TokenID:       listing.TokenID,
		Seller:        listing.Seller,
		PaymentUnit:   listing.PaymentUnit,
		Price:         listing.Price.String(),
		ListedAt:      listing.ListedAt.UTC().Format(time.RFC3339),
	}
}

func toSaleDTO(sale ports.SaleRecord) httptransport.SaleDTO {
	return httptransport.SaleDTO{
		SaleID:        sale.SaleID,
		AssetContract: sale.AssetContract,
		TokenID:       sale.TokenID,
		Seller:        sale.Seller,
		Buyer:         sale.Buyer,
		PaymentUnit:   sale.PaymentUnit,
		Amount:        sale.Amount.String(),
		PlatformFee:   sale.PlatformFee.String(),
		RoyaltyFee:    sale.RoyaltyFee.String(),
		SellerAmount:  sale.SellerAmount.String(),
		SettledAt:     sale.SettledAt.UTC().Format(time.RFC3339),
	}
}
