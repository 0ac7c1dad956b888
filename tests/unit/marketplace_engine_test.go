package unit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	marketplaceengine "nftmarket/contexts/market-core/marketplace-engine"
	httptransport "nftmarket/contexts/market-core/marketplace-engine/transport/http"
)

const (
	marketOwner = "market-owner"
	seller      = "seller-1"
	buyer       = "buyer-1"
	creator     = "creator-1"
	nftContract = "calyptus-nft"
	paymentUnit = "usd"
)

// newMarketModule wires the in-memory engine with a 10% platform fee, a
// 10% creator royalty on nftContract, token 1 minted to the seller and a
// buyer funded and authorized for 1000.
func newMarketModule(t *testing.T) marketplaceengine.Module {
	t.Helper()

	module := marketplaceengine.NewInMemoryModule(marketOwner, nil)
	ctx := context.Background()

	if err := module.Service.UpdatePlatformFee(ctx, marketOwner, 1000, marketOwner); err != nil {
		t.Fatalf("seed platform fee failed: %v", err)
	}
	if err := module.Service.AddPayableToken(ctx, marketOwner, paymentUnit); err != nil {
		t.Fatalf("seed payable token failed: %v", err)
	}
	if err := module.Assets.Mint(nftContract, 1, seller); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := module.Assets.SetRoyalty(nftContract, 1000, creator); err != nil {
		t.Fatalf("set royalty failed: %v", err)
	}
	module.Ledger.Mint(paymentUnit, buyer, decimal.NewFromInt(1000))
	module.Ledger.Authorize(paymentUnit, buyer, marketplaceengine.DefaultEscrowAccount, decimal.NewFromInt(1000))
	return module
}

func listToken(t *testing.T, module marketplaceengine.Module, price string) {
	t.Helper()
	_, err := module.Handler.CreateSaleHandler(context.Background(), seller, httptransport.CreateSaleRequest{
		AssetContract: nftContract,
		TokenID:       1,
		PaymentUnit:   paymentUnit,
		Price:         price,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
}

func TestListingMovesAssetIntoEscrow(t *testing.T) {
	module := newMarketModule(t)
	listToken(t, module, "100")

	owner, ok := module.Assets.OwnerOf(nftContract, 1)
	if !ok || owner != marketplaceengine.DefaultEscrowAccount {
		t.Fatalf("expected escrow custody after listing, got %q", owner)
	}

	resp, err := module.Handler.GetListingHandler(context.Background(), nftContract, 1)
	if err != nil {
		t.Fatalf("get listing failed: %v", err)
	}
	if resp.Data.Seller != seller || resp.Data.Price != "100" {
		t.Fatalf("unexpected listing: %+v", resp.Data)
	}
}

func TestBuySplitsPaymentThreeWays(t *testing.T) {
	module := newMarketModule(t)
	listToken(t, module, "100")

	resp, err := module.Handler.BuyHandler(context.Background(), buyer, nftContract, 1, httptransport.BuyRequest{Amount: "100"})
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if resp.Data.SellerAmount != "80" || resp.Data.PlatformFee != "10" || resp.Data.RoyaltyFee != "10" {
		t.Fatalf("unexpected split: %+v", resp.Data)
	}

	if got := module.Ledger.BalanceOf(paymentUnit, seller); !got.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected seller balance 80, got %s", got)
	}
	if got := module.Ledger.BalanceOf(paymentUnit, marketOwner); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected platform balance 10, got %s", got)
	}
	if got := module.Ledger.BalanceOf(paymentUnit, creator); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected creator balance 10, got %s", got)
	}
	if got := module.Ledger.BalanceOf(paymentUnit, buyer); !got.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected buyer balance 900, got %s", got)
	}

	owner, _ := module.Assets.OwnerOf(nftContract, 1)
	if owner != buyer {
		t.Fatalf("expected buyer custody after sale, got %q", owner)
	}
}

func TestAcceptOfferSettlesAtOfferedAmount(t *testing.T) {
	module := newMarketModule(t)
	listToken(t, module, "100")
	ctx := context.Background()

	if _, err := module.Handler.MakeOfferHandler(ctx, buyer, nftContract, 1, httptransport.MakeOfferRequest{Amount: "50"}); err != nil {
		t.Fatalf("make offer failed: %v", err)
	}
	resp, err := module.Handler.AcceptOfferHandler(ctx, seller, nftContract, 1, buyer)
	if err != nil {
		t.Fatalf("accept offer failed: %v", err)
	}
	if resp.Data.SellerAmount != "40" || resp.Data.PlatformFee != "5" || resp.Data.RoyaltyFee != "5" {
		t.Fatalf("unexpected split: %+v", resp.Data)
	}
	if got := module.Ledger.BalanceOf(paymentUnit, buyer); !got.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("expected buyer balance 950, got %s", got)
	}
}

func TestCancelListingReturnsCustodyAndDropsOffers(t *testing.T) {
	module := newMarketModule(t)
	listToken(t, module, "100")
	ctx := context.Background()

	if _, err := module.Handler.MakeOfferHandler(ctx, buyer, nftContract, 1, httptransport.MakeOfferRequest{Amount: "50"}); err != nil {
		t.Fatalf("make offer failed: %v", err)
	}
	if _, err := module.Handler.CancelListingHandler(ctx, seller, nftContract, 1); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	owner, _ := module.Assets.OwnerOf(nftContract, 1)
	if owner != seller {
		t.Fatalf("expected seller custody after cancel, got %q", owner)
	}
	if _, err := module.Handler.AcceptOfferHandler(ctx, seller, nftContract, 1, buyer); err == nil {
		t.Fatalf("expected stale offer acceptance to fail after cancel")
	}
}

func TestSettlementEmitsCanonicalOutboxEvent(t *testing.T) {
	module := newMarketModule(t)
	listToken(t, module, "100")
	ctx := context.Background()

	if _, err := module.Handler.BuyHandler(ctx, buyer, nftContract, 1, httptransport.BuyRequest{Amount: "100"}); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	outbox, err := module.Store.ListPendingOutbox(ctx, 50)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}

	found := false
	for _, msg := range outbox {
		if msg.EventType != "market.sale_settled" {
			continue
		}
		found = true
		if msg.PartitionKey != "calyptus-nft/1" {
			t.Fatalf("unexpected partition key: %s", msg.PartitionKey)
		}

		var envelope map[string]any
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			t.Fatalf("decode outbox envelope: %v", err)
		}
		if sourceService, _ := envelope["source_service"].(string); sourceService != "marketplace-engine" {
			t.Fatalf("unexpected source_service: %s", sourceService)
		}
		data, _ := envelope["data"].(map[string]any)
		if sellerAmount, _ := data["seller_amount"].(string); sellerAmount != "80" {
			t.Fatalf("unexpected seller_amount in event data: %v", data["seller_amount"])
		}
	}
	if !found {
		t.Fatalf("expected market.sale_settled event in outbox")
	}
}

func TestBuyRejectsWrongAmountWithoutEffects(t *testing.T) {
	module := newMarketModule(t)
	listToken(t, module, "100")

	if _, err := module.Handler.BuyHandler(context.Background(), buyer, nftContract, 1, httptransport.BuyRequest{Amount: "95"}); err == nil {
		t.Fatalf("expected price mismatch")
	}
	if got := module.Ledger.BalanceOf(paymentUnit, buyer); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected buyer funds untouched, got %s", got)
	}
	owner, _ := module.Assets.OwnerOf(nftContract, 1)
	if owner != marketplaceengine.DefaultEscrowAccount {
		t.Fatalf("expected asset still in escrow, got %q", owner)
	}
}
