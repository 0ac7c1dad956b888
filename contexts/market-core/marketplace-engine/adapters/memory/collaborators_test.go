package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
)

func TestApproveRequiresCustodian(t *testing.T) {
	registry := NewAssetRegistry()
	if err := registry.Mint("nft-contract", 1, "alice"); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if err := registry.Approve("nft-contract", 1, "mallory", "bob"); !errors.Is(err, domainerrors.ErrNotOwnerOrApproved) {
		t.Fatalf("expected approval rejected for non-custodian, got %v", err)
	}
	if err := registry.Approve("nft-contract", 1, "alice", "bob"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	ok, err := registry.IsApprovedOrOwner(context.Background(), "nft-contract", 1, "bob")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected bob approved")
	}
}

func TestTransferCustodyClearsApproval(t *testing.T) {
	registry := NewAssetRegistry()
	if err := registry.Mint("nft-contract", 1, "alice"); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := registry.Approve("nft-contract", 1, "alice", "bob"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := registry.TransferCustody(context.Background(), "nft-contract", 1, "alice", "carol"); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	ok, err := registry.IsApprovedOrOwner(context.Background(), "nft-contract", 1, "bob")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if ok {
		t.Fatalf("expected approval cleared after custody change")
	}

	err = registry.TransferCustody(context.Background(), "nft-contract", 1, "alice", "dave")
	if !errors.Is(err, domainerrors.ErrNotOwnerOrApproved) {
		t.Fatalf("expected transfer by stale owner rejected, got %v", err)
	}
}

func TestSetRoyaltyValidatesBps(t *testing.T) {
	registry := NewAssetRegistry()

	if err := registry.SetRoyalty("nft-contract", 10001, "creator"); !errors.Is(err, domainerrors.ErrFeeConfigInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
	if err := registry.SetRoyalty("nft-contract", 1000, "creator"); err != nil {
		t.Fatalf("set royalty failed: %v", err)
	}

	config, err := registry.RoyaltyInfo(context.Background(), "nft-contract")
	if err != nil {
		t.Fatalf("royalty info failed: %v", err)
	}
	if config.RoyaltyBps != 1000 || config.RoyaltyRecipient != "creator" {
		t.Fatalf("unexpected royalty config: %+v", config)
	}
}

func TestLedgerTransferIsBalanceGated(t *testing.T) {
	ledger := NewPaymentLedger()
	ledger.Mint("usd", "alice", decimal.NewFromInt(30))

	err := ledger.Transfer(context.Background(), "usd", "alice", "bob", decimal.NewFromInt(31))
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := ledger.Transfer(context.Background(), "usd", "alice", "bob", decimal.NewFromInt(30)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if got := ledger.BalanceOf("usd", "bob"); !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected bob balance 30, got %s", got)
	}
}
