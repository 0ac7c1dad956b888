package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	domainerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
	"nftmarket/contexts/market-core/marketplace-engine/domain/services"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
)

// AssetRegistry is an in-memory stand-in for the external asset registry.
// It owns custody, transfer approvals and per-contract royalty config, and
// implements the CustodyAdapter and RoyaltySource ports.
type AssetRegistry struct {
	mu        sync.RWMutex
	owners    map[string]string
	approvals map[string]string
	royalties map[string]ports.RoyaltyConfig
}

func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{
		owners:    make(map[string]string),
		approvals: make(map[string]string),
		royalties: make(map[string]ports.RoyaltyConfig),
	}
}

func assetKey(assetContract string, tokenID uint64) string {
	return fmt.Sprintf("%s/%d", assetContract, tokenID)
}

// Mint assigns initial custody of an asset.
func (r *AssetRegistry) Mint(assetContract string, tokenID uint64, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := assetKey(assetContract, tokenID)
	if _, exists := r.owners[key]; exists {
		return fmt.Errorf("asset %s already minted", key)
	}
	r.owners[key] = owner
	return nil
}

// Approve grants a single transfer delegate for the asset, replacing any
// previous one. Only the current custodian may grant approval.
func (r *AssetRegistry) Approve(assetContract string, tokenID uint64, owner string, delegate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := assetKey(assetContract, tokenID)
	if r.owners[key] != owner {
		return domainerrors.ErrNotOwnerOrApproved
	}
	r.approvals[key] = delegate
	return nil
}

// SetRoyalty configures the creator royalty for an asset contract.
// Basis points are validated at write time.
func (r *AssetRegistry) SetRoyalty(assetContract string, royaltyBps int64, recipient string) error {
	if royaltyBps < 0 || royaltyBps > services.BpsDenominator {
		return domainerrors.ErrFeeConfigInvariant
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.royalties[assetContract] = ports.RoyaltyConfig{
		RoyaltyBps:       royaltyBps,
		RoyaltyRecipient: recipient,
	}
	return nil
}

func (r *AssetRegistry) OwnerOf(assetContract string, tokenID uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[assetKey(assetContract, tokenID)]
	return owner, ok
}

func (r *AssetRegistry) TransferCustody(_ context.Context, assetContract string, tokenID uint64, from string, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := assetKey(assetContract, tokenID)
	owner, ok := r.owners[key]
	if !ok || owner != from {
		return domainerrors.ErrNotOwnerOrApproved
	}
	r.owners[key] = to
	// Approvals do not survive a custody change.
	delete(r.approvals, key)
	return nil
}

func (r *AssetRegistry) IsApprovedOrOwner(_ context.Context, assetContract string, tokenID uint64, who string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := assetKey(assetContract, tokenID)
	owner, ok := r.owners[key]
	if !ok {
		return false, nil
	}
	return owner == who || r.approvals[key] == who, nil
}

func (r *AssetRegistry) RoyaltyInfo(_ context.Context, assetContract string) (ports.RoyaltyConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.royalties[assetContract], nil
}

// PaymentLedger is an in-memory stand-in for the external fungible-payment
// ledger. The marketplace escrow account is the trusted spender buyers
// authorize; authorizations are checked, not consumed, by transfers.
type PaymentLedger struct {
	mu         sync.RWMutex
	balances   map[string]map[string]decimal.Decimal
	allowances map[string]map[string]map[string]decimal.Decimal
}

func NewPaymentLedger() *PaymentLedger {
	return &PaymentLedger{
		balances:   make(map[string]map[string]decimal.Decimal),
		allowances: make(map[string]map[string]map[string]decimal.Decimal),
	}
}

// Mint credits an account, creating the unit ledger on first use.
func (l *PaymentLedger) Mint(unit string, account string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[unit] == nil {
		l.balances[unit] = make(map[string]decimal.Decimal)
	}
	l.balances[unit][account] = l.balances[unit][account].Add(amount)
}

// Authorize sets the amount spender may move on owner's behalf.
func (l *PaymentLedger) Authorize(unit string, owner string, spender string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.allowances[unit] == nil {
		l.allowances[unit] = make(map[string]map[string]decimal.Decimal)
	}
	if l.allowances[unit][owner] == nil {
		l.allowances[unit][owner] = make(map[string]decimal.Decimal)
	}
	l.allowances[unit][owner][spender] = amount
}

func (l *PaymentLedger) BalanceOf(unit string, account string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[unit][account]
}

func (l *PaymentLedger) Transfer(_ context.Context, unit string, from string, to string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[unit] == nil {
		l.balances[unit] = make(map[string]decimal.Decimal)
	}
	balance := l.balances[unit][from]
	if balance.LessThan(amount) {
		return domainerrors.ErrInsufficientBalance
	}
	l.balances[unit][from] = balance.Sub(amount)
	l.balances[unit][to] = l.balances[unit][to].Add(amount)
	return nil
}

func (l *PaymentLedger) AuthorizedAmount(_ context.Context, unit string, owner string, spender string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[unit][owner][spender], nil
}
