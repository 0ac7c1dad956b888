package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nftmarket/contexts/market-core/marketplace-engine/domain/entities"
	domainerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
	"nftmarket/internal/shared/events"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store is the in-memory Repository plus Clock/IDGenerator used by the
// in-memory module and tests.
type Store struct {
	mu sync.RWMutex

	listings      map[string]entities.Listing
	offers        map[string]map[string]entities.Offer
	payableTokens map[string]struct{}
	feeConfig     ports.FeeConfig
	outbox        map[string]outboxRecord
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		listings:      make(map[string]entities.Listing),
		offers:        make(map[string]map[string]entities.Offer),
		payableTokens: make(map[string]struct{}),
		outbox:        make(map[string]outboxRecord),
	}
}

func listingKey(assetContract string, tokenID uint64) string {
	return fmt.Sprintf("%s/%d", assetContract, tokenID)
}

func (s *Store) CreateListingWithOutbox(_ context.Context, listing entities.Listing, envelope events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey(listing.AssetContract, listing.TokenID)
	if _, exists := s.listings[key]; exists {
		return domainerrors.ErrAlreadyListed
	}
	s.listings[key] = listing
	return s.appendOutboxLocked(envelope)
}

func (s *Store) GetListing(_ context.Context, assetContract string, tokenID uint64) (entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[listingKey(assetContract, tokenID)]
	if !ok {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	return listing, nil
}

func (s *Store) DeleteListing(_ context.Context, assetContract string, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey(assetContract, tokenID)
	if _, ok := s.listings[key]; !ok {
		return domainerrors.ErrListingNotFound
	}
	delete(s.listings, key)
	// Offers cannot outlive the listing on their key.
	delete(s.offers, key)
	return nil
}

func (s *Store) PutOffer(_ context.Context, offer entities.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey(offer.AssetContract, offer.TokenID)
	if _, ok := s.listings[key]; !ok {
		return domainerrors.ErrListingNotFound
	}
	byOfferer, ok := s.offers[key]
	if !ok {
		byOfferer = make(map[string]entities.Offer)
		s.offers[key] = byOfferer
	}
	byOfferer[offer.Offerer] = offer
	return nil
}

func (s *Store) GetOffer(_ context.Context, assetContract string, tokenID uint64, offerer string) (entities.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offer, ok := s.offers[listingKey(assetContract, tokenID)][strings.TrimSpace(offerer)]
	if !ok {
		return entities.Offer{}, domainerrors.ErrOfferNotFound
	}
	return offer, nil
}

func (s *Store) CompleteSettlement(_ context.Context, sale ports.SaleRecord, envelope events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey(sale.AssetContract, sale.TokenID)
	if _, ok := s.listings[key]; !ok {
		return domainerrors.ErrListingNotFound
	}
	delete(s.listings, key)
	delete(s.offers, key)
	return s.appendOutboxLocked(envelope)
}

func (s *Store) AddPayableToken(_ context.Context, unit string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit = strings.TrimSpace(unit)
	if unit == "" {
		return domainerrors.ErrUnsupportedPaymentUnit
	}
	s.payableTokens[unit] = struct{}{}
	return nil
}

func (s *Store) IsPayableToken(_ context.Context, unit string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.payableTokens[strings.TrimSpace(unit)]
	return ok, nil
}

func (s *Store) GetFeeConfig(_ context.Context) (ports.FeeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feeConfig, nil
}

func (s *Store) PutFeeConfig(_ context.Context, config ports.FeeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeConfig = config
	return nil
}

func (s *Store) appendOutboxLocked(envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return errors.New("outbox event id is required")
	}
	s.outbox[outboxID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
		Status: outboxStatusPending,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return errors.New("outbox message not found")
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
