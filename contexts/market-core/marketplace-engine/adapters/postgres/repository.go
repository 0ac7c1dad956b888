package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nftmarket/contexts/market-core/marketplace-engine/domain/entities"
	domainerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
	"nftmarket/internal/shared/events"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateListingWithOutbox(ctx context.Context, listing entities.Listing, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := listingModelFromEntity(listing)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyListed
			}
			return err
		}

		outboxRow := outboxModel{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    envelope.OccurredAt.UTC(),
		}
		return tx.Create(&outboxRow).Error
	})
}

func (r *Repository) GetListing(ctx context.Context, assetContract string, tokenID uint64) (entities.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("asset_contract = ? AND token_id = ?", assetContract, tokenID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) DeleteListing(ctx context.Context, assetContract string, tokenID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("asset_contract = ? AND token_id = ?", assetContract, tokenID).
			Delete(&listingModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrListingNotFound
		}
		// Offers cannot outlive the listing on their key.
		return tx.
			Where("asset_contract = ? AND token_id = ?", assetContract, tokenID).
			Delete(&offerModel{}).
			Error
	})
}

func (r *Repository) PutOffer(ctx context.Context, offer entities.Offer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&listingModel{}).
			Where("asset_contract = ? AND token_id = ?", offer.AssetContract, offer.TokenID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrListingNotFound
		}

		row := offerModelFromEntity(offer)
		return tx.
			Where("asset_contract = ? AND token_id = ? AND offerer = ?", offer.AssetContract, offer.TokenID, offer.Offerer).
			Save(&row).
			Error
	})
}

func (r *Repository) GetOffer(ctx context.Context, assetContract string, tokenID uint64, offerer string) (entities.Offer, error) {
	var row offerModel
	err := r.db.WithContext(ctx).
		Where("asset_contract = ? AND token_id = ? AND offerer = ?", assetContract, tokenID, offerer).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Offer{}, domainerrors.ErrOfferNotFound
		}
		return entities.Offer{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) CompleteSettlement(ctx context.Context, sale ports.SaleRecord, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("asset_contract = ? AND token_id = ?", sale.AssetContract, sale.TokenID).
			Delete(&listingModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrListingNotFound
		}
		if err := tx.
			Where("asset_contract = ? AND token_id = ?", sale.AssetContract, sale.TokenID).
			Delete(&offerModel{}).
			Error; err != nil {
			return err
		}

		outboxRow := outboxModel{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    envelope.OccurredAt.UTC(),
		}
		return tx.Create(&outboxRow).Error
	})
}

func (r *Repository) AddPayableToken(ctx context.Context, unit string) error {
	row := payableTokenModel{PaymentUnit: unit, AddedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil && isUniqueViolation(err) {
		// Idempotent insert.
		return nil
	}
	return err
}

func (r *Repository) IsPayableToken(ctx context.Context, unit string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&payableTokenModel{}).
		Where("payment_unit = ?", unit).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) GetFeeConfig(ctx context.Context) (ports.FeeConfig, error) {
	var row feeConfigModel
	err := r.db.WithContext(ctx).
		Where("singleton_id = ?", feeConfigSingletonID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FeeConfig{}, nil
		}
		return ports.FeeConfig{}, err
	}
	return ports.FeeConfig{
		PlatformFeeBps: row.PlatformFeeBps,
		FeeRecipient:   row.FeeRecipient,
	}, nil
}

func (r *Repository) PutFeeConfig(ctx context.Context, config ports.FeeConfig) error {
	row := feeConfigModel{
		SingletonID:    feeConfigSingletonID,
		PlatformFeeBps: config.PlatformFeeBps,
		FeeRecipient:   config.FeeRecipient,
		UpdatedAt:      time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("outbox message not found")
	}
	return nil
}

const feeConfigSingletonID = 1

type listingModel struct {
	AssetContract string          `gorm:"column:asset_contract;primaryKey"`
	TokenID       uint64          `gorm:"column:token_id;primaryKey"`
	Seller        string          `gorm:"column:seller"`
	PaymentUnit   string          `gorm:"column:payment_unit"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric"`
	ListedAt      time.Time       `gorm:"column:listed_at"`
}

func (listingModel) TableName() string {
	return "market_listings"
}

func listingModelFromEntity(listing entities.Listing) listingModel {
	return listingModel{
		AssetContract: listing.AssetContract,
		TokenID:       listing.TokenID,
		Seller:        listing.Seller,
		PaymentUnit:   listing.PaymentUnit,
		Price:         listing.Price,
		ListedAt:      listing.ListedAt.UTC(),
	}
}

func (m listingModel) toEntity() entities.Listing {
	return entities.Listing{
		AssetContract: m.AssetContract,
		TokenID:       m.TokenID,
		Seller:        m.Seller,
		PaymentUnit:   m.PaymentUnit,
		Price:         m.Price,
		ListedAt:      m.ListedAt.UTC(),
	}
}

type offerModel struct {
	AssetContract string          `gorm:"column:asset_contract;primaryKey"`
	TokenID       uint64          `gorm:"column:token_id;primaryKey"`
	Offerer       string          `gorm:"column:offerer;primaryKey"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric"`
	OfferedAt     time.Time       `gorm:"column:offered_at"`
}

func (offerModel) TableName() string {
	return "market_offers"
}

func offerModelFromEntity(offer entities.Offer) offerModel {
	return offerModel{
		AssetContract: offer.AssetContract,
		TokenID:       offer.TokenID,
		Offerer:       offer.Offerer,
		Amount:        offer.Amount,
		OfferedAt:     offer.OfferedAt.UTC(),
	}
}

func (m offerModel) toEntity() entities.Offer {
	return entities.Offer{
		AssetContract: m.AssetContract,
		TokenID:       m.TokenID,
		Offerer:       m.Offerer,
		Amount:        m.Amount,
		OfferedAt:     m.OfferedAt.UTC(),
	}
}

type payableTokenModel struct {
	PaymentUnit string    `gorm:"column:payment_unit;primaryKey"`
	AddedAt     time.Time `gorm:"column:added_at"`
}

func (payableTokenModel) TableName() string {
	return "market_payable_tokens"
}

type feeConfigModel struct {
	SingletonID    int       `gorm:"column:singleton_id;primaryKey"`
	PlatformFeeBps int64     `gorm:"column:platform_fee_bps"`
	FeeRecipient   string    `gorm:"column:fee_recipient"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (feeConfigModel) TableName() string {
	return "market_fee_config"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "market_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
