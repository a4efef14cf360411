package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShopRepository implements ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByID finds a shop by its ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Shop, error) {
	var row models.ShopModel
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindByIDForOwner finds a shop by ID owned by ownerID
func (r *GormShopRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*integration.Shop, error) {
	var row models.ShopModel
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id), &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

// ListByOwner lists every shop owned by ownerID ordered by name
func (r *GormShopRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]integration.Shop, error) {
	var rows []models.ShopModel
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	shops := make([]integration.Shop, 0, len(rows))
	for i := range rows {
		shops = append(shops, *rows[i].ToDomain())
	}
	return shops, nil
}

// ListLinked lists every shop that has a platform, across owners
func (r *GormShopRepository) ListLinked(ctx context.Context) ([]integration.Shop, error) {
	var rows []models.ShopModel
	if err := r.db.WithContext(ctx).Where("platform_id IS NOT NULL").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	shops := make([]integration.Shop, 0, len(rows))
	for i := range rows {
		shops = append(shops, *rows[i].ToDomain())
	}
	return shops, nil
}

// Save creates or updates a shop
func (r *GormShopRepository) Save(ctx context.Context, shop *integration.Shop) error {
	return r.db.WithContext(ctx).Save(models.ShopModelFromDomain(shop)).Error
}

// GormChannelRepository implements ChannelRepository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// FindByID finds a channel by its ID
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Channel, error) {
	var row models.ChannelModel
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindByIDForOwner finds a channel by ID owned by ownerID
func (r *GormChannelRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*integration.Channel, error) {
	var row models.ChannelModel
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id), &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindByIDs returns the owner's channels among ids. Unknown or foreign ids are skipped.
func (r *GormChannelRepository) FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]integration.Channel, error) {
	if len(ids) == 0 {
		return []integration.Channel{}, nil
	}
	var rows []models.ChannelModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	channels := make([]integration.Channel, 0, len(rows))
	for i := range rows {
		channels = append(channels, *rows[i].ToDomain())
	}
	return channels, nil
}

// ListByOwner lists every channel owned by ownerID ordered by name
func (r *GormChannelRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]integration.Channel, error) {
	var rows []models.ChannelModel
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	channels := make([]integration.Channel, 0, len(rows))
	for i := range rows {
		channels = append(channels, *rows[i].ToDomain())
	}
	return channels, nil
}

// Save creates or updates a channel
func (r *GormChannelRepository) Save(ctx context.Context, channel *integration.Channel) error {
	return r.db.WithContext(ctx).Save(models.ChannelModelFromDomain(channel)).Error
}

// firstOrNotFound loads the first row of query into dest, mapping a miss to shared.ErrNotFound
func firstOrNotFound(query *gorm.DB, dest any) error {
	if err := query.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

var (
	_ integration.ShopRepository    = (*GormShopRepository)(nil)
	_ integration.ChannelRepository = (*GormChannelRepository)(nil)
)
