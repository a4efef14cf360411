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

// GormPlatformRepository implements PlatformRepository using GORM
type GormPlatformRepository struct {
	db *gorm.DB
}

// NewGormPlatformRepository creates a new GormPlatformRepository
func NewGormPlatformRepository(db *gorm.DB) *GormPlatformRepository {
	return &GormPlatformRepository{db: db}
}

// FindByID finds a platform by its ID
func (r *GormPlatformRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Platform, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForOwner finds a platform by ID owned by ownerID
func (r *GormPlatformRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*integration.Platform, error) {
	return r.first(r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id))
}

// ListByKind lists the owner's platforms of one kind ordered by name
func (r *GormPlatformRepository) ListByKind(ctx context.Context, ownerID uuid.UUID, kind integration.PlatformKind) ([]integration.Platform, error) {
	var rows []models.PlatformModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	platforms := make([]integration.Platform, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, *p)
	}
	return platforms, nil
}

// Save creates or updates a platform
func (r *GormPlatformRepository) Save(ctx context.Context, platform *integration.Platform) error {
	return r.db.WithContext(ctx).Save(models.PlatformModelFromDomain(platform)).Error
}

func (r *GormPlatformRepository) first(query *gorm.DB) (*integration.Platform, error) {
	var row models.PlatformModel
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

// Ensure GormPlatformRepository implements PlatformRepository
var _ integration.PlatformRepository = (*GormPlatformRepository)(nil)
