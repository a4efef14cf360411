package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCartItemRepository implements CartItemRepository using GORM
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewGormCartItemRepository creates a new GormCartItemRepository
func NewGormCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// FindByOrder lists the cart items of an order in creation order
func (r *GormCartItemRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]integration.CartItem, error) {
	return findCartItemsByOrder(r.db.WithContext(ctx), orderID)
}

// FindByIDs loads the cart items among ids; unknown ids are skipped
func (r *GormCartItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]integration.CartItem, error) {
	if len(ids) == 0 {
		return []integration.CartItem{}, nil
	}
	var rows []models.CartItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCartItems(rows), nil
}

// Save creates or updates a cart item
func (r *GormCartItemRepository) Save(ctx context.Context, item *integration.CartItem) error {
	return r.db.WithContext(ctx).Save(models.CartItemModelFromDomain(item)).Error
}

// AttachPurchase stamps purchaseID on the items among ids that have none yet
// and clears their error. Items already carrying a purchase are left untouched.
func (r *GormCartItemRepository) AttachPurchase(ctx context.Context, ids []uuid.UUID, purchaseID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if purchaseID == "" {
		return 0, integration.ErrPurchaseIDRequired
	}
	res := r.db.WithContext(ctx).Model(&models.CartItemModel{}).
		Where("id IN ? AND (purchase_id = '' OR purchase_id IS NULL)", ids).
		Updates(map[string]any{
			"purchase_id": purchaseID,
			"error":       "",
			"updated_at":  time.Now(),
		})
	return res.RowsAffected, res.Error
}

func findCartItemsByOrder(db *gorm.DB, orderID uuid.UUID) ([]integration.CartItem, error) {
	var rows []models.CartItemModel
	if err := db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCartItems(rows), nil
}

func toCartItems(rows []models.CartItemModel) []integration.CartItem {
	items := make([]integration.CartItem, 0, len(rows))
	for i := range rows {
		items = append(items, *rows[i].ToDomain())
	}
	return items
}

var _ integration.CartItemRepository = (*GormCartItemRepository)(nil)
