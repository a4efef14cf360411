package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID together with its cart items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Order, error) {
	var row models.OrderModel
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &row); err != nil {
		return nil, err
	}
	return r.withCartItems(ctx, row.ToDomain())
}

// FindByPlatformOrderID finds the order a shop platform knows as platformOrderID
func (r *GormOrderRepository) FindByPlatformOrderID(ctx context.Context, shopID uuid.UUID, platformOrderID string) (*integration.Order, error) {
	var row models.OrderModel
	if err := firstOrNotFound(r.db.WithContext(ctx).
		Where("shop_id = ? AND platform_order_id = ?", shopID, platformOrderID), &row); err != nil {
		return nil, err
	}
	return r.withCartItems(ctx, row.ToDomain())
}

// Save creates or updates an order. Cart items are persisted through CartItemRepository.
func (r *GormOrderRepository) Save(ctx context.Context, order *integration.Order) error {
	return r.db.WithContext(ctx).Save(models.OrderModelFromDomain(order)).Error
}

// UpsertImported inserts the order, or refreshes the platform-sourced fields of
// the existing (shop, platform order id) row. Status is never rewritten by a
// refresh. On return order carries the stored id, status and creation time.
func (r *GormOrderRepository) UpsertImported(ctx context.Context, order *integration.Order) (bool, error) {
	m := models.OrderModelFromDomain(order)

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_id"}, {Name: "platform_order_id"}},
			DoNothing: true,
		}).Create(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			created = true
			return nil
		}

		if err := tx.Model(&models.OrderModel{}).
			Where("shop_id = ? AND platform_order_id = ?", m.ShopID, m.PlatformOrderID).
			Updates(map[string]any{
				"order_name":       m.OrderName,
				"link":             m.Link,
				"shipping_address": m.ShippingAddressJSON,
				"line_items":       m.LineItemsJSON,
				"fulfillments":     m.FulfillmentsJSON,
				"note":             m.Note,
				"total_price":      m.TotalPrice,
				"cursor":           m.Cursor,
				"placed_at":        m.PlacedAt,
				"updated_at":       time.Now(),
			}).Error; err != nil {
			return err
		}

		var stored models.OrderModel
		if err := tx.Select("id", "status", "created_at", "updated_at").
			Where("shop_id = ? AND platform_order_id = ?", m.ShopID, m.PlatformOrderID).
			First(&stored).Error; err != nil {
			return err
		}
		order.ID = stored.ID
		order.Status = stored.Status
		order.CreatedAt = stored.CreatedAt
		order.UpdatedAt = stored.UpdatedAt
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// CancelIfActive sets status to CANCELLED with a single conditional update.
// changed is false when the order was already cancelled; a missing order
// returns shared.ErrNotFound.
func (r *GormOrderRepository) CancelIfActive(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND status <> ?", id, integration.OrderStatusCancelled).
		Updates(map[string]any{
			"status":     integration.OrderStatusCancelled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, shared.ErrNotFound
	}
	return false, nil
}

func (r *GormOrderRepository) withCartItems(ctx context.Context, order *integration.Order) (*integration.Order, error) {
	items, err := findCartItemsByOrder(r.db.WithContext(ctx), order.ID)
	if err != nil {
		return nil, err
	}
	order.CartItems = items
	return order, nil
}

var _ integration.OrderRepository = (*GormOrderRepository)(nil)
