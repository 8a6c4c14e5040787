package repository

import (
	"context"
	"errors"
	"time"

	"petstore-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItemDetail is the read-model row for order projections: the stored
// line item joined with the pet's current display fields.
type OrderItemDetail struct {
	OrderID  string
	PetID    string
	Name     string
	Breed    string
	ImageURL string
	Price    decimal.Decimal
	Quantity int32
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	FindByClientToken(ctx context.Context, token string) (*model.Order, error)
	FindByIDForUser(ctx context.Context, orderID, userID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	ItemDetails(ctx context.Context, orderIDs []string) ([]*OrderItemDetail, error)
	// UpdateStatus enforces forward-only transitions; the caller validates
	// the move with model.OrderStatus.CanTransition before calling.
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.OrderStatus, trackingNumber *string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	return r.findOne(ctx, "stripe_session_id = ?", sessionID)
}

func (r *orderRepoImpl) FindByClientToken(ctx context.Context, token string) (*model.Order, error) {
	return r.findOne(ctx, "client_token = ?", token)
}

// findOne returns (nil, nil) when no order matches.
func (r *orderRepoImpl) findOne(ctx context.Context, query string, args ...interface{}) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) FindByIDForUser(ctx context.Context, orderID, userID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepoImpl) ItemDetails(ctx context.Context, orderIDs []string) ([]*OrderItemDetail, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	var details []*OrderItemDetail
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.order_id, order_items.pet_id, pets.name, pets.breed, pets.image_url, order_items.price, order_items.quantity").
		Joins("LEFT JOIN pets ON pets.id = order_items.pet_id").
		Where("order_items.order_id IN ?", orderIDs).
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.OrderStatus, trackingNumber *string) error {
	db := tx
	if db == nil {
		db = r.db
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if trackingNumber != nil {
		updates["tracking_number"] = *trackingNumber
	}

	result := db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}
