package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
)

// Repository persists placed orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the order together with its lines.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order owned by userID, or nil.
func (r *Repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id))
}

// FindByIdempotencyKey returns the order previously placed with key, or nil.
func (r *Repository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("user_id = ? AND idempotency_key = ?", userID, key))
}

func (r *Repository) first(ctx context.Context, q *gorm.DB) (*models.Order, error) {
	var order models.Order
	err := q.Preload("Lines").First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
