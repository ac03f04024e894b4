package promotions

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
)

// Repository loads promotion rules.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListActive returns promotions that are switched on and inside their window
// at now, highest priority first.
func (r *Repository) ListActive(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var rows []models.Promotion
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("priority DESC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
