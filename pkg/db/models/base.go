package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a zero primary key before insert so rows get the same id on
// postgres and sqlite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Product) BeforeCreate(*gorm.DB) error      { assignID(&p.ID); return nil }
func (c *CartItem) BeforeCreate(*gorm.DB) error     { assignID(&c.ID); return nil }
func (w *WishlistItem) BeforeCreate(*gorm.DB) error { assignID(&w.ID); return nil }
func (c *Coupon) BeforeCreate(*gorm.DB) error       { assignID(&c.ID); return nil }
func (p *Promotion) BeforeCreate(*gorm.DB) error    { assignID(&p.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error        { assignID(&o.ID); return nil }
func (l *OrderLine) BeforeCreate(*gorm.DB) error    { assignID(&l.ID); return nil }

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&Product{},
		&CartItem{},
		&WishlistItem{},
		&Coupon{},
		&Promotion{},
		&Order{},
		&OrderLine{},
	}
}
