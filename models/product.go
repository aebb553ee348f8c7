package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the catalog view the engine needs for offer resolution and combo pricing.
type Product struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BrandID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"brand_id"`
	Name          string              `gorm:"not null" json:"name"`
	Price         decimal.Decimal     `gorm:"not null" json:"price"`
	DeliveryPrice decimal.NullDecimal `json:"delivery_price"`
	CategoryID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      Category            `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags          []string            `gorm:"serializer:json" json:"tags"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PriceFor returns the price charged for the order type. Delivery falls back
// to the base price when no delivery price is set.
func (p *Product) PriceFor(t OrderType) decimal.Decimal {
	if t == OrderTypeDelivery && p.DeliveryPrice.Valid {
		return p.DeliveryPrice.Decimal
	}
	return p.Price
}
