package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TriggerCondition is one cart predicate of an upsell. ReferenceID holds a
// product/category/combo id, a tag, or a numeric threshold depending on Type.
type TriggerCondition struct {
	Type        TriggerType `json:"type"`
	ReferenceID string      `json:"reference_id"`
}

type Upsell struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	AvailabilityRule  `gorm:"embedded"`
	TriggerConditions []TriggerCondition  `gorm:"serializer:json" json:"trigger_conditions"`
	OfferType         OfferType           `gorm:"not null" json:"offer_type"`
	OfferProductIDs   []uuid.UUID         `gorm:"serializer:json" json:"offer_product_ids"`
	OfferCategoryIDs  []uuid.UUID         `gorm:"serializer:json" json:"offer_category_ids"`
	DiscountType      UpsellDiscountType  `gorm:"default:none" json:"discount_type"`
	DiscountValue     decimal.NullDecimal `json:"discount_value"`
	Views             int64               `gorm:"not null;default:0" json:"views"`
	Conversions       int64               `gorm:"not null;default:0" json:"conversions"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	DeletedAt         gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (u *Upsell) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// OfferPrice applies the upsell's own discount to a product price, never below zero.
func (u *Upsell) OfferPrice(price decimal.Decimal) decimal.Decimal {
	if !u.DiscountValue.Valid {
		return price
	}
	var out decimal.Decimal
	switch u.DiscountType {
	case UpsellDiscountPercentage:
		out = price.Sub(price.Mul(u.DiscountValue.Decimal).Div(decimal.NewFromInt(100)))
	case UpsellDiscountFixedAmount:
		out = price.Sub(u.DiscountValue.Decimal)
	default:
		return price
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out.Round(2)
}
