package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StandardDiscount is an automatic discount applied without a code while its
// availability rule matches.
type StandardDiscount struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name             string    `gorm:"not null" json:"name"`
	AvailabilityRule `gorm:"embedded"`
	DiscountType     DiscountType           `gorm:"not null" json:"discount_type"`
	ReferenceIDs     []uuid.UUID            `gorm:"serializer:json" json:"reference_ids"`
	DiscountMethod   DiscountMethod         `gorm:"not null" json:"discount_method"`
	DiscountValue    decimal.NullDecimal    `json:"discount_value"`
	MinOrderValue    decimal.NullDecimal    `json:"min_order_value"`
	ValidationType   TimeSlotValidationType `gorm:"column:time_slot_validation_type;default:orderTime" json:"time_slot_validation_type"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	DeletedAt        gorm.DeletedAt         `gorm:"index" json:"-"`
}

func (d *StandardDiscount) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// References reports whether id is one of the discount's product or category references.
func (d *StandardDiscount) References(id uuid.UUID) bool {
	for _, ref := range d.ReferenceIDs {
		if ref == id {
			return true
		}
	}
	return false
}

// DiscountCode is an explicit, customer-entered code.
type DiscountCode struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code           string              `gorm:"not null;uniqueIndex:idx_brand_code" json:"code"`
	BrandID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_brand_code" json:"brand_id"`
	LocationIDs    []uuid.UUID         `gorm:"serializer:json" json:"location_ids"`
	OrderTypes     []OrderType         `gorm:"serializer:json" json:"order_types"`
	IsActive       bool                `json:"is_active"`
	UsageLimit     int                 `json:"usage_limit"` // 0 = unlimited
	UsedCount      int                 `json:"used_count"`
	StartDate      *time.Time          `json:"start_date"`
	EndDate        *time.Time          `json:"end_date"`
	MinOrderValue  decimal.Decimal     `json:"min_order_value"`
	DiscountType   DiscountType        `gorm:"default:cart" json:"discount_type"`
	DiscountMethod DiscountMethod      `gorm:"not null" json:"discount_method"`
	DiscountValue  decimal.NullDecimal `json:"discount_value"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (c *DiscountCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AsDiscount expresses the code as a cart-wide standard discount so it can be
// priced alongside automatic discounts.
func (c *DiscountCode) AsDiscount() StandardDiscount {
	return StandardDiscount{
		ID:   c.ID,
		Name: c.Code,
		AvailabilityRule: AvailabilityRule{
			BrandID:       c.BrandID,
			LocationIDs:   c.LocationIDs,
			IsActive:      c.IsActive,
			OrderTypes:    c.OrderTypes,
			AllowStacking: true,
		},
		DiscountType:   c.DiscountType,
		DiscountMethod: c.DiscountMethod,
		DiscountValue:  c.DiscountValue,
		MinOrderValue:  decimal.NewNullDecimal(c.MinOrderValue),
	}
}
