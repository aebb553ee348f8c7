package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductGroup is one "choose N of these" slot of a combo. MaxSelection 0 means unlimited.
type ProductGroup struct {
	GroupName    string      `json:"group_name"`
	ProductIDs   []uuid.UUID `json:"product_ids"`
	MinSelection int         `json:"min_selection"`
	MaxSelection int         `json:"max_selection"`
}

type ComboMenu struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name             string    `gorm:"not null" json:"name"`
	AvailabilityRule `gorm:"embedded"`
	ProductGroups    []ProductGroup      `gorm:"serializer:json" json:"product_groups"`
	PickupPrice      decimal.NullDecimal `json:"pickup_price"`
	DeliveryPrice    decimal.NullDecimal `json:"delivery_price"`

	CalculatedNormalPricePickup   decimal.NullDecimal `json:"calculated_normal_price_pickup"`
	CalculatedNormalPriceDelivery decimal.NullDecimal `json:"calculated_normal_price_delivery"`
	PriceDifferencePickup         decimal.NullDecimal `json:"price_difference_pickup"`
	PriceDifferenceDelivery       decimal.NullDecimal `json:"price_difference_delivery"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *ComboMenu) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PriceFor returns the combo price for an order type, if one is set.
func (c *ComboMenu) PriceFor(t OrderType) (decimal.Decimal, bool) {
	switch t {
	case OrderTypePickup:
		return c.PickupPrice.Decimal, c.PickupPrice.Valid
	case OrderTypeDelivery:
		return c.DeliveryPrice.Decimal, c.DeliveryPrice.Valid
	}
	return decimal.Zero, false
}
