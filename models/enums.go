package models

import "time"

type OrderType string

const (
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	return t == OrderTypePickup || t == OrderTypeDelivery
}

// BusynessFactor extends preparation time while a location is under load.
type BusynessFactor string

const (
	BusynessNormal BusynessFactor = "normal"
	BusynessMedium BusynessFactor = "medium"
	BusynessHigh   BusynessFactor = "high"
)

// BonusMinutes returns the preparation time added for the factor.
func (b BusynessFactor) BonusMinutes() int {
	switch b {
	case BusynessMedium:
		return 10
	case BusynessHigh:
		return 20
	default:
		return 0
	}
}

type DiscountType string

const (
	DiscountTypeProduct      DiscountType = "product"
	DiscountTypeCategory     DiscountType = "category"
	DiscountTypeCart         DiscountType = "cart"
	DiscountTypeFreeDelivery DiscountType = "free_delivery"
)

type DiscountMethod string

const (
	DiscountMethodPercentage  DiscountMethod = "percentage"
	DiscountMethodFixedAmount DiscountMethod = "fixed_amount"
)

// TimeSlotValidationType selects which instant a discount's day/time window is checked against.
type TimeSlotValidationType string

const (
	ValidateOrderTime  TimeSlotValidationType = "orderTime"
	ValidatePickupTime TimeSlotValidationType = "pickupTime"
)

type TriggerType string

const (
	TriggerProductInCart    TriggerType = "product_in_cart"
	TriggerCategoryInCart   TriggerType = "category_in_cart"
	TriggerCartValueOver    TriggerType = "cart_value_over"
	TriggerComboInCart      TriggerType = "combo_in_cart"
	TriggerProductTagInCart TriggerType = "product_tag_in_cart"
)

type OfferType string

const (
	OfferTypeProduct  OfferType = "product"
	OfferTypeCategory OfferType = "category"
)

type UpsellDiscountType string

const (
	UpsellDiscountNone        UpsellDiscountType = "none"
	UpsellDiscountPercentage  UpsellDiscountType = "percentage"
	UpsellDiscountFixedAmount UpsellDiscountType = "fixed_amount"
)

// UpsellCounter names one of the monotonic counters kept per upsell.
type UpsellCounter string

const (
	CounterViews       UpsellCounter = "views"
	CounterConversions UpsellCounter = "conversions"
)

func (c UpsellCounter) Valid() bool {
	return c == CounterViews || c == CounterConversions
}

// WeekdayName returns the lower-case english name used in ActiveDays.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

var weekdayNames = [...]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}
