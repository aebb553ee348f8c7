// Package pricing folds matched discounts and checkout fees into an order total
// and derives combo menu savings.
package pricing

import (
	"fmt"

	"grabbi-engine/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AdminFee is charged either as a flat amount or as a percentage of the
// discounted subtotal.
type AdminFee struct {
	Method models.DiscountMethod `json:"method"`
	Value  decimal.Decimal       `json:"value"`
}

type FeeConfig struct {
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	BagFee      decimal.Decimal `json:"bag_fee"`
	AdminFee    AdminFee        `json:"admin_fee"`
}

// Validate rejects negative amounts and admin fee methods other than a fixed
// amount or a percentage. An empty method is charged as a fixed amount.
func (f FeeConfig) Validate() error {
	if f.DeliveryFee.IsNegative() {
		return fmt.Errorf("delivery_fee must not be negative")
	}
	if f.BagFee.IsNegative() {
		return fmt.Errorf("bag_fee must not be negative")
	}
	if f.AdminFee.Value.IsNegative() {
		return fmt.Errorf("admin_fee value must not be negative")
	}
	switch f.AdminFee.Method {
	case "", models.DiscountMethodFixedAmount, models.DiscountMethodPercentage:
		return nil
	default:
		return fmt.Errorf("admin_fee method %q must be fixed_amount or percentage", f.AdminFee.Method)
	}
}

// Input is everything needed to price an order. Discounts are the ones the
// caller chose to stack; Code is applied on top of them when set.
type Input struct {
	Cart      models.CartSnapshot
	Discounts []models.StandardDiscount
	Code      *models.DiscountCode
	Fees      FeeConfig
	OrderType models.OrderType
}

// Line is one applied discount as shown on a receipt.
type Line struct {
	DiscountID   uuid.UUID           `json:"discount_id"`
	Name         string              `json:"name"`
	Code         string              `json:"code,omitempty"`
	DiscountType models.DiscountType `json:"discount_type"`
	Amount       decimal.Decimal     `json:"amount"`
}

type Breakdown struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	Lines              []Line          `json:"lines"`
	DiscountTotal      decimal.Decimal `json:"discount_total"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	DeliveryFeeCharged decimal.Decimal `json:"delivery_fee_charged"`
	FreeDelivery       bool            `json:"free_delivery"`
	BagFee             decimal.Decimal `json:"bag_fee"`
	AdminFee           decimal.Decimal `json:"admin_fee"`
	Total              decimal.Decimal `json:"total"`
}

// ComposeTotal prices the cart. The total is never negative.
func ComposeTotal(in Input) Breakdown {
	subtotal := in.Cart.Subtotal()
	b := Breakdown{
		Subtotal: subtotal.Round(2),
		BagFee:   in.Fees.BagFee.Round(2),
	}

	applied := in.Discounts
	if in.Code != nil {
		applied = append(append([]models.StandardDiscount(nil), in.Discounts...), in.Code.AsDiscount())
	}

	discountTotal := decimal.Zero
	for i := range applied {
		d := &applied[i]
		if !minimumMet(d, subtotal) {
			continue
		}
		if d.DiscountType == models.DiscountTypeFreeDelivery {
			if in.OrderType == models.OrderTypeDelivery {
				b.FreeDelivery = true
				b.Lines = append(b.Lines, lineFor(d, in.Code, in.Fees.DeliveryFee.Round(2)))
			}
			continue
		}
		amount := Effect(d, in.Cart)
		if amount.IsZero() {
			continue
		}
		discountTotal = discountTotal.Add(amount)
		b.Lines = append(b.Lines, lineFor(d, in.Code, amount))
	}
	b.DiscountTotal = discountTotal

	if in.OrderType == models.OrderTypeDelivery {
		b.DeliveryFee = in.Fees.DeliveryFee.Round(2)
		if !b.FreeDelivery {
			b.DeliveryFeeCharged = b.DeliveryFee
		}
	}

	discounted := subtotal.Sub(discountTotal)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	b.AdminFee = adminFee(in.Fees.AdminFee, discounted)

	total := subtotal.Sub(discountTotal).Add(b.DeliveryFeeCharged).Add(b.BagFee).Add(b.AdminFee)
	if total.IsNegative() {
		total = decimal.Zero
	}
	b.Total = total.Round(2)
	return b
}

// Effect is the amount a discount takes off the cart, clamped to the base it
// applies to. Free delivery has no effect on the item total.
func Effect(d *models.StandardDiscount, cart models.CartSnapshot) decimal.Decimal {
	if !d.DiscountValue.Valid || d.DiscountValue.Decimal.IsNegative() {
		return decimal.Zero
	}

	var base decimal.Decimal
	switch d.DiscountType {
	case models.DiscountTypeCart:
		base = cart.Subtotal()
	case models.DiscountTypeProduct:
		for _, l := range cart.Lines {
			if d.References(l.ProductID) {
				base = base.Add(l.LineTotal())
			}
		}
	case models.DiscountTypeCategory:
		for _, l := range cart.Lines {
			if l.CategoryID != nil && d.References(*l.CategoryID) {
				base = base.Add(l.LineTotal())
			}
		}
	default:
		return decimal.Zero
	}
	if !base.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch d.DiscountMethod {
	case models.DiscountMethodPercentage:
		amount = base.Mul(d.DiscountValue.Decimal).Div(hundred)
	case models.DiscountMethodFixedAmount:
		amount = d.DiscountValue.Decimal
	default:
		return decimal.Zero
	}
	if amount.GreaterThan(base) {
		amount = base
	}
	return amount.Round(2)
}

// minimumMet applies min_order_value to cart-wide and free delivery discounts.
func minimumMet(d *models.StandardDiscount, subtotal decimal.Decimal) bool {
	if d.DiscountType != models.DiscountTypeCart && d.DiscountType != models.DiscountTypeFreeDelivery {
		return true
	}
	if !d.MinOrderValue.Valid {
		return true
	}
	return subtotal.GreaterThanOrEqual(d.MinOrderValue.Decimal)
}

func adminFee(fee AdminFee, discounted decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch fee.Method {
	case models.DiscountMethodPercentage:
		amount = discounted.Mul(fee.Value).Div(hundred)
	default:
		amount = fee.Value
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}

func lineFor(d *models.StandardDiscount, code *models.DiscountCode, amount decimal.Decimal) Line {
	l := Line{
		DiscountID:   d.ID,
		Name:         d.Name,
		DiscountType: d.DiscountType,
		Amount:       amount,
	}
	if code != nil && code.ID == d.ID {
		l.Code = code.Code
	}
	return l
}

// SelectStackable picks the discounts to apply together. When every discount
// allows stacking they all apply; otherwise only the single discount worth the
// most to the customer does, first one winning ties.
func SelectStackable(discounts []models.StandardDiscount, cart models.CartSnapshot, orderType models.OrderType, fees FeeConfig) []models.StandardDiscount {
	if len(discounts) == 0 {
		return nil
	}
	stackable := true
	for i := range discounts {
		if !discounts[i].AllowStacking {
			stackable = false
			break
		}
	}
	if stackable {
		return discounts
	}

	subtotal := cart.Subtotal()
	best := -1
	bestValue := decimal.Zero
	for i := range discounts {
		d := &discounts[i]
		if !minimumMet(d, subtotal) {
			continue
		}
		value := Effect(d, cart)
		if d.DiscountType == models.DiscountTypeFreeDelivery && orderType == models.OrderTypeDelivery {
			value = fees.DeliveryFee
		}
		if best < 0 || value.GreaterThan(bestValue) {
			best, bestValue = i, value
		}
	}
	if best < 0 {
		return nil
	}
	return []models.StandardDiscount{discounts[best]}
}
