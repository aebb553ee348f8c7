package pricing

import (
	"context"

	"grabbi-engine/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceBook looks up catalog products by id. Unknown ids are left out of the result.
type PriceBook interface {
	Products(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// LoadComboPrices fetches every product referenced by the combos in one call.
func LoadComboPrices(ctx context.Context, book PriceBook, combos []models.ComboMenu) (map[uuid.UUID]models.Product, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, c := range combos {
		for _, g := range c.ProductGroups {
			for _, id := range g.ProductIDs {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]models.Product{}, nil
	}
	return book.Products(ctx, ids)
}

// NormalPrice is what the combo's required selections would cost bought
// separately: the dearest product of each group times its minimum selection.
// It reports false when a group with a minimum has no priced product.
func NormalPrice(combo *models.ComboMenu, prices map[uuid.UUID]models.Product, orderType models.OrderType) (decimal.Decimal, bool) {
	total := decimal.Zero
	for _, g := range combo.ProductGroups {
		if g.MinSelection <= 0 {
			continue
		}
		found := false
		dearest := decimal.Zero
		for _, id := range g.ProductIDs {
			p, ok := prices[id]
			if !ok {
				continue
			}
			price := p.PriceFor(orderType)
			if !found || price.GreaterThan(dearest) {
				dearest = price
				found = true
			}
		}
		if !found {
			return decimal.Zero, false
		}
		total = total.Add(dearest.Mul(decimal.NewFromInt(int64(g.MinSelection))))
	}
	return total.Round(2), true
}

// ComboSavings returns the normal price and the saving against the combo price
// for one order type. ok is false when the combo has no price for that order
// type or the normal price cannot be determined.
func ComboSavings(combo *models.ComboMenu, prices map[uuid.UUID]models.Product, orderType models.OrderType) (normal, savings decimal.Decimal, ok bool) {
	price, priced := combo.PriceFor(orderType)
	if !priced {
		return decimal.Zero, decimal.Zero, false
	}
	normal, ok = NormalPrice(combo, prices, orderType)
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	return normal, normal.Sub(price).Round(2), true
}

// PriceCombo fills the derived normal price and saving fields of a combo for
// both order types.
func PriceCombo(combo *models.ComboMenu, prices map[uuid.UUID]models.Product) {
	combo.CalculatedNormalPricePickup = decimal.NullDecimal{}
	combo.PriceDifferencePickup = decimal.NullDecimal{}
	combo.CalculatedNormalPriceDelivery = decimal.NullDecimal{}
	combo.PriceDifferenceDelivery = decimal.NullDecimal{}

	if normal, savings, ok := ComboSavings(combo, prices, models.OrderTypePickup); ok {
		combo.CalculatedNormalPricePickup = decimal.NewNullDecimal(normal)
		combo.PriceDifferencePickup = decimal.NewNullDecimal(savings)
	}
	if normal, savings, ok := ComboSavings(combo, prices, models.OrderTypeDelivery); ok {
		combo.CalculatedNormalPriceDelivery = decimal.NewNullDecimal(normal)
		combo.PriceDifferenceDelivery = decimal.NewNullDecimal(savings)
	}
}
