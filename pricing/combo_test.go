package pricing

import (
	"context"
	"testing"

	"grabbi-engine/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubPriceBook struct {
	products map[uuid.UUID]models.Product
	asked    []uuid.UUID
}

func (s *stubPriceBook) Products(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	s.asked = append(s.asked, ids...)
	out := make(map[uuid.UUID]models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func product(id uuid.UUID, price string) models.Product {
	return models.Product{ID: id, Price: dec(price)}
}

func TestNormalPriceUsesDearestTimesMinimum(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	combo := &models.ComboMenu{
		ProductGroups: []models.ProductGroup{{GroupName: "Mains", ProductIDs: []uuid.UUID{a, b}, MinSelection: 2, MaxSelection: 2}},
		PickupPrice:   decimal.NewNullDecimal(dec("110")),
	}
	prices := map[uuid.UUID]models.Product{a: product(a, "50"), b: product(b, "70")}

	normal, savings, ok := ComboSavings(combo, prices, models.OrderTypePickup)
	if !ok {
		t.Fatal("expected savings to be computed")
	}
	assertAmount(t, "normal", normal, "140")
	assertAmount(t, "savings", savings, "30")
}

func TestNormalPriceDeliveryPrices(t *testing.T) {
	burger, fries, drink := uuid.New(), uuid.New(), uuid.New()
	burgerProduct := product(burger, "9")
	burgerProduct.DeliveryPrice = decimal.NewNullDecimal(dec("10.50"))

	combo := &models.ComboMenu{
		ProductGroups: []models.ProductGroup{
			{GroupName: "Main", ProductIDs: []uuid.UUID{burger}, MinSelection: 1},
			{GroupName: "Side", ProductIDs: []uuid.UUID{fries}, MinSelection: 1},
			{GroupName: "Extras", ProductIDs: []uuid.UUID{drink}, MinSelection: 0},
		},
	}
	prices := map[uuid.UUID]models.Product{
		burger: burgerProduct,
		fries:  product(fries, "3"),
		drink:  product(drink, "2"),
	}

	pickup, _ := NormalPrice(combo, prices, models.OrderTypePickup)
	delivery, _ := NormalPrice(combo, prices, models.OrderTypeDelivery)
	assertAmount(t, "pickup", pickup, "12")
	assertAmount(t, "delivery", delivery, "13.50")
}

func TestNormalPriceMissingProducts(t *testing.T) {
	combo := &models.ComboMenu{
		ProductGroups: []models.ProductGroup{{GroupName: "Main", ProductIDs: []uuid.UUID{uuid.New()}, MinSelection: 1}},
		PickupPrice:   decimal.NewNullDecimal(dec("10")),
	}
	if _, _, ok := ComboSavings(combo, map[uuid.UUID]models.Product{}, models.OrderTypePickup); ok {
		t.Error("expected no savings when group products are unknown")
	}
}

func TestPriceCombo(t *testing.T) {
	a := uuid.New()
	combo := &models.ComboMenu{
		ProductGroups: []models.ProductGroup{{GroupName: "Main", ProductIDs: []uuid.UUID{a}, MinSelection: 1}},
		PickupPrice:   decimal.NewNullDecimal(dec("8")),
	}
	prices := map[uuid.UUID]models.Product{a: product(a, "10")}

	PriceCombo(combo, prices)

	if !combo.CalculatedNormalPricePickup.Valid || !combo.PriceDifferencePickup.Valid {
		t.Fatal("expected pickup fields to be set")
	}
	assertAmount(t, "pickup saving", combo.PriceDifferencePickup.Decimal, "2")
	if combo.CalculatedNormalPriceDelivery.Valid || combo.PriceDifferenceDelivery.Valid {
		t.Error("expected delivery fields to stay empty without a delivery price")
	}
}

func TestLoadComboPricesDedupes(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	book := &stubPriceBook{products: map[uuid.UUID]models.Product{a: product(a, "1"), b: product(b, "2")}}
	combos := []models.ComboMenu{
		{ProductGroups: []models.ProductGroup{{ProductIDs: []uuid.UUID{a, b}}}},
		{ProductGroups: []models.ProductGroup{{ProductIDs: []uuid.UUID{b}}}},
	}

	prices, err := LoadComboPrices(context.Background(), book, combos)
	if err != nil {
		t.Fatal(err)
	}
	if len(book.asked) != 2 {
		t.Errorf("expected two distinct ids requested, got %d", len(book.asked))
	}
	if len(prices) != 2 {
		t.Errorf("expected two prices, got %d", len(prices))
	}
}
