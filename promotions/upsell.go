package promotions

import (
	"context"
	"strings"

	"grabbi-engine/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UpsellQuery struct {
	BrandID    uuid.UUID
	LocationID uuid.UUID
	// OrderType may be empty before the customer has chosen pickup or delivery.
	OrderType models.OrderType
	Cart      models.CartSnapshot
	CartTotal decimal.Decimal
}

// UpsellOffer is the selected upsell and the products to show, with products
// already in the cart removed.
type UpsellOffer struct {
	Upsell     models.Upsell `json:"upsell"`
	ProductIDs []uuid.UUID   `json:"product_ids"`
}

type cartIndex struct {
	products   map[uuid.UUID]bool
	categories map[uuid.UUID]bool
	combos     map[uuid.UUID]bool
	tags       map[string]bool
	total      decimal.Decimal
}

func indexCart(cart models.CartSnapshot, total decimal.Decimal) cartIndex {
	tags := make(map[string]bool)
	for t := range cart.Tags() {
		tags[strings.ToLower(t)] = true
	}
	return cartIndex{
		products:   cart.ProductIDs(),
		categories: cart.CategoryIDs(),
		combos:     cart.ComboIDs(),
		tags:       tags,
		total:      total,
	}
}

// SelectUpsell returns the first upsell, in store order, that is active, is
// triggered by the cart and still has something to offer after suppression.
// Showing an offer counts one view. A nil offer means nothing applies.
func (m *Matcher) SelectUpsell(ctx context.Context, q UpsellQuery) (*UpsellOffer, error) {
	candidates, err := m.Rules.ListActiveUpsells(ctx, q.BrandID, q.LocationID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	cart := indexCart(q.Cart, q.CartTotal)

	for i := range candidates {
		u := &candidates[i]
		if !m.eligible(&u.AvailabilityRule, q.BrandID, q.LocationID) {
			continue
		}
		if !m.activeAt(&u.AvailabilityRule, q.OrderType, now) {
			continue
		}
		if !triggered(u.TriggerConditions, cart) {
			continue
		}

		offered, err := m.resolveOffer(ctx, u)
		if err != nil {
			return nil, err
		}
		remaining := suppress(offered, cart.products)
		if len(remaining) == 0 {
			continue
		}

		if err := m.Rules.IncrementUpsellCounter(ctx, u.ID, models.CounterViews); err != nil {
			return nil, err
		}
		u.Views++
		return &UpsellOffer{Upsell: *u, ProductIDs: remaining}, nil
	}
	return nil, nil
}

// RecordConversion counts an accepted upsell offer. It is never called by selection.
func (m *Matcher) RecordConversion(ctx context.Context, upsellID uuid.UUID) error {
	return m.Rules.IncrementUpsellCounter(ctx, upsellID, models.CounterConversions)
}

type UpsellStats struct {
	Views       int64 `json:"views"`
	Conversions int64 `json:"conversions"`
}

func (m *Matcher) UpsellStats(ctx context.Context, upsellID uuid.UUID) (UpsellStats, error) {
	views, conversions, err := m.Rules.UpsellCounters(ctx, upsellID)
	if err != nil {
		return UpsellStats{}, err
	}
	return UpsellStats{Views: views, Conversions: conversions}, nil
}

// triggered applies OR semantics over the conditions. Conditions whose
// reference cannot be parsed never fire.
func triggered(conditions []models.TriggerCondition, cart cartIndex) bool {
	for _, c := range conditions {
		ref := strings.TrimSpace(c.ReferenceID)
		switch c.Type {
		case models.TriggerCartValueOver:
			threshold, err := decimal.NewFromString(ref)
			if err == nil && cart.total.GreaterThan(threshold) {
				return true
			}
		case models.TriggerProductInCart:
			if id, err := uuid.Parse(ref); err == nil && cart.products[id] {
				return true
			}
		case models.TriggerCategoryInCart:
			if id, err := uuid.Parse(ref); err == nil && cart.categories[id] {
				return true
			}
		case models.TriggerComboInCart:
			if id, err := uuid.Parse(ref); err == nil && cart.combos[id] {
				return true
			}
		case models.TriggerProductTagInCart:
			if ref != "" && cart.tags[strings.ToLower(ref)] {
				return true
			}
		}
	}
	return false
}

func (m *Matcher) resolveOffer(ctx context.Context, u *models.Upsell) ([]uuid.UUID, error) {
	switch u.OfferType {
	case models.OfferTypeProduct:
		return u.OfferProductIDs, nil
	case models.OfferTypeCategory:
		if len(u.OfferCategoryIDs) == 0 {
			return nil, nil
		}
		return m.Catalog.ProductIDsInCategories(ctx, u.OfferCategoryIDs)
	}
	return nil, nil
}

// suppress drops offered products that are already in the cart, keeping order
// and removing duplicates.
func suppress(offered []uuid.UUID, inCart map[uuid.UUID]bool) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(offered))
	out := make([]uuid.UUID, 0, len(offered))
	for _, id := range offered {
		if inCart[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
