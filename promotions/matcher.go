// Package promotions selects the discounts, combo menus and upsell offers that
// are valid for a brand, location and cart at a given moment.
package promotions

import (
	"context"
	"time"

	"grabbi-engine/availability"
	"grabbi-engine/models"

	"github.com/google/uuid"
)

// RuleStore is the read/counter surface of the external rule store. List
// methods return rules that are active for the brand/location; errors are
// store failures and must not be read as "no rules".
type RuleStore interface {
	ListActiveStandardDiscounts(ctx context.Context, brandID, locationID uuid.UUID) ([]models.StandardDiscount, error)
	ListActiveCombos(ctx context.Context, locationID uuid.UUID) ([]models.ComboMenu, error)
	ListActiveUpsells(ctx context.Context, brandID, locationID uuid.UUID) ([]models.Upsell, error)
	// FindDiscountCode returns nil without error when the brand has no such code.
	FindDiscountCode(ctx context.Context, brandID uuid.UUID, code string) (*models.DiscountCode, error)
	IncrementUpsellCounter(ctx context.Context, id uuid.UUID, counter models.UpsellCounter) error
	UpsellCounters(ctx context.Context, id uuid.UUID) (views, conversions int64, err error)
	RedeemDiscountCode(ctx context.Context, id uuid.UUID) error
}

// Catalog resolves category-based offers into products.
type Catalog interface {
	ProductIDsInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error)
}

type Matcher struct {
	Rules     RuleStore
	Catalog   Catalog
	Predicate availability.Predicate
	Now       func() time.Time
}

func NewMatcher(rules RuleStore, catalog Catalog, predicate availability.Predicate) *Matcher {
	return &Matcher{
		Rules:     rules,
		Catalog:   catalog,
		Predicate: predicate,
		Now:       time.Now,
	}
}

func (m *Matcher) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

type DiscountQuery struct {
	BrandID    uuid.UUID
	LocationID uuid.UUID
	OrderType  models.OrderType
	// FulfillmentAt is the customer's chosen pickup/delivery time, if known.
	FulfillmentAt *time.Time
}

// ActiveDiscounts returns every standard discount active for the query. The
// result is unordered and not de-stacked; see pricing.SelectStackable.
func (m *Matcher) ActiveDiscounts(ctx context.Context, q DiscountQuery) ([]models.StandardDiscount, error) {
	candidates, err := m.Rules.ListActiveStandardDiscounts(ctx, q.BrandID, q.LocationID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	active := make([]models.StandardDiscount, 0, len(candidates))
	for i := range candidates {
		d := &candidates[i]
		if !m.eligible(&d.AvailabilityRule, q.BrandID, q.LocationID) {
			continue
		}
		at := availability.EvaluationInstant(d.ValidationType, now, q.FulfillmentAt)
		if m.Predicate.IsActiveNow(&d.AvailabilityRule, q.OrderType, at) {
			active = append(active, *d)
		}
	}
	return active, nil
}

// ActiveCombos returns the combo menus currently offered at a location. Combos
// are always checked at order time. An empty orderType accepts any order type
// the combo lists.
func (m *Matcher) ActiveCombos(ctx context.Context, locationID uuid.UUID, orderType models.OrderType) ([]models.ComboMenu, error) {
	candidates, err := m.Rules.ListActiveCombos(ctx, locationID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	active := make([]models.ComboMenu, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !c.IsActive || !c.AppliesToLocation(locationID) {
			continue
		}
		if m.activeAt(&c.AvailabilityRule, orderType, now) {
			active = append(active, *c)
		}
	}
	return active, nil
}

func (m *Matcher) eligible(rule *models.AvailabilityRule, brandID, locationID uuid.UUID) bool {
	return rule.IsActive && rule.BrandID == brandID && rule.AppliesToLocation(locationID)
}

func (m *Matcher) activeAt(rule *models.AvailabilityRule, orderType models.OrderType, at time.Time) bool {
	if orderType == "" {
		return m.Predicate.IsActiveForAny(rule, at)
	}
	return m.Predicate.IsActiveNow(rule, orderType, at)
}
