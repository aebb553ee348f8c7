// Package store reads rules, locations and catalog data from the database and
// keeps the upsell and discount code counters.
package store

import (
	"context"
	"errors"
	"strings"

	"grabbi-engine/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Store is the gorm-backed rule store.
type Store struct {
	DB       *gorm.DB
	Counters Counters
}

// New returns a store. Upsell counters live in the database unless counters is set.
func New(db *gorm.DB, counters Counters) *Store {
	if counters == nil {
		counters = NewDBCounters(db, nil)
	}
	return &Store{DB: db, Counters: counters}
}

func (s *Store) GetLocation(ctx context.Context, id uuid.UUID) (loc *models.Location, err error) {
	const op = "store.GetLocation"
	ctx, span := startSpan(ctx, op, attribute.String("location.id", id.String()))
	defer func() { endSpan(span, err) }()

	var location models.Location
	if err := s.DB.WithContext(ctx).Preload("OperatingHours").First(&location, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(op, id.String())
		}
		return nil, unavailable(op, id.String(), err)
	}
	return &location, nil
}

// ListActiveStandardDiscounts returns the brand's active discounts that list
// the location, in creation order.
func (s *Store) ListActiveStandardDiscounts(ctx context.Context, brandID, locationID uuid.UUID) (out []models.StandardDiscount, err error) {
	const op = "store.ListActiveStandardDiscounts"
	ctx, span := startSpan(ctx, op, attribute.String("brand.id", brandID.String()), attribute.String("location.id", locationID.String()))
	defer func() { endSpan(span, err) }()

	var rows []models.StandardDiscount
	if err := s.DB.WithContext(ctx).
		Where("brand_id = ? AND is_active = ?", brandID, true).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, unavailable(op, locationID.String(), err)
	}

	out = make([]models.StandardDiscount, 0, len(rows))
	for _, d := range rows {
		if d.AppliesToLocation(locationID) {
			out = append(out, d)
		}
	}
	span.SetAttributes(attribute.Int("rules.count", len(out)))
	return out, nil
}

func (s *Store) ListActiveCombos(ctx context.Context, locationID uuid.UUID) (out []models.ComboMenu, err error) {
	const op = "store.ListActiveCombos"
	ctx, span := startSpan(ctx, op, attribute.String("location.id", locationID.String()))
	defer func() { endSpan(span, err) }()

	var rows []models.ComboMenu
	if err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, unavailable(op, locationID.String(), err)
	}

	out = make([]models.ComboMenu, 0, len(rows))
	for _, c := range rows {
		if c.AppliesToLocation(locationID) {
			out = append(out, c)
		}
	}
	span.SetAttributes(attribute.Int("rules.count", len(out)))
	return out, nil
}

// ListActiveUpsells returns candidates ordered by created_at then id, which
// fixes the first-match order used by upsell selection.
func (s *Store) ListActiveUpsells(ctx context.Context, brandID, locationID uuid.UUID) (out []models.Upsell, err error) {
	const op = "store.ListActiveUpsells"
	ctx, span := startSpan(ctx, op, attribute.String("brand.id", brandID.String()), attribute.String("location.id", locationID.String()))
	defer func() { endSpan(span, err) }()

	var rows []models.Upsell
	if err := s.DB.WithContext(ctx).
		Where("brand_id = ? AND is_active = ?", brandID, true).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, unavailable(op, locationID.String(), err)
	}

	out = make([]models.Upsell, 0, len(rows))
	for _, u := range rows {
		if u.AppliesToLocation(locationID) {
			out = append(out, u)
		}
	}
	span.SetAttributes(attribute.Int("rules.count", len(out)))
	return out, nil
}

// FindDiscountCode matches codes case-insensitively. A missing code is (nil, nil).
func (s *Store) FindDiscountCode(ctx context.Context, brandID uuid.UUID, code string) (dc *models.DiscountCode, err error) {
	const op = "store.FindDiscountCode"
	ctx, span := startSpan(ctx, op, attribute.String("brand.id", brandID.String()))
	defer func() { endSpan(span, err) }()

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	var found models.DiscountCode
	if err := s.DB.WithContext(ctx).
		Where("brand_id = ? AND UPPER(code) = ?", brandID, strings.ToUpper(code)).
		First(&found).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, unavailable(op, code, err)
	}
	return &found, nil
}

// RedeemDiscountCode counts one use of a code in a single conditional update,
// so concurrent checkouts cannot exceed the usage limit.
func (s *Store) RedeemDiscountCode(ctx context.Context, id uuid.UUID) (err error) {
	const op = "store.RedeemDiscountCode"
	ctx, span := startSpan(ctx, op, attribute.String("discount_code.id", id.String()))
	defer func() { endSpan(span, err) }()

	res := s.DB.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return unavailable(op, id.String(), res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.DiscountCode{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return unavailable(op, id.String(), err)
	}
	if count == 0 {
		return notFound(op, id.String())
	}
	return &Error{Op: op, ID: id.String(), Err: ErrLimitReached}
}

func (s *Store) IncrementUpsellCounter(ctx context.Context, id uuid.UUID, counter models.UpsellCounter) (err error) {
	const op = "store.IncrementUpsellCounter"
	ctx, span := startSpan(ctx, op, attribute.String("upsell.id", id.String()), attribute.String("counter", string(counter)))
	defer func() { endSpan(span, err) }()

	if !counter.Valid() {
		return &Error{Op: op, ID: id.String(), Err: errUnknownCounter}
	}
	if err := s.checkUpsell(ctx, op, id); err != nil {
		return err
	}
	return s.Counters.Increment(ctx, id, counter)
}

func (s *Store) UpsellCounters(ctx context.Context, id uuid.UUID) (views, conversions int64, err error) {
	const op = "store.UpsellCounters"
	ctx, span := startSpan(ctx, op, attribute.String("upsell.id", id.String()))
	defer func() { endSpan(span, err) }()

	if err := s.checkUpsell(ctx, op, id); err != nil {
		return 0, 0, err
	}
	return s.Counters.Get(ctx, id)
}

// checkUpsell reports ErrNotFound for an unknown upsell when the counters live
// outside the upsells table. The database counters find out on their own.
func (s *Store) checkUpsell(ctx context.Context, op string, id uuid.UUID) error {
	if _, ok := s.Counters.(*DBCounters); ok {
		return nil
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Upsell{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return unavailable(op, id.String(), err)
	}
	if count == 0 {
		return notFound(op, id.String())
	}
	return nil
}
