package promotions

import (
	"context"
	"errors"
	"strings"
	"sync"

	"grabbi-engine/models"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store down")

type fakeRules struct {
	mu          sync.Mutex
	discounts   []models.StandardDiscount
	combos      []models.ComboMenu
	upsells     []models.Upsell
	codes       []models.DiscountCode
	views       map[uuid.UUID]int64
	conversions map[uuid.UUID]int64
	redeemed    map[uuid.UUID]int
	listErr     error
	incrErr     error
}

func newFakeRules() *fakeRules {
	return &fakeRules{
		views:       map[uuid.UUID]int64{},
		conversions: map[uuid.UUID]int64{},
		redeemed:    map[uuid.UUID]int{},
	}
}

func (f *fakeRules) ListActiveStandardDiscounts(ctx context.Context, brandID, locationID uuid.UUID) ([]models.StandardDiscount, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.StandardDiscount(nil), f.discounts...), nil
}

func (f *fakeRules) ListActiveCombos(ctx context.Context, locationID uuid.UUID) ([]models.ComboMenu, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.ComboMenu(nil), f.combos...), nil
}

func (f *fakeRules) ListActiveUpsells(ctx context.Context, brandID, locationID uuid.UUID) ([]models.Upsell, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Upsell(nil), f.upsells...), nil
}

func (f *fakeRules) FindDiscountCode(ctx context.Context, brandID uuid.UUID, code string) (*models.DiscountCode, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for i := range f.codes {
		if f.codes[i].BrandID == brandID && strings.EqualFold(f.codes[i].Code, code) {
			c := f.codes[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRules) IncrementUpsellCounter(ctx context.Context, id uuid.UUID, counter models.UpsellCounter) error {
	if f.incrErr != nil {
		return f.incrErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if counter == models.CounterViews {
		f.views[id]++
	} else {
		f.conversions[id]++
	}
	return nil
}

func (f *fakeRules) UpsellCounters(ctx context.Context, id uuid.UUID) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views[id], f.conversions[id], nil
}

func (f *fakeRules) RedeemDiscountCode(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redeemed[id]++
	return nil
}

type fakeCatalog struct {
	byCategory map[uuid.UUID][]uuid.UUID
	err        error
}

func (c *fakeCatalog) ProductIDsInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	if c.err != nil {
		return nil, c.err
	}
	var ids []uuid.UUID
	for _, cat := range categoryIDs {
		ids = append(ids, c.byCategory[cat]...)
	}
	return ids, nil
}
