package store

import (
	"context"

	"grabbi-engine/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Catalog answers the product lookups needed for category offers, combo
// pricing and cart enrichment.
type Catalog struct {
	DB *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{DB: db}
}

// ProductIDsInCategories returns product ids in creation order.
func (c *Catalog) ProductIDsInCategories(ctx context.Context, categoryIDs []uuid.UUID) (ids []uuid.UUID, err error) {
	const op = "store.Catalog.ProductIDsInCategories"
	ctx, span := startSpan(ctx, op, attribute.Int("categories.count", len(categoryIDs)))
	defer func() { endSpan(span, err) }()

	if len(categoryIDs) == 0 {
		return nil, nil
	}
	if err := c.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id IN ?", categoryIDs).
		Order("created_at, id").
		Pluck("id", &ids).Error; err != nil {
		return nil, unavailable(op, "", err)
	}
	return ids, nil
}

// Products returns the requested products keyed by id. Unknown ids are skipped.
func (c *Catalog) Products(ctx context.Context, ids []uuid.UUID) (out map[uuid.UUID]models.Product, err error) {
	const op = "store.Catalog.Products"
	ctx, span := startSpan(ctx, op, attribute.Int("products.count", len(ids)))
	defer func() { endSpan(span, err) }()

	out = make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := c.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, unavailable(op, "", err)
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// EnrichCart fills category ids and tags the caller left out, using the
// catalog. Lines for unknown products are left unchanged.
func (c *Catalog) EnrichCart(ctx context.Context, cart models.CartSnapshot) (models.CartSnapshot, error) {
	var missing []uuid.UUID
	for _, l := range cart.Lines {
		if l.CategoryID == nil || len(l.Tags) == 0 {
			missing = append(missing, l.ProductID)
		}
	}
	if len(missing) == 0 {
		return cart, nil
	}

	products, err := c.Products(ctx, missing)
	if err != nil {
		return cart, err
	}

	out := models.CartSnapshot{Lines: make([]models.CartLine, len(cart.Lines))}
	for i, l := range cart.Lines {
		if p, ok := products[l.ProductID]; ok {
			if l.CategoryID == nil {
				categoryID := p.CategoryID
				l.CategoryID = &categoryID
			}
			if len(l.Tags) == 0 {
				l.Tags = p.Tags
			}
		}
		out.Lines[i] = l
	}
	return out, nil
}
