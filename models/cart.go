package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one line of a customer's cart as supplied by the cart collaborator.
// UnitPrice already includes toppings.
type CartLine struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	ComboID    *uuid.UUID      `json:"combo_id,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartSnapshot struct {
	Lines []CartLine `json:"lines" binding:"dive"`
}

func (c CartSnapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (c CartSnapshot) ProductIDs() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(c.Lines))
	for _, l := range c.Lines {
		ids[l.ProductID] = true
	}
	return ids
}

func (c CartSnapshot) CategoryIDs() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool)
	for _, l := range c.Lines {
		if l.CategoryID != nil {
			ids[*l.CategoryID] = true
		}
	}
	return ids
}

func (c CartSnapshot) ComboIDs() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool)
	for _, l := range c.Lines {
		if l.ComboID != nil {
			ids[*l.ComboID] = true
		}
	}
	return ids
}

func (c CartSnapshot) Tags() map[string]bool {
	tags := make(map[string]bool)
	for _, l := range c.Lines {
		for _, t := range l.Tags {
			tags[t] = true
		}
	}
	return tags
}
