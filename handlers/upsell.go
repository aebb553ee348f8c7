package handlers

import (
	"net/http"

	"grabbi-engine/models"
	"grabbi-engine/promotions"
	"grabbi-engine/store"
	"grabbi-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UpsellHandler struct {
	Store   *store.Store
	Catalog *store.Catalog
	Matcher *promotions.Matcher
}

type SelectUpsellRequest struct {
	LocationID uuid.UUID           `json:"location_id" binding:"required"`
	OrderType  models.OrderType    `json:"order_type" binding:"ordertype"`
	Cart       models.CartSnapshot `json:"cart"`
}

// OfferedProduct is a product of an upsell offer with the upsell's own discount applied.
type OfferedProduct struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	OfferPrice decimal.Decimal `json:"offer_price"`
}

type SelectUpsellResponse struct {
	Offer    *promotions.UpsellOffer `json:"offer"`
	Products []OfferedProduct        `json:"products"`
}

// Select picks the upsell to show for a cart. No matching upsell is a 200 with a null offer.
func (h *UpsellHandler) Select(c *gin.Context) {
	var req SelectUpsellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	ctx := c.Request.Context()

	loc, err := h.Store.GetLocation(ctx, req.LocationID)
	if err != nil {
		respondStoreError(c, err, "Location")
		return
	}

	cart, err := h.Catalog.EnrichCart(ctx, req.Cart)
	if err != nil {
		respondStoreError(c, err, "Product")
		return
	}

	offer, err := h.Matcher.SelectUpsell(ctx, promotions.UpsellQuery{
		BrandID:    loc.BrandID,
		LocationID: loc.ID,
		OrderType:  req.OrderType,
		Cart:       cart,
		CartTotal:  cart.Subtotal(),
	})
	if err != nil {
		respondStoreError(c, err, "Upsell")
		return
	}
	if offer == nil {
		c.JSON(http.StatusOK, SelectUpsellResponse{Products: []OfferedProduct{}})
		return
	}

	products, err := h.Catalog.Products(ctx, offer.ProductIDs)
	if err != nil {
		respondStoreError(c, err, "Product")
		return
	}
	priceType := req.OrderType
	if priceType == "" {
		priceType = models.OrderTypePickup
	}

	resp := SelectUpsellResponse{Offer: offer, Products: make([]OfferedProduct, 0, len(offer.ProductIDs))}
	for _, id := range offer.ProductIDs {
		p, ok := products[id]
		if !ok {
			continue
		}
		price := p.PriceFor(priceType)
		resp.Products = append(resp.Products, OfferedProduct{
			ID:         p.ID,
			Name:       p.Name,
			Price:      price,
			OfferPrice: offer.Upsell.OfferPrice(price),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// RecordConversion counts an accepted offer.
func (h *UpsellHandler) RecordConversion(c *gin.Context) {
	id, ok := paramUUID(c, "id", "upsell")
	if !ok {
		return
	}

	if err := h.Matcher.RecordConversion(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Upsell")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversion recorded"})
}

func (h *UpsellHandler) GetStats(c *gin.Context) {
	id, ok := paramUUID(c, "id", "upsell")
	if !ok {
		return
	}

	stats, err := h.Matcher.UpsellStats(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Upsell")
		return
	}

	c.JSON(http.StatusOK, stats)
}
