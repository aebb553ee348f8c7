package handlers

import (
	"net/http"
	"time"

	"grabbi-engine/models"
	"grabbi-engine/pricing"
	"grabbi-engine/promotions"
	"grabbi-engine/store"
	"grabbi-engine/timeslots"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	Store   *store.Store
	Catalog *store.Catalog
	Matcher *promotions.Matcher
	Slots   *timeslots.Calculator
}

// GetSlots returns the ASAP labels and fulfillment times of a location.
// The optional date query is YYYY-MM-DD in the operating timezone.
func (h *LocationHandler) GetSlots(c *gin.Context) {
	id, ok := paramUUID(c, "id", "location")
	if !ok {
		return
	}

	zone := h.Matcher.Predicate.Location()
	forDate := h.Matcher.Now().In(zone)
	if d := c.Query("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, zone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		forDate = parsed
	}

	loc, err := h.Store.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Location")
		return
	}

	c.JSON(http.StatusOK, h.Slots.Compute(loc, forDate))
}

// GetDiscounts lists the standard discounts active at a location for an order
// type, optionally checked against a chosen fulfillment time (RFC 3339).
func (h *LocationHandler) GetDiscounts(c *gin.Context) {
	id, ok := paramUUID(c, "id", "location")
	if !ok {
		return
	}

	orderType := models.OrderType(c.Query("order_type"))
	if !orderType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_type must be pickup or delivery"})
		return
	}

	var fulfillmentAt *time.Time
	if v := c.Query("fulfillment_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fulfillment_at must be an RFC 3339 timestamp"})
			return
		}
		fulfillmentAt = &t
	}

	loc, err := h.Store.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Location")
		return
	}

	discounts, err := h.Matcher.ActiveDiscounts(c.Request.Context(), promotions.DiscountQuery{
		BrandID:       loc.BrandID,
		LocationID:    loc.ID,
		OrderType:     orderType,
		FulfillmentAt: fulfillmentAt,
	})
	if err != nil {
		respondStoreError(c, err, "Location")
		return
	}

	c.JSON(http.StatusOK, discounts)
}

// GetCombos lists combos offered now, with normal price and savings filled in.
func (h *LocationHandler) GetCombos(c *gin.Context) {
	id, ok := paramUUID(c, "id", "location")
	if !ok {
		return
	}

	orderType := models.OrderType(c.Query("order_type"))
	if orderType != "" && !orderType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_type must be pickup or delivery"})
		return
	}

	combos, err := h.Matcher.ActiveCombos(c.Request.Context(), id, orderType)
	if err != nil {
		respondStoreError(c, err, "Location")
		return
	}

	prices, err := pricing.LoadComboPrices(c.Request.Context(), h.Catalog, combos)
	if err != nil {
		respondStoreError(c, err, "Product")
		return
	}
	for i := range combos {
		pricing.PriceCombo(&combos[i], prices)
	}

	c.JSON(http.StatusOK, combos)
}
