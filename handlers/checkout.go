package handlers

import (
	"net/http"
	"strings"
	"time"

	"grabbi-engine/models"
	"grabbi-engine/pricing"
	"grabbi-engine/promotions"
	"grabbi-engine/store"
	"grabbi-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	Store   *store.Store
	Catalog *store.Catalog
	Matcher *promotions.Matcher
	// Fees apply when the quote request does not carry its own.
	Fees pricing.FeeConfig
}

type QuoteRequest struct {
	LocationID    uuid.UUID           `json:"location_id" binding:"required"`
	OrderType     models.OrderType    `json:"order_type" binding:"required,ordertype"`
	FulfillmentAt *time.Time          `json:"fulfillment_at"`
	Cart          models.CartSnapshot `json:"cart"`
	Code          string              `json:"code"`
	Fees          *pricing.FeeConfig  `json:"fees"`
}

type QuoteResponse struct {
	pricing.Breakdown
	Code *ValidateCodeResponse `json:"code,omitempty"`
}

// Quote prices a cart: active discounts are de-stacked, an optional code is
// validated and applied, and fees are added. A rejected code does not fail the
// quote; the rejection is returned alongside the total without it.
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.Fees != nil {
		if err := req.Fees.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	ctx := c.Request.Context()

	loc, err := h.Store.GetLocation(ctx, req.LocationID)
	if err != nil {
		respondStoreError(c, err, "Location")
		return
	}
	if !loc.Offers(req.OrderType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location does not offer " + string(req.OrderType)})
		return
	}

	cart, err := h.Catalog.EnrichCart(ctx, req.Cart)
	if err != nil {
		respondStoreError(c, err, "Product")
		return
	}

	discounts, err := h.Matcher.ActiveDiscounts(ctx, promotions.DiscountQuery{
		BrandID:       loc.BrandID,
		LocationID:    loc.ID,
		OrderType:     req.OrderType,
		FulfillmentAt: req.FulfillmentAt,
	})
	if err != nil {
		respondStoreError(c, err, "Discount")
		return
	}

	fees := h.Fees
	if req.Fees != nil {
		fees = *req.Fees
	}

	in := pricing.Input{
		Cart:      cart,
		Discounts: pricing.SelectStackable(discounts, cart, req.OrderType, fees),
		Fees:      fees,
		OrderType: req.OrderType,
	}

	var codeResp *ValidateCodeResponse
	if code := strings.TrimSpace(req.Code); code != "" {
		res, err := h.Matcher.ValidateCode(ctx, promotions.CodeQuery{
			Code:       code,
			BrandID:    loc.BrandID,
			LocationID: loc.ID,
			Subtotal:   cart.Subtotal(),
			OrderType:  req.OrderType,
		})
		if err != nil {
			respondStoreError(c, err, "Discount code")
			return
		}
		r := codeResponse(res)
		codeResp = &r
		if res.Valid() {
			in.Code = res.Code
		}
	}

	c.JSON(http.StatusOK, QuoteResponse{
		Breakdown: pricing.ComposeTotal(in),
		Code:      codeResp,
	})
}
