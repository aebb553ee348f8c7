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

type DiscountCodeHandler struct {
	Store   *store.Store
	Matcher *promotions.Matcher
}

type ValidateCodeRequest struct {
	Code       string           `json:"code" binding:"required"`
	LocationID uuid.UUID        `json:"location_id" binding:"required"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	OrderType  models.OrderType `json:"order_type" binding:"ordertype"`
}

type ValidateCodeResponse struct {
	Valid          bool                       `json:"valid"`
	Reason         promotions.RejectionReason `json:"reason,omitempty"`
	Message        string                     `json:"message,omitempty"`
	DiscountCodeID *uuid.UUID                 `json:"discount_code_id,omitempty"`
	DiscountType   models.DiscountType        `json:"discount_type,omitempty"`
	DiscountMethod models.DiscountMethod      `json:"discount_method,omitempty"`
	DiscountValue  decimal.NullDecimal        `json:"discount_value"`
}

func codeResponse(res promotions.CodeResult) ValidateCodeResponse {
	if !res.Valid() {
		return ValidateCodeResponse{Reason: res.Reason, Message: res.Message}
	}
	id := res.Code.ID
	return ValidateCodeResponse{
		Valid:          true,
		DiscountCodeID: &id,
		DiscountType:   res.Code.DiscountType,
		DiscountMethod: res.Code.DiscountMethod,
		DiscountValue:  res.Code.DiscountValue,
	}
}

// Validate checks a customer-entered code. Rejections are 200 responses with a
// reason; only store failures are errors.
func (h *DiscountCodeHandler) Validate(c *gin.Context) {
	var req ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.Subtotal.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subtotal must not be negative"})
		return
	}

	loc, err := h.Store.GetLocation(c.Request.Context(), req.LocationID)
	if err != nil {
		respondStoreError(c, err, "Location")
		return
	}

	res, err := h.Matcher.ValidateCode(c.Request.Context(), promotions.CodeQuery{
		Code:       req.Code,
		BrandID:    loc.BrandID,
		LocationID: loc.ID,
		Subtotal:   req.Subtotal,
		OrderType:  req.OrderType,
	})
	if err != nil {
		respondStoreError(c, err, "Discount code")
		return
	}

	c.JSON(http.StatusOK, codeResponse(res))
}

// Redeem records one use of a code after the order has been paid.
func (h *DiscountCodeHandler) Redeem(c *gin.Context) {
	id, ok := paramUUID(c, "id", "discount code")
	if !ok {
		return
	}

	if err := h.Matcher.RedeemCode(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Discount code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Discount code redeemed"})
}
