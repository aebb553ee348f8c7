package routes

import (
	"log"
	"net/http"

	"grabbi-engine/handlers"
	"grabbi-engine/middleware"
	"grabbi-engine/pricing"
	"grabbi-engine/promotions"
	"grabbi-engine/store"
	"grabbi-engine/timeslots"
	"grabbi-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Deps are the engine components the HTTP layer is built from.
type Deps struct {
	Store   *store.Store
	Catalog *store.Catalog
	Matcher *promotions.Matcher
	Slots   *timeslots.Calculator
	Fees    pricing.FeeConfig
	// CodeLimiter throttles discount code validation per client. Nil disables it.
	CodeLimiter *middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, d Deps) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			log.Printf("Warning: could not register validators: %v", err)
		}
	}

	// Initialize handlers
	locationHandler := &handlers.LocationHandler{Store: d.Store, Catalog: d.Catalog, Matcher: d.Matcher, Slots: d.Slots}
	codeHandler := &handlers.DiscountCodeHandler{Store: d.Store, Matcher: d.Matcher}
	upsellHandler := &handlers.UpsellHandler{Store: d.Store, Catalog: d.Catalog, Matcher: d.Matcher}
	checkoutHandler := &handlers.CheckoutHandler{Store: d.Store, Catalog: d.Catalog, Matcher: d.Matcher, Fees: d.Fees}

	codeGuards := []gin.HandlerFunc{}
	if d.CodeLimiter != nil {
		codeGuards = append(codeGuards, d.CodeLimiter.Middleware(middleware.ByClientIP))
	}

	api := r.Group("/api")
	{
		// Location availability
		api.GET("/locations/:id/slots", locationHandler.GetSlots)
		api.GET("/locations/:id/discounts", locationHandler.GetDiscounts)
		api.GET("/locations/:id/combos", locationHandler.GetCombos)

		// Discount codes
		api.POST("/discount-codes/validate", append(codeGuards, codeHandler.Validate)...)
		api.POST("/discount-codes/:id/redemptions", codeHandler.Redeem)

		// Upsells
		api.POST("/upsells/select", upsellHandler.Select)
		api.POST("/upsells/:id/conversions", upsellHandler.RecordConversion)
		api.GET("/upsells/:id/stats", upsellHandler.GetStats)

		// Checkout
		api.POST("/checkout/quote", append(codeGuards, checkoutHandler.Quote)...)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.Store.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
