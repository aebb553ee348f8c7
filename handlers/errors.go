package handlers

import (
	"errors"
	"log"
	"net/http"

	"grabbi-engine/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// retryAfterSeconds is sent with 503 responses caused by the rule store.
const retryAfterSeconds = "5"

// respondStoreError maps store failures onto HTTP responses. A store that
// cannot answer is never reported as "nothing available".
func respondStoreError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, store.ErrLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": "Discount code has reached its usage limit"})
	case errors.Is(err, store.ErrUnavailable):
		log.Printf("store unavailable: %v", err)
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please retry"})
	default:
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func paramUUID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}
