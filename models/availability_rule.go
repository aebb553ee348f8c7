package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeWindow is one allowed time-of-day interval in "HH:MM" form.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityRule is the scheduling and targeting block shared by standard
// discounts, combo menus and upsells.
type AvailabilityRule struct {
	BrandID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"brand_id"`
	LocationIDs     []uuid.UUID  `gorm:"serializer:json" json:"location_ids"`
	IsActive        bool         `gorm:"index" json:"is_active"`
	OrderTypes      []OrderType  `gorm:"serializer:json" json:"order_types"`
	ActiveDays      []string     `gorm:"serializer:json" json:"active_days"`
	ActiveTimeSlots []TimeWindow `gorm:"serializer:json" json:"active_time_slots"`
	StartDate       *time.Time   `json:"start_date"`
	EndDate         *time.Time   `json:"end_date"`
	AllowStacking   bool         `json:"allow_stacking"`
}

// AppliesToLocation reports whether locationID is one of the rule's locations.
func (r *AvailabilityRule) AppliesToLocation(locationID uuid.UUID) bool {
	for _, id := range r.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

func (r *AvailabilityRule) AllowsOrderType(t OrderType) bool {
	for _, ot := range r.OrderTypes {
		if ot == t {
			return true
		}
	}
	return false
}
