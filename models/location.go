package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location is a single outlet of a brand. The engine only reads it.
type Location struct {
	ID                    uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BrandID               uuid.UUID        `gorm:"type:uuid;not null;index" json:"brand_id"`
	Name                  string           `gorm:"not null" json:"name"`
	DeliveryTypes         []OrderType      `gorm:"serializer:json" json:"delivery_types"`
	PrepTimeMinutes       int              `gorm:"not null" json:"prep_time_minutes"`
	DeliveryTimeMinutes   int              `gorm:"not null" json:"delivery_time_minutes"`
	BusynessFactor        BusynessFactor   `gorm:"default:normal" json:"busyness_factor"`
	ManualOverrideMinutes int              `json:"manual_override_minutes"`
	AllowPreOrder         bool             `json:"allow_pre_order"`
	OperatingHours        []OperatingHours `gorm:"foreignKey:LocationID" json:"operating_hours,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
	DeletedAt             gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Offers reports whether the location fulfils orders of the given type.
func (l *Location) Offers(t OrderType) bool {
	for _, dt := range l.DeliveryTypes {
		if dt == t {
			return true
		}
	}
	return false
}

// HoursFor returns the configured hours for a weekday. A weekday without a row is closed.
func (l *Location) HoursFor(day time.Weekday) (OperatingHours, bool) {
	for _, h := range l.OperatingHours {
		if h.DayOfWeek == int(day) {
			return h, !h.IsClosed
		}
	}
	return OperatingHours{}, false
}

// EffectivePrepMinutes applies the manual override, or the busyness bonus when no override is set.
func (l *Location) EffectivePrepMinutes() int {
	if l.ManualOverrideMinutes > 0 {
		return l.ManualOverrideMinutes
	}
	return l.PrepTimeMinutes + l.BusynessFactor.BonusMinutes()
}

// OperatingHours holds the opening window of one weekday. A close time at or
// before the open time means the location closes after midnight.
type OperatingHours struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	DayOfWeek  int       `gorm:"not null" json:"day_of_week"` // 0=Sunday, 6=Saturday
	OpenTime   string    `gorm:"not null;default:'09:00'" json:"open_time"`
	CloseTime  string    `gorm:"not null;default:'21:00'" json:"close_time"`
	IsClosed   bool      `gorm:"default:false" json:"is_closed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (OperatingHours) TableName() string {
	return "operating_hours"
}

func (h *OperatingHours) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
