// Package availability decides whether a discount, combo or upsell is active
// at a given instant.
package availability

import (
	"strings"
	"time"

	"grabbi-engine/models"
)

// Predicate evaluates availability rules in the single operating timezone.
type Predicate struct {
	Zone *time.Location
}

func NewPredicate(zone *time.Location) Predicate {
	return Predicate{Zone: zone}
}

// Location returns the operating timezone, UTC when unset.
func (p Predicate) Location() *time.Location {
	if p.Zone == nil {
		return time.UTC
	}
	return p.Zone
}

// LocalDate is the calendar date of t in the operating timezone.
func (p Predicate) LocalDate(t time.Time) time.Time {
	return CalendarDate(t.In(p.Location()))
}

// IsActiveNow reports whether rule is active for orderType at the instant at.
// It fails closed when the order type is not listed on the rule. IsActive is
// not consulted; callers filter on it when loading rules.
func (p Predicate) IsActiveNow(rule *models.AvailabilityRule, orderType models.OrderType, at time.Time) bool {
	if !rule.AllowsOrderType(orderType) {
		return false
	}
	return p.inSchedule(rule, at)
}

// IsActiveForAny is IsActiveNow for callers that have no order type yet: the
// rule is active if it is active for any order type it lists.
func (p Predicate) IsActiveForAny(rule *models.AvailabilityRule, at time.Time) bool {
	for _, t := range rule.OrderTypes {
		if p.IsActiveNow(rule, t, at) {
			return true
		}
	}
	return false
}

func (p Predicate) inSchedule(rule *models.AvailabilityRule, at time.Time) bool {
	local := at.In(p.Location())
	today := CalendarDate(local)

	// Stored bounds are inclusive calendar dates in the operating timezone.
	if rule.StartDate != nil && today.Before(p.LocalDate(*rule.StartDate)) {
		return false
	}
	if rule.EndDate != nil && today.After(p.LocalDate(*rule.EndDate)) {
		return false
	}

	if len(rule.ActiveDays) > 0 && !hasDay(rule.ActiveDays, models.WeekdayName(local.Weekday())) {
		return false
	}

	if len(rule.ActiveTimeSlots) > 0 {
		minute := MinuteOfDay(local)
		for _, w := range rule.ActiveTimeSlots {
			if WindowContains(w, minute) {
				return true
			}
		}
		return false
	}

	return true
}

func hasDay(days []string, day string) bool {
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

// WindowContains reports whether minute falls inside w, inclusive at both ends.
// A window whose start is after its end wraps past midnight. Malformed windows
// never match.
func WindowContains(w models.TimeWindow, minute int) bool {
	start, err := ParseClock(w.Start)
	if err != nil {
		return false
	}
	end, err := ParseClock(w.End)
	if err != nil {
		return false
	}
	if start <= end {
		return start <= minute && minute <= end
	}
	return minute >= start || minute <= end
}

// EvaluationInstant picks the instant a rule is checked against: now for
// order-time rules, the chosen fulfillment time for pickup-time rules when one
// is known.
func EvaluationInstant(vt models.TimeSlotValidationType, now time.Time, fulfillmentAt *time.Time) time.Time {
	if vt == models.ValidatePickupTime && fulfillmentAt != nil {
		return *fulfillmentAt
	}
	return now
}
