package timeslots

import (
	"testing"
	"time"

	"grabbi-engine/models"

	"github.com/google/uuid"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func hoursFor(open, close string, openDays ...time.Weekday) []models.OperatingHours {
	isOpen := map[time.Weekday]bool{}
	for _, d := range openDays {
		isOpen[d] = true
	}
	hours := make([]models.OperatingHours, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours = append(hours, models.OperatingHours{
			DayOfWeek: int(d),
			OpenTime:  open,
			CloseTime: close,
			IsClosed:  !isOpen[d],
		})
	}
	return hours
}

func testLocation(hours []models.OperatingHours) *models.Location {
	return &models.Location{
		ID:              uuid.New(),
		Name:            "High Street",
		DeliveryTypes:   []models.OrderType{models.OrderTypePickup},
		PrepTimeMinutes: 15,
		BusynessFactor:  models.BusynessNormal,
		OperatingHours:  hours,
	}
}

func calculatorAt(now time.Time) *Calculator {
	return &Calculator{Zone: time.UTC, Now: func() time.Time { return now }}
}

// 2026-10-19 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
}

func TestComputeOpenAtOpeningTime(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	now := at(19, 11, 0)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "ASAP (15-20 min)" {
		t.Errorf("expected 'ASAP (15-20 min)', got %q", res.ASAPPickup)
	}
	if len(res.PickupTimes) == 0 || res.PickupTimes[0] != "11:15" {
		t.Fatalf("expected first slot 11:15, got %v", res.PickupTimes)
	}
	if last := res.PickupTimes[len(res.PickupTimes)-1]; last != "21:45" {
		t.Errorf("expected last slot 21:45, got %s", last)
	}
	if res.SlotGranularityMinutes != 5 {
		t.Errorf("expected granularity 5, got %d", res.SlotGranularityMinutes)
	}
	if len(res.DeliveryTimes) != 0 || res.ASAPDelivery != "" {
		t.Errorf("expected no delivery for pickup-only location, got %q %v", res.ASAPDelivery, res.DeliveryTimes)
	}
	if res.NextAvailableDate != "" {
		t.Errorf("expected no next available date, got %s", res.NextAvailableDate)
	}
}

func TestComputeManualOverrideSuppressesBusyness(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	loc.ManualOverrideMinutes = 30
	loc.BusynessFactor = models.BusynessHigh
	now := at(19, 12, 0)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "ASAP (30-35 min)" {
		t.Errorf("expected 'ASAP (30-35 min)', got %q", res.ASAPPickup)
	}
	if res.PickupTimes[0] != "12:30" {
		t.Errorf("expected first slot 12:30, got %s", res.PickupTimes[0])
	}
	if last := res.PickupTimes[len(res.PickupTimes)-1]; last != "21:30" {
		t.Errorf("expected last slot 21:30, got %s", last)
	}
}

func TestComputeBusynessBonus(t *testing.T) {
	tests := []struct {
		factor models.BusynessFactor
		label  string
	}{
		{models.BusynessNormal, "ASAP (15-20 min)"},
		{models.BusynessMedium, "ASAP (25-30 min)"},
		{models.BusynessHigh, "ASAP (35-40 min)"},
	}
	for _, tt := range tests {
		loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
		loc.BusynessFactor = tt.factor
		now := at(19, 12, 0)
		if got := calculatorAt(now).Compute(loc, now).ASAPPickup; got != tt.label {
			t.Errorf("%s: expected %q, got %q", tt.factor, tt.label, got)
		}
	}
}

func TestComputeBeforeOpening(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	now := at(19, 9, 0)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "Today – 11:15" {
		t.Errorf("expected 'Today – 11:15', got %q", res.ASAPPickup)
	}
	if res.PickupTimes[0] != "11:15" {
		t.Errorf("expected first slot 11:15, got %s", res.PickupTimes[0])
	}
}

func TestComputeRoundsUpToGranularity(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	now := time.Date(2026, 10, 19, 11, 2, 30, 0, time.UTC)

	res := calculatorAt(now).Compute(loc, now)

	if res.PickupTimes[0] != "11:20" {
		t.Errorf("expected first slot 11:20, got %s", res.PickupTimes[0])
	}
}

func TestComputeDeliveryOffset(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	loc.DeliveryTypes = []models.OrderType{models.OrderTypePickup, models.OrderTypeDelivery}
	loc.DeliveryTimeMinutes = 30
	now := at(19, 11, 0)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPDelivery != "ASAP (45-50 min)" {
		t.Errorf("expected 'ASAP (45-50 min)', got %q", res.ASAPDelivery)
	}
	if res.DeliveryTimes[0] != "11:45" {
		t.Errorf("expected first delivery slot 11:45, got %s", res.DeliveryTimes[0])
	}
	if last := res.DeliveryTimes[len(res.DeliveryTimes)-1]; last != "22:15" {
		t.Errorf("expected last delivery slot 22:15, got %s", last)
	}
}

func TestComputeOvernightHours(t *testing.T) {
	loc := testLocation(hoursFor("18:00", "02:00", weekdays...))
	now := at(19, 20, 0)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "ASAP (15-20 min)" {
		t.Errorf("expected open-now label, got %q", res.ASAPPickup)
	}
	if last := res.PickupTimes[len(res.PickupTimes)-1]; last != "01:45" {
		t.Errorf("expected last slot 01:45 after midnight, got %s", last)
	}
}

func TestComputeOvernightWindowFromPreviousDay(t *testing.T) {
	// Monday opens 18:00-02:00; at 01:00 on Tuesday Monday's window is still running.
	loc := testLocation(hoursFor("18:00", "02:00", time.Monday))
	now := at(20, 1, 0)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "ASAP (15-20 min)" {
		t.Errorf("expected open-now label, got %q", res.ASAPPickup)
	}
	if got := res.PickupTimes; len(got) == 0 || got[0] != "01:15" || got[len(got)-1] != "01:45" {
		t.Errorf("expected slots 01:15..01:45, got %v", got)
	}
}

func TestComputeNearClosingFallsBackToPreOrder(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	loc.AllowPreOrder = true
	now := at(19, 21, 50)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "Tomorrow – 11:15" {
		t.Errorf("expected 'Tomorrow – 11:15', got %q", res.ASAPPickup)
	}
	if res.NextAvailableDate != "2026-10-20" {
		t.Errorf("expected next available 2026-10-20, got %q", res.NextAvailableDate)
	}
	if len(res.PickupTimes) != 0 {
		t.Errorf("expected no slot list for future days, got %v", res.PickupTimes)
	}
}

func TestComputePreOrderSkipsClosedDays(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	loc.AllowPreOrder = true
	now := at(23, 23, 0) // Friday night

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "Monday, 26 Oct – 11:15" {
		t.Errorf("expected 'Monday, 26 Oct – 11:15', got %q", res.ASAPPickup)
	}
	if res.NextAvailableDate != "2026-10-26" {
		t.Errorf("expected next available 2026-10-26, got %q", res.NextAvailableDate)
	}
}

func TestComputeClosedWithoutPreOrder(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	now := at(18, 12, 0) // Sunday

	res := calculatorAt(now).Compute(loc, now)

	if res.Available() {
		t.Errorf("expected unavailable result, got %+v", res)
	}
	if res.NextAvailableDate != "" {
		t.Errorf("expected no next date without pre-order, got %q", res.NextAvailableDate)
	}
}

func TestComputeNeverOpen(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00"))
	loc.AllowPreOrder = true
	now := at(19, 12, 0)

	if res := calculatorAt(now).Compute(loc, now); res.Available() || res.NextAvailableDate != "" {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestComputeFutureDate(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	now := at(19, 12, 0)

	res := calculatorAt(now).Compute(loc, at(21, 0, 0))

	if res.ASAPPickup != "Wednesday, 21 Oct – 11:15" {
		t.Errorf("expected dated label, got %q", res.ASAPPickup)
	}
	if res.PickupTimes[0] != "11:15" {
		t.Errorf("expected first slot 11:15, got %s", res.PickupTimes[0])
	}
}

func TestComputePastDate(t *testing.T) {
	loc := testLocation(hoursFor("11:00", "22:00", weekdays...))
	loc.AllowPreOrder = true
	now := at(19, 12, 0)

	if res := calculatorAt(now).Compute(loc, at(16, 12, 0)); res.Available() {
		t.Errorf("expected nothing for a past date, got %+v", res)
	}
}

func TestComputeOvernightRunOutFallsBackToTodaysWindow(t *testing.T) {
	// Monday's window ends at 02:00 on Tuesday with no room left for prep;
	// Tuesday opens again at 18:00.
	loc := testLocation(hoursFor("18:00", "02:00", time.Monday, time.Tuesday))
	now := at(20, 1, 50)

	for _, preOrder := range []bool{false, true} {
		loc.AllowPreOrder = preOrder
		res := calculatorAt(now).Compute(loc, now)

		if res.ASAPPickup != "Today – 18:15" {
			t.Errorf("preOrder=%v: expected 'Today – 18:15', got %q", preOrder, res.ASAPPickup)
		}
		if len(res.PickupTimes) == 0 || res.PickupTimes[0] != "18:15" {
			t.Errorf("preOrder=%v: expected slots from 18:15, got %v", preOrder, res.PickupTimes)
		}
		if res.NextAvailableDate != "" {
			t.Errorf("preOrder=%v: expected no pre-order date, got %q", preOrder, res.NextAvailableDate)
		}
	}
}

func TestComputeOvernightThenTodaysWindow(t *testing.T) {
	loc := testLocation(hoursFor("18:00", "02:00", time.Monday, time.Tuesday))
	now := at(20, 1, 0)

	res := calculatorAt(now).Compute(loc, now)

	if res.ASAPPickup != "ASAP (15-20 min)" {
		t.Errorf("expected open-now label from the overnight window, got %q", res.ASAPPickup)
	}
	if len(res.PickupTimes) < 8 {
		t.Fatalf("expected overnight and evening slots, got %v", res.PickupTimes)
	}
	if res.PickupTimes[0] != "01:15" || res.PickupTimes[6] != "01:45" {
		t.Errorf("expected overnight slots 01:15..01:45 first, got %v", res.PickupTimes[:7])
	}
	if res.PickupTimes[7] != "18:15" {
		t.Errorf("expected evening slots to follow from 18:15, got %s", res.PickupTimes[7])
	}
}
