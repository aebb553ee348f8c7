// Package timeslots computes when a location can take orders and which
// fulfillment times it can offer.
package timeslots

import (
	"fmt"
	"log"
	"time"

	"grabbi-engine/availability"
	"grabbi-engine/models"
)

// SlotGranularityMinutes is the spacing of generated pickup and delivery times.
const SlotGranularityMinutes = 5

// preOrderHorizonDays bounds the forward scan for the next open day.
const preOrderHorizonDays = 7

type Result struct {
	SlotGranularityMinutes int      `json:"slot_granularity_minutes"`
	PickupTimes            []string `json:"pickup_times"`
	DeliveryTimes          []string `json:"delivery_times"`
	ASAPPickup             string   `json:"asap_pickup"`
	ASAPDelivery           string   `json:"asap_delivery"`
	NextAvailableDate      string   `json:"next_available_date,omitempty"`
}

// Available reports whether any fulfillment option was found.
func (r Result) Available() bool {
	return r.ASAPPickup != "" || r.ASAPDelivery != "" || len(r.PickupTimes) > 0 || len(r.DeliveryTimes) > 0
}

type Calculator struct {
	Zone *time.Location
	Now  func() time.Time
}

func NewCalculator(zone *time.Location) *Calculator {
	return &Calculator{Zone: zone, Now: time.Now}
}

type window struct {
	opening time.Time
	closing time.Time
}

func (c *Calculator) zone() *time.Location {
	if c.Zone == nil {
		return time.UTC
	}
	return c.Zone
}

func (c *Calculator) now() time.Time {
	if c.Now == nil {
		return time.Now().In(c.zone())
	}
	return c.Now().In(c.zone())
}

// Compute returns the ASAP labels and discrete slots of loc for forDate. When
// nothing can be offered that day and the location takes pre-orders, the next
// open day within a week is reported with labels only.
func (c *Calculator) Compute(loc *models.Location, forDate time.Time) Result {
	zone := c.zone()
	now := c.now()
	day := forDate.In(zone)
	today := availability.CalendarDate(now)

	res := Result{
		SlotGranularityMinutes: SlotGranularityMinutes,
		PickupTimes:            []string{},
		DeliveryTimes:          []string{},
	}

	if availability.CalendarDate(day).Before(today) {
		return res
	}
	isToday := availability.CalendarDate(day).Equal(today)
	prep := loc.EffectivePrepMinutes()

	for _, w := range c.windowsOn(loc, day, now, isToday) {
		openNow := isToday && !now.Before(w.opening) && now.Before(w.closing)
		beforeOpening := isToday && now.Before(w.opening)
		base := w.opening
		if openNow {
			base = now
		}

		if loc.Offers(models.OrderTypePickup) {
			label, times := c.offer(base, w.closing, prep, 0, openNow, beforeOpening)
			res.ASAPPickup, res.PickupTimes = merge(res.ASAPPickup, res.PickupTimes, label, times)
		}
		if loc.Offers(models.OrderTypeDelivery) {
			label, times := c.offer(base, w.closing, prep, loc.DeliveryTimeMinutes, openNow, beforeOpening)
			res.ASAPDelivery, res.DeliveryTimes = merge(res.ASAPDelivery, res.DeliveryTimes, label, times)
		}
	}

	if !res.Available() && loc.AllowPreOrder {
		c.fillPreOrder(&res, loc, day, now, prep)
	}
	return res
}

// windowsOn lists the opening windows that apply to day, in time order. For
// today that is the previous day's overnight window while it is still running,
// followed by today's own window unless it has already closed.
func (c *Calculator) windowsOn(loc *models.Location, day, now time.Time, isToday bool) []window {
	if !isToday {
		if w, ok := c.dayWindow(loc, day); ok {
			return []window{w}
		}
		return nil
	}

	var out []window
	if prev, ok := c.dayWindow(loc, day.AddDate(0, 0, -1)); ok && !now.Before(prev.opening) && now.Before(prev.closing) {
		out = append(out, prev)
	}
	if w, ok := c.dayWindow(loc, day); ok && now.Before(w.closing) {
		out = append(out, w)
	}
	return out
}

// merge keeps the label of the earliest window that offers anything and
// appends the slots of later windows.
func merge(label string, times []string, nextLabel string, nextTimes []string) (string, []string) {
	if label == "" {
		label = nextLabel
	}
	return label, append(times, nextTimes...)
}

func (c *Calculator) dayWindow(loc *models.Location, day time.Time) (window, bool) {
	hours, open := loc.HoursFor(day.Weekday())
	if !open {
		return window{}, false
	}
	openMin, err := availability.ParseClock(hours.OpenTime)
	if err != nil {
		log.Printf("timeslots: location %s has invalid open time on %s: %v", loc.ID, day.Weekday(), err)
		return window{}, false
	}
	closeMin, err := availability.ParseClock(hours.CloseTime)
	if err != nil {
		log.Printf("timeslots: location %s has invalid close time on %s: %v", loc.ID, day.Weekday(), err)
		return window{}, false
	}

	w := window{
		opening: availability.AtClock(day, openMin, c.zone()),
		closing: availability.AtClock(day, closeMin, c.zone()),
	}
	if !w.closing.After(w.opening) {
		w.closing = w.closing.AddDate(0, 0, 1)
	}
	return w, true
}

func bounds(base, closing time.Time, prep, travel int) (time.Time, time.Time) {
	earliest := base.Add(time.Duration(prep+travel) * time.Minute)
	latest := closing.Add(time.Duration(travel-prep) * time.Minute)
	return earliest, latest
}

func (c *Calculator) offer(base, closing time.Time, prep, travel int, openNow, beforeOpening bool) (string, []string) {
	earliest, latest := bounds(base, closing, prep, travel)
	if earliest.After(latest) {
		return "", []string{}
	}

	var label string
	switch {
	case openNow:
		lead := prep + travel
		label = fmt.Sprintf("ASAP (%d-%d min)", lead, lead+SlotGranularityMinutes)
	case beforeOpening:
		label = "Today – " + earliest.Format("15:04")
	default:
		label = earliest.Format("Monday, 2 Jan") + " – " + earliest.Format("15:04")
	}
	return label, slotTimes(earliest, latest)
}

func (c *Calculator) fillPreOrder(res *Result, loc *models.Location, from, now time.Time, prep int) {
	today := availability.CalendarDate(now)
	for i := 1; i <= preOrderHorizonDays; i++ {
		day := from.AddDate(0, 0, i)
		w, ok := c.dayWindow(loc, day)
		if !ok {
			continue
		}

		var pickup, delivery string
		if loc.Offers(models.OrderTypePickup) {
			pickup = futureLabel(w, prep, 0, today)
		}
		if loc.Offers(models.OrderTypeDelivery) {
			delivery = futureLabel(w, prep, loc.DeliveryTimeMinutes, today)
		}
		if pickup == "" && delivery == "" {
			continue
		}

		res.ASAPPickup = pickup
		res.ASAPDelivery = delivery
		res.NextAvailableDate = availability.CalendarDate(day).Format("2006-01-02")
		return
	}
}

func futureLabel(w window, prep, travel int, today time.Time) string {
	earliest, latest := bounds(w.opening, w.closing, prep, travel)
	if earliest.After(latest) {
		return ""
	}
	days := int(availability.CalendarDate(w.opening).Sub(today).Hours() / 24)
	if days == 1 {
		return "Tomorrow – " + earliest.Format("15:04")
	}
	return earliest.Format("Monday, 2 Jan") + " – " + earliest.Format("15:04")
}

// slotTimes lists every slot boundary from earliest, rounded up to the slot
// granularity, through latest inclusive.
func slotTimes(earliest, latest time.Time) []string {
	times := []string{}
	for t := roundUp(earliest, SlotGranularityMinutes); !t.After(latest); t = t.Add(SlotGranularityMinutes * time.Minute) {
		times = append(times, t.Format("15:04"))
	}
	return times
}

func roundUp(t time.Time, step int) time.Time {
	r := t.Truncate(time.Minute)
	if r.Before(t) {
		r = r.Add(time.Minute)
	}
	if rem := r.Minute() % step; rem != 0 {
		r = r.Add(time.Duration(step-rem) * time.Minute)
	}
	return r
}
