package app

import (
	"fmt"
	"time"
)

// TimeList is the fixed daily slot catalog. Every shop and service offers the
// same ten hourly times; slots are not derived from shop configuration in
// this version.
var TimeList = []string{
	"09:00",
	"10:00",
	"11:00",
	"12:00",
	"13:00",
	"14:00",
	"15:00",
	"16:00",
	"17:00",
	"18:00",
}

// AvailableSlots filters catalog down to the times still offerable for day,
// given the bookings already made for the same service on that day. now is
// injected so the past-time rule stays a pure function of its inputs.
//
// A slot is dropped when day is today and its time-of-day is strictly before
// now, or when an existing booking occupies the same (hour, minute). Catalog
// order is preserved; an empty result is a valid outcome, not an error.
func AvailableSlots(catalog []string, day time.Time, bookings []Booking, now time.Time) ([]string, error) {
	available := make([]string, 0, len(catalog))

	for _, slot := range catalog {
		tod, err := parseHHMM(slot)
		if err != nil {
			return nil, err
		}
		hour, minute := tod.Hour(), tod.Minute()

		if sameDate(day, now) {
			at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if at.Before(now) {
				continue
			}
		}

		taken := false
		for _, b := range bookings {
			if b.Date.Hour() == hour && b.Date.Minute() == minute {
				taken = true
				break
			}
		}
		if taken {
			continue
		}

		available = append(available, slot)
	}

	return available, nil
}

// SlotDate combines a calendar day with a "HH:MM" slot into the booking
// timestamp, in day's location.
func SlotDate(day time.Time, slot string) (time.Time, error) {
	tod, err := parseHHMM(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, day.Location()), nil
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func parseHHMM(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("invalid time string: %s", s)
	}
	s = s[:5]
	tt, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, err
	}
	return tt, nil
}
