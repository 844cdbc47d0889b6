package ttp

import "time"

// TimestampLayout is the format of slot timestamps as returned by the
// scheduler API. The values are naive and the upstream treats them as UTC.
const TimestampLayout = "2006-01-02T15:04"

// DateLayout is the date-only format used by the slot availability filters.
const DateLayout = "2006-01-02"

// DefaultSlotDuration is assumed when a slot record omits its duration.
const DefaultSlotDuration = 15

// RawSlot is a single slot record exactly as the scheduler API returns it.
type RawSlot struct {
	LocationID     int    `json:"locationId"`
	StartTimestamp string `json:"startTimestamp"`
	EndTimestamp   string `json:"endTimestamp"`
	Duration       int    `json:"duration"`
	RemoteInd      bool   `json:"remoteInd"`
}

func DecodeSlotTimestamp(tstr string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, tstr, time.UTC)
}
