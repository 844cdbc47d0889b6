package slotwatch

import (
	"strconv"
	"time"
	"ttpwatch/lib/scrapers/ttp"
	"ttpwatch/lib/timezone"
)

// Appointment is one bookable time window. It stores the upstream
// timestamp verbatim; the Eastern date and time are derived on read so
// display policy never leaks into storage.
type Appointment struct {
	LocationID     string
	StartTimestamp string
	EndTimestamp   string
	Duration       int
}

func newAppointment(raw ttp.RawSlot, locationId string) (Appointment, error) {
	_, err := ttp.DecodeSlotTimestamp(raw.StartTimestamp)
	if err != nil {
		return Appointment{}, err
	}

	if locationId == "" && raw.LocationID != 0 {
		locationId = strconv.Itoa(raw.LocationID)
	}
	duration := raw.Duration
	if duration == 0 {
		duration = ttp.DefaultSlotDuration
	}

	return Appointment{
		LocationID:     locationId,
		StartTimestamp: raw.StartTimestamp,
		EndTimestamp:   raw.EndTimestamp,
		Duration:       duration,
	}, nil
}

func (a Appointment) start() time.Time {
	// construction already validated the timestamp
	t, _ := ttp.DecodeSlotTimestamp(a.StartTimestamp)
	return t.In(timezone.Location)
}

// Date is the appointment's Eastern calendar date, YYYY-MM-DD.
func (a Appointment) Date() string {
	return a.start().Format(ttp.DateLayout)
}

// Time is the appointment's Eastern wall-clock time, HH:MM.
func (a Appointment) Time() string {
	return a.start().Format("15:04")
}
