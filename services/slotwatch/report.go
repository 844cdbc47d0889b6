package slotwatch

import (
	"fmt"
	"strings"
	"time"
)

const notificationTitle = "Global Entry Alert"

// LocationReport is the outcome of checking one location in a sweep.
type LocationReport struct {
	LocationID   string
	LocationName string
	// observations for the selected date(s); nil when none were available
	Observations []Observation
	// whether the change detector flagged this location
	Changed bool
	// slots were present last cycle and are gone now
	Disappeared bool
	// non-empty when the location was skipped this cycle
	Err string
}

// Report aggregates one full sweep across all configured locations.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	// set when the sweep as a whole failed (warm-up rejected and no
	// location produced a usable response)
	Err       string
	Locations []LocationReport
}

func (r Report) HasChanges() bool {
	for _, loc := range r.Locations {
		if loc.Changed {
			return true
		}
	}
	return false
}

func (r Report) Failed() bool {
	return r.Err != ""
}

func (r Report) Title() string {
	return notificationTitle
}

// Render produces the human-readable multi-location notification body.
func (r Report) Render() string {
	var out strings.Builder
	for _, loc := range r.Locations {
		if !loc.Changed {
			continue
		}
		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		if loc.Disappeared {
			fmt.Fprintf(&out, "😔 Appointments no longer available\nLocation: %s", loc.LocationName)
			continue
		}
		for i, obs := range loc.Observations {
			if i > 0 {
				out.WriteString("\n\n")
			}
			fmt.Fprintf(
				&out,
				"🎉 Global Entry Appointment Available!\nLocation: %s\nDate: %s\nTimes: %s",
				obs.LocationName,
				obs.Date,
				strings.Join(obs.Times, ", "),
			)
		}
	}
	return out.String()
}
