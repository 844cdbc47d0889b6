package slotwatch

import (
	"log/slog"
	"sort"
	"ttpwatch/lib/scrapers/ttp"
)

// SelectMode controls how many observations a location's raw slots
// reduce to per cycle.
type SelectMode string

const (
	// one observation, the chronologically earliest date with availability
	SelectEarliest SelectMode = "earliest"
	// one observation per date, ascending
	SelectAll SelectMode = "all"
)

// Observation is the selected, normalized view of one location's
// availability for a single date: all open times on that date, sorted.
type Observation struct {
	LocationID   string
	LocationName string
	Date         string
	Times        []string
}

type NormalizeOptions struct {
	Mode          SelectMode
	IncludeRemote bool
	Directory     Directory
}

// Normalize converts raw slot records into observations. A record that
// fails to parse is dropped and logged without aborting the batch; empty
// input yields an empty result.
func Normalize(records []ttp.RawSlot, locationId string, opts NormalizeOptions) []Observation {
	byDate := map[string][]string{}
	for _, raw := range records {
		if raw.RemoteInd && !opts.IncludeRemote {
			continue
		}
		appt, err := newAppointment(raw, locationId)
		if err != nil {
			slog.Warn(
				"dropping malformed slot record",
				"location_id", locationId,
				"start_timestamp", raw.StartTimestamp,
				"err", err,
			)
			continue
		}
		byDate[appt.Date()] = append(byDate[appt.Date()], appt.Time())
	}
	if len(byDate) == 0 {
		return nil
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if opts.Mode != SelectAll {
		dates = dates[:1]
	}

	out := make([]Observation, len(dates))
	for i, date := range dates {
		times := byDate[date]
		sort.Strings(times)
		out[i] = Observation{
			LocationID:   locationId,
			LocationName: opts.Directory.Name(locationId),
			Date:         date,
			Times:        times,
		}
	}
	return out
}
