package slotwatch

import (
	"fmt"
	"sort"
)

// Directory maps enrollment center ids to human-readable names.
// Read-only reference data; unknown ids get a deterministic fallback label.
type Directory map[string]string

func (d Directory) Name(locationId string) string {
	if name, ok := d[locationId]; ok {
		return name
	}
	return fmt.Sprintf("Location %s", locationId)
}

func (d Directory) Ids() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultDirectory covers the enrollment centers this tool has been
// pointed at so far. Ids outside this table still work, they just
// render with the fallback label.
func DefaultDirectory() Directory {
	return Directory{
		"5001":  "Hidalgo Enrollment Center",
		"5140":  "Chicago O'Hare International Airport",
		"5180":  "Dallas-Fort Worth International Airport",
		"5182":  "Houston Intercontinental Airport",
		"5300":  "Los Angeles International Airport",
		"5446":  "JFK International Airport",
		"5447":  "Newark Liberty International Airport",
		"6480":  "Seattle-Tacoma International Airport",
		"6940":  "San Francisco International Airport",
		"7540":  "Boston Logan International Airport",
		"14321": "Charlotte-Douglas International Airport",
	}
}
