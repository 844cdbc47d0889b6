package slotwatch

import "slices"

type DetectorOptions struct {
	// when a location goes from having slots to having none, clear its
	// entry and report the transition; when false the previous entry is
	// retained and nothing is reported until slots come back different
	ReportDisappeared bool
}

// Detector decides whether a location's latest observation differs from
// the last one that was reported. State lives only in memory; a restart
// forgets everything, so the first non-empty observation after a restart
// is always reported.
//
// Owned by the poll loop's goroutine; not safe for concurrent use.
type Detector struct {
	opts     DetectorOptions
	lastSeen map[string]Observation
}

func NewDetector(opts DetectorOptions) *Detector {
	return &Detector{
		opts:     opts,
		lastSeen: map[string]Observation{},
	}
}

func observationsEqual(a, b Observation) bool {
	// times are pre-sorted ascending, so ordered comparison is set
	// comparison here
	return a.Date == b.Date && slices.Equal(a.Times, b.Times)
}

// Changed reports whether obs warrants a notification for this location,
// updating the last-seen entry when it does. A nil obs means the cycle
// found no availability.
func (d *Detector) Changed(locationId string, obs *Observation) bool {
	prev, hasPrev := d.lastSeen[locationId]

	if obs == nil {
		if !hasPrev {
			return false
		}
		if d.opts.ReportDisappeared {
			delete(d.lastSeen, locationId)
			return true
		}
		return false
	}

	if hasPrev && observationsEqual(prev, *obs) {
		return false
	}
	d.lastSeen[locationId] = *obs
	return true
}

// LastSeen returns the last observation that was reported for a location.
func (d *Detector) LastSeen(locationId string) (Observation, bool) {
	obs, ok := d.lastSeen[locationId]
	return obs, ok
}
