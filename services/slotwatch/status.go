package slotwatch

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
	"ttpwatch/lib/timezone"
)

type LocationStatus struct {
	LocationID      string       `json:"location_id"`
	LocationName    string       `json:"location_name"`
	LastObservation *Observation `json:"last_observation,omitempty"`
	LastError       string       `json:"last_error,omitempty"`
}

// Status is a point-in-time snapshot of the poll loop for the status
// endpoint. It is a copy; the live state stays owned by the loop.
type Status struct {
	StartedAt           time.Time        `json:"started_at"`
	Sweeps              int              `json:"sweeps"`
	LastSweepAt         time.Time        `json:"last_sweep_at"`
	LastSweepErr        string           `json:"last_sweep_err,omitempty"`
	ConsecutiveFailures int              `json:"consecutive_failures"`
	Locations           []LocationStatus `json:"locations"`
}

func (s *Service) recordReport(report Report) {
	locations := make([]LocationStatus, 0, len(report.Locations))
	for _, loc := range report.Locations {
		status := LocationStatus{
			LocationID:   loc.LocationID,
			LocationName: loc.LocationName,
			LastError:    loc.Err,
		}
		if obs, ok := s.detector.LastSeen(loc.LocationID); ok {
			status.LastObservation = &obs
		}
		locations = append(locations, status)
	}

	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Sweeps++
	s.status.LastSweepAt = timezone.Now()
	s.status.LastSweepErr = report.Err
	if report.Failed() {
		s.status.ConsecutiveFailures++
	} else {
		s.status.ConsecutiveFailures = 0
	}
	s.status.Locations = locations
}

func (s *Service) Status() Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

// StatusHandler serves the snapshot as JSON for the optional status port.
func (s *Service) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		err := json.NewEncoder(w).Encode(s.Status())
		if err != nil {
			slog.Warn("failed to encode status", "err", err)
		}
	})
}
