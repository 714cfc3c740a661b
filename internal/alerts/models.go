// Package alerts fetches active NWS alerts for a point and classifies their
// relevance to the selected travel window.
package alerts

import (
	"errors"
	"time"
)

// Alert errors.
var (
	ErrProviderUnavailable = errors.New("alerts provider unavailable")
)

// Severity is the CAP severity of an alert.
type Severity string

const (
	SeverityExtreme  Severity = "Extreme"
	SeveritySevere   Severity = "Severe"
	SeverityModerate Severity = "Moderate"
	SeverityMinor    Severity = "Minor"
	SeverityUnknown  Severity = "Unknown"
)

// Rank orders severities for scoring; higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityExtreme:
		return 4
	case SeveritySevere:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Alert is one active alert product.
type Alert struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	Severity    Severity  `json:"severity"`
	Urgency     string    `json:"urgency,omitempty"`
	Headline    string    `json:"headline,omitempty"`
	Description string    `json:"description,omitempty"`
	Onset       time.Time `json:"onset,omitempty"`
	Ends        time.Time `json:"ends,omitempty"`
}

// Status describes the usability of the alert feed result.
type Status string

const (
	// StatusOK means alerts were fetched and matched against the window.
	StatusOK Status = "ok"

	// StatusCurrentOnly means alerts were fetched but none carried timing
	// that overlaps the selected window; they describe the current state.
	StatusCurrentOnly Status = "current_state_only"

	// StatusUnavailable means the feed could not be reached.
	StatusUnavailable Status = "unavailable"
)

// Summary is the alert feed result for one request.
type Summary struct {
	Status Status  `json:"status"`
	Alerts []Alert `json:"alerts,omitempty"`

	// SelectedTimeRelevant is true when at least one alert's onset/ends
	// window overlaps the selected travel window.
	SelectedTimeRelevant bool `json:"selectedTimeRelevant"`
}

// Unavailable is the degradation sentinel for a dead feed.
func Unavailable() *Summary {
	return &Summary{Status: StatusUnavailable}
}

// MaxSeverity returns the worst severity across the alerts, or
// SeverityUnknown when empty.
func (s *Summary) MaxSeverity() Severity {
	max := SeverityUnknown
	for _, a := range s.Alerts {
		if a.Severity.Rank() > max.Rank() {
			max = a.Severity
		}
	}
	return max
}
