// Package airquality fetches the current AQI for a point. The feed only
// describes current conditions, so requests for dates beyond its horizon get
// an explicit not-applicable status instead of a misleading number.
package airquality

import (
	"errors"
	"time"
)

// Air quality errors.
var (
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
)

// Status describes the usability of the air quality result.
type Status string

const (
	// StatusOK means a current AQI was observed.
	StatusOK Status = "ok"

	// StatusNoData means the feed responded but had no observation near the
	// point.
	StatusNoData Status = "no_data"

	// StatusNotApplicableFutureDate means the selected date is beyond the
	// feed's horizon; current AQI says nothing about it.
	StatusNotApplicableFutureDate Status = "not_applicable_future_date"

	// StatusUnavailable means the feed could not be reached.
	StatusUnavailable Status = "unavailable"
)

// Summary is the air quality result for one request.
type Summary struct {
	Status     Status    `json:"status"`
	AQI        int       `json:"aqi,omitempty"`
	Category   string    `json:"category,omitempty"`
	Pollutant  string    `json:"pollutant,omitempty"`
	ObservedAt time.Time `json:"observedAt,omitempty"`
}

// Unavailable is the degradation sentinel for a dead feed.
func Unavailable() *Summary {
	return &Summary{Status: StatusUnavailable}
}

// Applicable reports whether the AQI should participate in scoring.
func (s *Summary) Applicable() bool {
	return s != nil && s.Status == StatusOK
}
