// Package handler provides HTTP handlers for the TrailSafe API.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/trailsafe/trailsafe/internal/api/models"
	"github.com/trailsafe/trailsafe/internal/api/response"
	"github.com/trailsafe/trailsafe/internal/report"
)

const (
	defaultStartClock        = 8
	defaultTravelWindowHours = 8
	maxTravelWindowHours     = 24

	// maxForecastDays bounds how far out a report can be requested; beyond
	// this every feed is guesswork.
	maxForecastDays = 10
)

// SafetyHandler handles safety report requests.
type SafetyHandler struct {
	reports *report.Service
}

// NewSafetyHandler creates a new SafetyHandler.
func NewSafetyHandler(reports *report.Service) *SafetyHandler {
	return &SafetyHandler{reports: reports}
}

// GetSafetyReport handles GET /v1/safety. Caller input is the only error
// class that produces a non-200: once the parameters validate, the report
// itself always succeeds, degrading to partial data as feeds fail.
func (h *SafetyHandler) GetSafetyReport(w http.ResponseWriter, r *http.Request) {
	req, fieldErrors := parseSafetyRequest(r)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid request parameters", fieldErrors)
		return
	}

	rep := h.reports.Build(r.Context(), req)
	response.JSON(w, r, http.StatusOK, rep)
}

func parseSafetyRequest(r *http.Request) (report.Request, []models.FieldError) {
	q := r.URL.Query()
	var errs []models.FieldError

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be a number between -90 and 90", Code: "invalid"})
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be a number between -180 and 180", Code: "invalid"})
	}

	date, dateErrs := parseDate(q.Get("date"))
	errs = append(errs, dateErrs...)

	startClock := defaultStartClock
	if s := q.Get("start"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 || v > 23 {
			errs = append(errs, models.FieldError{Field: "start", Message: "must be an hour between 0 and 23", Code: "invalid"})
		} else {
			startClock = v
		}
	}

	window := defaultTravelWindowHours
	if s := q.Get("travel_window_hours"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > maxTravelWindowHours {
			errs = append(errs, models.FieldError{Field: "travel_window_hours", Message: "must be between 1 and 24", Code: "invalid"})
		} else {
			window = v
		}
	}

	return report.Request{
		Lat:               lat,
		Lon:               lon,
		Date:              date,
		StartClock:        startClock,
		TravelWindowHours: window,
	}, errs
}

func parseDate(s string) (time.Time, []models.FieldError) {
	if s == "" {
		return time.Time{}, []models.FieldError{{Field: "date", Message: "is required (YYYY-MM-DD)", Code: "required"}}
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, []models.FieldError{{Field: "date", Message: "must be YYYY-MM-DD", Code: "invalid"}}
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today.AddDate(0, 0, -1)) {
		return time.Time{}, []models.FieldError{{Field: "date", Message: "must not be in the past", Code: "invalid"}}
	}
	if date.After(today.AddDate(0, 0, maxForecastDays)) {
		return time.Time{}, []models.FieldError{{Field: "date", Message: "must be within 10 days", Code: "invalid"}}
	}
	return date, nil
}
