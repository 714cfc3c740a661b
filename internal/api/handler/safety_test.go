package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsafe/trailsafe/internal/api/handler"
	"github.com/trailsafe/trailsafe/internal/api/models"
)

// The handler only reaches the report service once every parameter
// validates, so the rejection paths are testable with no service at all.
func newValidationHandler() *handler.SafetyHandler {
	return handler.NewSafetyHandler(nil)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func fieldNames(errs []models.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func validDate() string {
	return time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
}

func TestGetSafetyReport_MissingEverything(t *testing.T) {
	h := newValidationHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/safety", http.NoBody)
	rec := httptest.NewRecorder()

	h.GetSafetyReport(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	assert.ElementsMatch(t, []string{"lat", "lon", "date"}, fieldNames(problem.Errors))
}

func TestGetSafetyReport_CoordinateBounds(t *testing.T) {
	h := newValidationHandler()

	cases := []struct {
		name  string
		query string
		field string
	}{
		{"lat too high", "lat=90.1&lon=0", "lat"},
		{"lat too low", "lat=-90.1&lon=0", "lat"},
		{"lat not a number", "lat=north&lon=0", "lat"},
		{"lon too high", "lat=0&lon=180.1", "lon"},
		{"lon too low", "lat=0&lon=-180.1", "lon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url := fmt.Sprintf("/v1/safety?%s&date=%s", tc.query, validDate())
			req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
			rec := httptest.NewRecorder()

			h.GetSafetyReport(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tc.field, problem.Errors[0].Field)
		})
	}
}

func TestGetSafetyReport_DateWindow(t *testing.T) {
	h := newValidationHandler()

	past := time.Now().UTC().AddDate(0, 0, -3).Format("2006-01-02")
	farOut := time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")

	for _, date := range []string{past, farOut, "2026/01/15", "not-a-date"} {
		url := "/v1/safety?lat=40.6&lon=-111.6&date=" + date
		req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
		rec := httptest.NewRecorder()

		h.GetSafetyReport(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "date %q should be rejected", date)
		problem := decodeProblem(t, rec)
		require.Len(t, problem.Errors, 1)
		assert.Equal(t, "date", problem.Errors[0].Field)
	}
}

func TestGetSafetyReport_OptionalParamBounds(t *testing.T) {
	h := newValidationHandler()

	cases := []struct {
		name  string
		query string
		field string
	}{
		{"start above range", "start=24", "start"},
		{"start negative", "start=-1", "start"},
		{"start not a number", "start=dawn", "start"},
		{"window zero", "travel_window_hours=0", "travel_window_hours"},
		{"window above range", "travel_window_hours=25", "travel_window_hours"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url := fmt.Sprintf("/v1/safety?lat=40.6&lon=-111.6&date=%s&%s", validDate(), tc.query)
			req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
			rec := httptest.NewRecorder()

			h.GetSafetyReport(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tc.field, problem.Errors[0].Field)
		})
	}
}
