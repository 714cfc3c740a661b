package alerts_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsafe/trailsafe/internal/alerts"
)

type mockProvider struct {
	mu     sync.Mutex
	alerts []alerts.Alert
	err    error
	calls  int
}

func (m *mockProvider) FetchActiveAlerts(_ context.Context, _, _ float64) ([]alerts.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.alerts, m.err
}

var windowStart = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func newService(p *mockProvider) *alerts.Service {
	return alerts.NewService(alerts.ServiceConfig{Provider: p, Logger: zerolog.Nop()})
}

func TestGetSummary_FeedFailureDegradesToUnavailable(t *testing.T) {
	p := &mockProvider{err: errors.New("connection refused")}
	svc := newService(p)

	summary := svc.GetSummary(context.Background(), 40.6, -111.6, windowStart, 8)

	require.NotNil(t, summary)
	assert.Equal(t, alerts.StatusUnavailable, summary.Status)
	assert.Empty(t, summary.Alerts)
	assert.Equal(t, 1, p.calls)
}

func TestGetSummary_AlertOverlappingWindowIsRelevant(t *testing.T) {
	p := &mockProvider{alerts: []alerts.Alert{
		{
			ID:       "urn:oid:1",
			Event:    "Winter Storm Warning",
			Severity: alerts.SeveritySevere,
			Onset:    windowStart.Add(2 * time.Hour),
			Ends:     windowStart.Add(20 * time.Hour),
		},
	}}
	svc := newService(p)

	summary := svc.GetSummary(context.Background(), 40.6, -111.6, windowStart, 8)

	assert.Equal(t, alerts.StatusOK, summary.Status)
	assert.True(t, summary.SelectedTimeRelevant)
}

func TestGetSummary_ExpiredAlertIsCurrentStateOnly(t *testing.T) {
	p := &mockProvider{alerts: []alerts.Alert{
		{
			ID:       "urn:oid:2",
			Event:    "Wind Advisory",
			Severity: alerts.SeverityModerate,
			Onset:    windowStart.Add(-30 * time.Hour),
			Ends:     windowStart.Add(-6 * time.Hour),
		},
	}}
	svc := newService(p)

	summary := svc.GetSummary(context.Background(), 40.6, -111.6, windowStart, 8)

	assert.Equal(t, alerts.StatusCurrentOnly, summary.Status)
	assert.False(t, summary.SelectedTimeRelevant)
	assert.Len(t, summary.Alerts, 1)
}

func TestGetSummary_UntimedAlertIsCurrentStateOnly(t *testing.T) {
	p := &mockProvider{alerts: []alerts.Alert{
		{ID: "urn:oid:3", Event: "Special Weather Statement", Severity: alerts.SeverityMinor},
	}}
	svc := newService(p)

	summary := svc.GetSummary(context.Background(), 40.6, -111.6, windowStart, 8)

	assert.Equal(t, alerts.StatusCurrentOnly, summary.Status)
	assert.False(t, summary.SelectedTimeRelevant)
}

func TestGetSummary_NoAlertsStaysOK(t *testing.T) {
	svc := newService(&mockProvider{})

	summary := svc.GetSummary(context.Background(), 40.6, -111.6, windowStart, 8)

	assert.Equal(t, alerts.StatusOK, summary.Status)
	assert.Empty(t, summary.Alerts)
}

func TestMaxSeverity(t *testing.T) {
	summary := &alerts.Summary{Alerts: []alerts.Alert{
		{Severity: alerts.SeverityMinor},
		{Severity: alerts.SeverityExtreme},
		{Severity: alerts.SeverityModerate},
	}}
	assert.Equal(t, alerts.SeverityExtreme, summary.MaxSeverity())

	empty := &alerts.Summary{}
	assert.Equal(t, alerts.SeverityUnknown, empty.MaxSeverity())
}
