package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/trailsafe/trailsafe/internal/api/models"
	"github.com/trailsafe/trailsafe/internal/api/response"
	"github.com/trailsafe/trailsafe/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// serves degraded reports even with every upstream feed down, so readiness
// only requires that feeds have been registered at all.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.registry.FeedCount() == 0 {
		status = models.HealthStatusFail
	}
	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - per-feed circuit and freshness
// status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	feeds := h.registry.GetAllHealth()
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Name < feeds[j].Name })

	overall := models.HealthStatusOK
	statuses := make([]models.FeedStatus, 0, len(feeds))
	var flags []string
	for _, f := range feeds {
		fs := models.FeedStatus{
			Feed:          f.Name,
			Status:        feedStatus(f),
			LastSuccessAt: toTimestamp(f.LastSuccessAt),
			LastFailureAt: toTimestamp(f.LastFailureAt),
		}
		if f.LastError != "" {
			msg := f.LastError
			fs.Message = &msg
		}
		switch fs.Status {
		case models.HealthStatusFail:
			overall = models.HealthStatusDegraded
			flags = append(flags, "feed_unavailable:"+f.Name)
		case models.HealthStatusDegraded:
			if overall == models.HealthStatusOK {
				overall = models.HealthStatusDegraded
			}
			flags = append(flags, "feed_degraded:"+f.Name)
		}
		statuses = append(statuses, fs)
	}

	status := models.SystemStatus{
		Status:                 overall,
		Time:                   models.Timestamp(time.Now()),
		Feeds:                  statuses,
		ActiveDegradationFlags: flags,
	}
	response.JSON(w, r, http.StatusOK, status)
}

func feedStatus(f *resilience.FeedHealth) models.HealthStatus {
	switch {
	case f.IsUnhealthy():
		return models.HealthStatusFail
	case f.IsDegraded():
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

func toTimestamp(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
