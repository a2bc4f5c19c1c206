package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"koomy/portal/internal/models/entities"
)

// Pinger is anything the health check can ping
type Pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger struct {
	deps *Dependencies
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.deps.Redis.Ping(ctx).Err()
}

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Reports the upload ledger and redis status and the uptime.
// @Tags Misc
// @Success 200 {object} entities.HealthCheckResponse
// @Failure 503 {object} entities.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(checks map[string]Pinger, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus, len(checks))
		for name, p := range checks {
			status := entities.ServiceStatus{Status: "ok", Details: "Connected"}
			if err := p.Ping(ctx); err != nil {
				status = entities.ServiceStatus{Status: "down", Details: err.Error()}
			}
			services[name] = status
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// healthChecks lists the backends configured for this instance
func (d *Dependencies) healthChecks() map[string]Pinger {
	checks := make(map[string]Pinger)
	if d.Ledger != nil {
		checks["ledger"] = d.Ledger
	}
	if d.Redis != nil {
		checks["redis"] = redisPinger{deps: d}
	}
	return checks
}
