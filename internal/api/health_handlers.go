package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Component status values.
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports whether the server and its database are reachable",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth is the status of one dependency.
type ComponentHealth struct {
	Status  string `json:"status" doc:"healthy, unhealthy or disabled"`
	Message string `json:"message,omitempty" doc:"Why the component is not healthy"`
}

// HealthResponse contains health check data.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"healthy when every enabled component is"`
	Components map[string]ComponentHealth `json:"components" doc:"Per-component status"`
	Documents  uint64                     `json:"search_documents,omitempty" doc:"Documents in the search index"`
}

// HealthOutput wraps health check response.
type HealthOutput struct {
	Status int
	Body   HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status:     statusHealthy,
		Components: make(map[string]ComponentHealth, 2),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(pingCtx); err != nil {
		s.logger.Error("Health check: database unreachable", "error", err)
		resp.Status = statusUnhealthy
		resp.Components["database"] = ComponentHealth{Status: statusUnhealthy, Message: "database unreachable"}
	} else {
		resp.Components["database"] = ComponentHealth{Status: statusHealthy}
	}

	switch count, err := s.services.Search.DocumentCount(); {
	case s.services.Search == nil:
		resp.Components["search"] = ComponentHealth{Status: statusDisabled}
	case err != nil:
		s.logger.Warn("Health check: search index unavailable", "error", err)
		resp.Status = statusUnhealthy
		resp.Components["search"] = ComponentHealth{Status: statusUnhealthy, Message: "search index unavailable"}
	default:
		resp.Components["search"] = ComponentHealth{Status: statusHealthy}
		resp.Documents = count
	}

	status := http.StatusOK
	if resp.Status != statusHealthy {
		status = http.StatusServiceUnavailable
	}
	return &HealthOutput{Status: status, Body: resp}, nil
}
