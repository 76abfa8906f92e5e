// Package api defines the contracts for API requests and responses.
// It decouples the wire format from the service layer.
package api

import (
	"nodemapper-backend/internal/domain/analytics"
	"nodemapper-backend/internal/domain/graph"
)

// CreateNodeRequest is the expected body for a POST /nodes request.
// Omitted fields take the store defaults.
type CreateNodeRequest struct {
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Label *string  `json:"label,omitempty" validate:"omitempty,max=256"`
}

// CreateEdgeRequest is the expected body for a POST /edges request. It
// decodes with the same leniency as edges inside an analytics graph.
type CreateEdgeRequest struct {
	graph.Edge
}

// AnalyticsRequest is the body of POST /analytics. A nil Graph is analysed
// as the empty graph.
type AnalyticsRequest struct {
	Graph     *graph.Snapshot `json:"graph,omitempty"`
	Start     string          `json:"start,omitempty" validate:"max=256"`
	End       string          `json:"end,omitempty" validate:"max=256"`
	Algorithm string          `json:"algorithm,omitempty"`
}

// Query extracts the path parameters of the request.
func (r AnalyticsRequest) Query() analytics.Query {
	return analytics.Query{Start: r.Start, End: r.End, Algorithm: r.Algorithm}
}

// AnalyticsResponse is returned by POST /analytics.
type AnalyticsResponse = analytics.Result

// StatusResponse is the body of write endpoints that return no entity.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
