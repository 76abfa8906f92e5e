package handlers

// This file contains OpenAPI/Swagger annotations for the REST handlers.
// The generated document lives in docs/swagger.

// CreateNode creates a node
// @Summary Create a node
// @Description Creates a node with a generated id. Omitted fields default to x=100, y=100, label="Node".
// @Tags graph
// @Accept json
// @Produce json
// @Param request body api.CreateNodeRequest false "Node attributes"
// @Success 200 {object} graph.Node "Created node"
// @Failure 400 {object} errors.ErrorResponse "Invalid request"
// @Failure 413 {object} errors.ErrorResponse "Request body too large"
// @Router /nodes [post]

// CreateEdge appends an edge
// @Summary Create an edge
// @Description Appends an edge. Endpoints are not required to exist.
// @Tags graph
// @Accept json
// @Produce json
// @Param request body api.CreateEdgeRequest true "Edge"
// @Success 200 {object} api.StatusResponse "Edge stored"
// @Failure 400 {object} errors.ErrorResponse "Missing source or target"
// @Router /edges [post]

// GetNode returns a node
// @Summary Get a node
// @Tags graph
// @Produce json
// @Param nodeID path string true "Node ID"
// @Success 200 {object} graph.Node "Node"
// @Failure 404 {object} errors.ErrorResponse "Node not found"
// @Router /nodes/{nodeID} [get]

// GetGraph returns the stored graph
// @Summary Get the stored graph
// @Description Nodes are keyed by id in insertion order; edges are in arrival order.
// @Tags graph
// @Produce json
// @Success 200 {object} graph.Snapshot "Graph"
// @Router /graph [get]

// Analyze runs graph analytics
// @Summary Analyse a graph
// @Description Computes statistics and, when start and end are given, a shortest path. A missing or null graph is analysed as the empty graph.
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body api.AnalyticsRequest false "Analytics request"
// @Success 200 {object} api.AnalyticsResponse "Statistics and optional path"
// @Failure 400 {object} errors.ErrorResponse "Invalid request or graph over limits"
// @Failure 413 {object} errors.ErrorResponse "Request body too large"
// @Failure 503 {object} errors.ErrorResponse "Circuit breaker open"
// @Router /analytics [post]

// Health reports liveness
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} api.HealthResponse
// @Router /health [get]

// Ready reports readiness
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} api.HealthResponse
// @Failure 503 {object} api.HealthResponse
// @Router /ready [get]
