// Package swagger registers the OpenAPI document of the node-mapper API.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/nodes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["graph"],
                "summary": "Create a node",
                "parameters": [
                    {
                        "description": "Node attributes",
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/api.CreateNodeRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Created node", "schema": {"$ref": "#/definitions/graph.Node"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "413": {"description": "Request body too large", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/nodes/{nodeID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["graph"],
                "summary": "Get a node",
                "parameters": [
                    {"type": "string", "description": "Node ID", "name": "nodeID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Node", "schema": {"$ref": "#/definitions/graph.Node"}},
                    "404": {"description": "Node not found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/edges": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["graph"],
                "summary": "Create an edge",
                "parameters": [
                    {
                        "description": "Edge",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/graph.Edge"}
                    }
                ],
                "responses": {
                    "200": {"description": "Edge stored", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "400": {"description": "Missing source or target", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/graph": {
            "get": {
                "produces": ["application/json"],
                "tags": ["graph"],
                "summary": "Get the stored graph",
                "responses": {
                    "200": {"description": "Graph", "schema": {"$ref": "#/definitions/graph.Snapshot"}}
                }
            }
        },
        "/analytics": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Analyse a graph",
                "description": "Computes statistics and, when start and end are given, a shortest path. A missing or null graph is analysed as the empty graph.",
                "parameters": [
                    {
                        "description": "Analytics request",
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/api.AnalyticsRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Statistics and optional path", "schema": {"$ref": "#/definitions/analytics.Result"}},
                    "400": {"description": "Invalid request or graph over limits", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "413": {"description": "Request body too large", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Circuit breaker open", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "graph.Node": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "x": {"type": "number"},
                "y": {"type": "number"},
                "label": {"type": "string"}
            }
        },
        "graph.Edge": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "target": {"type": "string"},
                "id": {"type": "string"},
                "weight": {"type": "number"},
                "width": {"type": "number"},
                "directed": {"type": "boolean"}
            }
        },
        "graph.Snapshot": {
            "type": "object",
            "properties": {
                "nodes": {"type": "object", "additionalProperties": {"$ref": "#/definitions/graph.Node"}},
                "edges": {"type": "array", "items": {"$ref": "#/definitions/graph.Edge"}}
            }
        },
        "api.CreateNodeRequest": {
            "type": "object",
            "properties": {
                "x": {"type": "number"},
                "y": {"type": "number"},
                "label": {"type": "string", "maxLength": 256}
            }
        },
        "api.AnalyticsRequest": {
            "type": "object",
            "properties": {
                "graph": {"$ref": "#/definitions/graph.Snapshot"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "algorithm": {"type": "string", "enum": ["auto", "bfs", "dijkstra"]}
            }
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "analytics.Stats": {
            "type": "object",
            "properties": {
                "nodeCount": {"type": "integer"},
                "edgeCount": {"type": "integer"},
                "components": {"type": "integer"},
                "averageDegree": {"type": "number"},
                "maxDegree": {"type": "integer"},
                "isolated": {"type": "integer"}
            }
        },
        "analytics.Path": {
            "type": "object",
            "properties": {
                "nodes": {"type": "array", "items": {"type": "string"}},
                "edges": {"type": "array", "items": {"type": "string"}},
                "algorithm": {"type": "string", "enum": ["bfs", "dijkstra"]},
                "cost": {"type": "number"}
            }
        },
        "analytics.Result": {
            "type": "object",
            "properties": {
                "stats": {"$ref": "#/definitions/analytics.Stats"},
                "path": {"$ref": "#/definitions/analytics.Path"},
                "pathError": {"type": "string"}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "boolean"},
                "type": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "request_id": {"type": "string"},
                "trace_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Node Mapper API",
	Description:      "Graph editing and analytics: structural statistics and shortest paths.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
