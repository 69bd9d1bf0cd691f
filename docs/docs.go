// Package docs registers the gateway's OpenAPI document with swag.
package docs

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
        "/health": {
            "get": {
                "description": "Reports that the process is serving requests",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Runs every component check concurrently and reports request and runtime stats",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/health.HealthResponse"}}
                }
            }
        },
        "/api/ask": {
            "post": {
                "description": "Sends the question to the text model as a single-turn conversation",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["solver"],
                "summary": "Answer a text question",
                "parameters": [
                    {
                        "description": "Question",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.AskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AskResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/solve": {
            "post": {
                "description": "Submits the uploaded image to the vision model and returns the normalized solution text",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["solver"],
                "summary": "Solve a screenshot",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Screenshot image",
                        "name": "screenshot",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SolveResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AskRequest": {
            "type": "object",
            "properties": {"question": {"type": "string", "example": "What is 2+2?"}}
        },
        "dto.AskResponse": {
            "type": "object",
            "properties": {"answer": {"type": "string", "example": "4"}}
        },
        "dto.SolveResponse": {
            "type": "object",
            "properties": {"solution": {"type": "string", "example": "x = 3"}}
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "Question is required"}}
        },
        "health.ComponentStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "latency_ms": {"type": "integer"},
                "status": {"$ref": "#/definitions/health.Status"}
            }
        },
        "health.HealthResponse": {
            "type": "object",
            "properties": {
                "components": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/health.ComponentStatus"}
                },
                "stats": {"$ref": "#/definitions/health.Stats"},
                "status": {"$ref": "#/definitions/health.Status"},
                "timestamp": {"type": "string"},
                "uptime_seconds": {"type": "integer"},
                "version": {"type": "string"}
            }
        },
        "health.RequestStats": {
            "type": "object",
            "properties": {
                "active_connections": {"type": "integer"},
                "total_requests": {"type": "integer"}
            }
        },
        "health.RuntimeStats": {
            "type": "object",
            "properties": {
                "goroutines": {"type": "integer"},
                "memory_alloc_mb": {"type": "integer"},
                "memory_sys_mb": {"type": "integer"},
                "memory_total_alloc_mb": {"type": "integer"},
                "num_gc": {"type": "integer"}
            }
        },
        "health.Stats": {
            "type": "object",
            "properties": {
                "requests": {"$ref": "#/definitions/health.RequestStats"},
                "runtime": {"$ref": "#/definitions/health.RuntimeStats"}
            }
        },
        "health.Status": {
            "type": "string",
            "enum": ["healthy", "degraded", "unhealthy"],
            "x-enum-varnames": ["StatusHealthy", "StatusDegraded", "StatusUnhealthy"]
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SnapSolve Gateway API",
	Description:      "Screenshot and question answering gateway in front of an OpenAI-compatible provider",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
