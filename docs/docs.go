// Package docs holds the OpenAPI description served under /swagger.
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
        "/api/analyses": {
            "get": {
                "description": "Returns the most recent analysis runs, newest first.",
                "produces": ["application/json"],
                "tags": ["Analysis"],
                "summary": "List Analysis Runs",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Maximum number of runs",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dto.AnalysisRunListResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    }
                }
            }
        },
        "/api/analyze-image": {
            "post": {
                "description": "Runs pose analysis on a single base64-encoded image. A data URI prefix is accepted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Analysis"],
                "summary": "Analyze Image",
                "parameters": [
                    {
                        "description": "Image payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.AnalyzeImageRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/entities.AnalysisResult"}
                    },
                    "400": {
                        "description": "No image provided / Invalid image encoding",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    },
                    "413": {
                        "description": "Request body too large",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    },
                    "500": {
                        "description": "Analysis failed",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    }
                }
            }
        },
        "/api/analyze-video": {
            "post": {
                "description": "Runs pose analysis on an uploaded video file.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Analysis"],
                "summary": "Analyze Video",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Video file",
                        "name": "video",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "default": "desk",
                        "description": "Analysis mode",
                        "name": "mode",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/entities.AnalysisResult"}
                    },
                    "400": {
                        "description": "No video file uploaded",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    },
                    "500": {
                        "description": "Analysis failed",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    }
                }
            }
        },
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health Check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dto.HealthResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.AnalysisRunDTO": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "duration_ms": {"type": "integer"},
                "error_kind": {"type": "string"},
                "exit_code": {"type": "integer"},
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "mode": {"type": "string"},
                "status": {"type": "string"},
                "total_frames": {"type": "integer"},
                "violation_count": {"type": "integer"}
            }
        },
        "dto.AnalysisRunListResponse": {
            "type": "object",
            "properties": {
                "runs": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/dto.AnalysisRunDTO"}
                }
            }
        },
        "dto.AnalyzeImageRequest": {
            "type": "object",
            "properties": {
                "image": {"type": "string", "example": "data:image/jpeg;base64,/9j/4AAQSkZJRg..."},
                "mode": {"type": "string", "example": "desk"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "detail": {"type": "string"},
                "error": {"type": "string"},
                "raw": {"type": "string"},
                "stderr": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "entities.AnalysisResult": {
            "type": "object",
            "properties": {
                "total_frames": {"type": "integer"},
                "violations": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/entities.Violation"}
                }
            }
        },
        "entities.Violation": {
            "type": "object",
            "properties": {
                "frame": {"type": "integer"},
                "issue": {"type": "string"},
                "value": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Posture Analyzer API",
	Description:      "Pose analysis for images and videos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
