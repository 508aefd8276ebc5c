package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Saberes Gradebook API",
        "description": "Gradesheet scoring, autosave sync and edit-window management",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Gradebook", "description": "Gradesheet snapshots and bulk score writes"},
        {"name": "EditGrants", "description": "Post-window edit requests and grants"},
        {"name": "Exports", "description": "Gradesheet CSV/PDF exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/gradebook": {
            "get": {
                "tags": ["Gradebook"],
                "summary": "Load the full gradebook for one assignment and period",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "teacher_assignment_id", "in": "query", "required": true, "type": "string"},
                    {"name": "period_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the owning teacher"}
                }
            }
        },
        "/api/v1/gradebook/scores/bulk": {
            "post": {
                "tags": ["Gradebook"],
                "summary": "Persist achievement scores in bulk",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkScoresRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Score outside scale range"}
                }
            }
        },
        "/api/v1/gradebook/activity-scores/bulk": {
            "post": {
                "tags": ["Gradebook"],
                "summary": "Persist activity column scores in bulk",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkActivityScoresRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Score outside scale range"}
                }
            }
        },
        "/api/v1/gradebook/recalculate": {
            "post": {
                "tags": ["Gradebook"],
                "summary": "Queue a full recomputation of final scores",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecalculateRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued"}
                }
            }
        },
        "/api/v1/edit-grants/mine": {
            "get": {
                "tags": ["EditGrants"],
                "summary": "List the caller's active edit grants for a gradesheet",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "teacher_assignment_id", "in": "query", "required": true, "type": "string"},
                    {"name": "period_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/edit-requests": {
            "get": {
                "tags": ["EditGrants"],
                "summary": "List edit requests",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "period_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["EditGrants"],
                "summary": "Request an edit window reopening",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEditRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Edit window still open"}
                }
            }
        },
        "/api/v1/edit-requests/{id}/approve": {
            "post": {
                "tags": ["EditGrants"],
                "summary": "Approve an edit request and issue a grant",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveEditRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Request already reviewed"}
                }
            }
        },
        "/api/v1/edit-requests/{id}/reject": {
            "post": {
                "tags": ["EditGrants"],
                "summary": "Reject an edit request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/gradebook/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Render a gradesheet export and return a signed download URL",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "teacher_assignment_id", "in": "query", "required": true, "type": "string"},
                    {"name": "period_id", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a rendered export with a signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ScoreWrite": {
            "type": "object",
            "properties": {
                "enrollment_id": {"type": "string"},
                "achievement_id": {"type": "string"},
                "score": {"type": "number"}
            },
            "required": ["enrollment_id", "achievement_id"]
        },
        "BulkScoresRequest": {
            "type": "object",
            "properties": {
                "teacher_assignment_id": {"type": "string"},
                "period_id": {"type": "string"},
                "scores": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ScoreWrite"}
                }
            },
            "required": ["teacher_assignment_id", "period_id", "scores"]
        },
        "ActivityScoreWrite": {
            "type": "object",
            "properties": {
                "enrollment_id": {"type": "string"},
                "column_id": {"type": "string"},
                "score": {"type": "number"}
            },
            "required": ["enrollment_id", "column_id"]
        },
        "BulkActivityScoresRequest": {
            "type": "object",
            "properties": {
                "teacher_assignment_id": {"type": "string"},
                "period_id": {"type": "string"},
                "scores": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ActivityScoreWrite"}
                }
            },
            "required": ["teacher_assignment_id", "period_id", "scores"]
        },
        "RecalculateRequest": {
            "type": "object",
            "properties": {
                "teacher_assignment_id": {"type": "string"},
                "period_id": {"type": "string"}
            },
            "required": ["teacher_assignment_id", "period_id"]
        },
        "CreateEditRequestRequest": {
            "type": "object",
            "properties": {
                "teacher_assignment_id": {"type": "string"},
                "period_id": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["teacher_assignment_id", "period_id", "reason"]
        },
        "ApproveEditRequestRequest": {
            "type": "object",
            "properties": {
                "grant_type": {"type": "string", "enum": ["FULL", "PARTIAL"]},
                "valid_until": {"type": "string"},
                "enrollment_ids": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            },
            "required": ["grant_type", "valid_until"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
