package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ShootPlan API",
        "description": "Shoot-day scheduling optimizer for film productions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule", "description": "Optimization runs, prediction and ordering"},
        {"name": "ShootingDays", "description": "Persisted schedules"}
    ],
    "paths": {
        "/schedule/optimize": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Start a shoot-day optimization run",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OptimizeScheduleRequest"}}
                ],
                "responses": {
                    "202": {"description": "Run accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"},
                    "422": {"description": "Invalid scene or model too large"}
                }
            }
        },
        "/schedule/optimize/{id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Poll an optimization run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Run not found or expired"}
                }
            },
            "delete": {
                "tags": ["Schedule"],
                "summary": "Cancel an in-flight optimization run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Cancelled"},
                    "404": {"description": "Run not found"},
                    "409": {"description": "Run already finished"}
                }
            }
        },
        "/schedule/optimize/{id}/save": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Persist a completed run as shooting days",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run not finished"}
                }
            }
        },
        "/schedule/optimize/{id}/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Export a completed run as CSV or a PDF call sheet",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "409": {"description": "Run not finished"}
                }
            }
        },
        "/schedule/predict-duration": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Estimate how long a scene takes to shoot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PredictDurationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/scene-order": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Recommend a within-day shooting order",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SceneOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/shooting-days": {
            "get": {
                "tags": ["ShootingDays"],
                "summary": "List saved shooting days",
                "parameters": [
                    {"name": "productionId", "in": "query", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/shooting-days/{id}/scenes/{sceneId}/actual": {
            "post": {
                "tags": ["ShootingDays"],
                "summary": "Record the actual duration of a shot scene",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sceneId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordSceneActualRequest"}}
                ],
                "responses": {
                    "201": {"description": "Recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Day or scene not found"}
                }
            }
        },
        "/duration-history": {
            "get": {
                "tags": ["ShootingDays"],
                "summary": "List recorded scene durations for predictor recalibration",
                "parameters": [
                    {"name": "productionId", "in": "query", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/shooting-days/{id}": {
            "get": {
                "tags": ["ShootingDays"],
                "summary": "Fetch one saved shooting day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Shooting day not found"}
                }
            }
        },
        "/shooting-days/{id}/scenes": {
            "get": {
                "tags": ["ShootingDays"],
                "summary": "List the ordered scenes of one shooting day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "OptimizeScheduleRequest": {
            "type": "object",
            "required": ["productionId", "startDate"],
            "properties": {
                "productionId": {"type": "string"},
                "startDate": {"type": "string", "example": "2026-09-07"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "overrides": {"$ref": "#/definitions/OptimizerOverrides"}
            }
        },
        "OptimizerOverrides": {
            "type": "object",
            "properties": {
                "maxPagesPerDay": {"type": "number"},
                "horizonDays": {"type": "integer"},
                "locationChangePenalty": {"type": "number"},
                "proximityBonus": {"type": "number"},
                "rainThresholdPct": {"type": "integer"},
                "hardWeatherExclusion": {"type": "boolean"},
                "solverTimeBudgetSec": {"type": "integer"}
            }
        },
        "PredictDurationRequest": {
            "type": "object",
            "properties": {
                "sceneId": {"type": "string"},
                "estimatedPages": {"type": "number"},
                "intExt": {"type": "string", "enum": ["INT", "EXT"]},
                "timeOfDay": {"type": "string"},
                "castIds": {"type": "array", "items": {"type": "string"}},
                "shotCount": {"type": "integer"}
            }
        },
        "SceneOrderRequest": {
            "type": "object",
            "required": ["sceneIds"],
            "properties": {
                "sceneIds": {"type": "array", "items": {"type": "string"}},
                "previousSceneId": {"type": "string"},
                "currentLocationId": {"type": "string"},
                "weatherGood": {"type": "boolean"}
            }
        },
        "RecordSceneActualRequest": {
            "type": "object",
            "required": ["actualMinutes"],
            "properties": {
                "actualMinutes": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "totalPages": {"type": "integer"}
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
