// Package docs holds the OpenAPI description served at /swagger/.
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
        "/admin/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Search events in any state",
                "parameters": [
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "multi", "name": "users", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "states", "in": "query"},
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "multi", "name": "categories", "in": "query"},
                    {"type": "string", "name": "rangeStart", "in": "query"},
                    {"type": "string", "name": "rangeEnd", "in": "query"},
                    {"type": "integer", "name": "from", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/admin/events/{eventId}": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Moderate an event",
                "parameters": [
                    {"type": "integer", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Search published events",
                "parameters": [
                    {"type": "string", "name": "text", "in": "query"},
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "multi", "name": "categories", "in": "query"},
                    {"type": "boolean", "name": "paid", "in": "query"},
                    {"type": "string", "name": "rangeStart", "in": "query"},
                    {"type": "string", "name": "rangeEnd", "in": "query"},
                    {"type": "boolean", "name": "onlyAvailable", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "integer", "name": "from", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "429": {"description": "error.code: rate_limited", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get a published event",
                "parameters": [
                    {"type": "integer", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userId}/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["user-events"],
                "summary": "List own events",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "name": "from", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user-events"],
                "summary": "Create an event",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userId}/events/{eventId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["user-events"],
                "summary": "Get own event",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user-events"],
                "summary": "Update own event",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userId}/events/{eventId}/requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["user-events"],
                "summary": "List participation requests for own event",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user-events"],
                "summary": "Confirm or reject participation requests",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userId}/requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "List own participation requests",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Request to participate in an event",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "name": "eventId", "in": "query", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userId}/requests/{requestId}/cancel": {
            "patch": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Cancel own participation request",
                "parameters": [
                    {"type": "integer", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "name": "requestId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "status": {"type": "string"},
                "reason": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "string", "example": "2030-01-01 12:00:00"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
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
	Title:            "Eventhub API",
	Description:      "Event publishing, moderation, participation requests and public search.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
