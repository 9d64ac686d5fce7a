// Package docs holds the swagger description served at /swagger.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/auth/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/auth/user": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List transactions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListTransactionsResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Create a transaction",
                "parameters": [{"in": "body", "name": "transaction", "required": true, "schema": {"$ref": "#/definitions/dto.TransactionRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/transactions/claim": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Claim unowned transactions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClaimResponse"}}}
            }
        },
        "/transactions/{transactionID}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Update a transaction",
                "parameters": [
                    {"type": "string", "name": "transactionID", "in": "path", "required": true},
                    {"in": "body", "name": "transaction", "required": true, "schema": {"$ref": "#/definitions/dto.TransactionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Delete a transaction",
                "parameters": [
                    {"type": "string", "name": "transactionID", "in": "path", "required": true},
                    {"type": "boolean", "name": "confirm", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DeleteTransactionResponse"}}, "428": {"description": "Precondition Required", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard view",
                "parameters": [
                    {"type": "string", "name": "month", "in": "query"},
                    {"type": "string", "name": "year", "in": "query"},
                    {"type": "string", "name": "kind", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DashboardResponse"}}}
            }
        },
        "/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["events"],
                "summary": "Realtime events",
                "responses": {"200": {"description": "event stream", "schema": {"type": "string"}}}
            }
        },
        "/categories/suggested": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Suggested categories",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "dto.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "dto.LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}, "expiresAt": {"type": "string"}, "session": {"$ref": "#/definitions/dto.SessionResponse"}}},
        "dto.SessionResponse": {"type": "object", "properties": {"sessionId": {"type": "string"}, "ownerIdentity": {"type": "string"}, "expiresAt": {"type": "string"}, "createdAt": {"type": "string"}, "user": {"$ref": "#/definitions/dto.UserResponse"}}},
        "dto.UserResponse": {"type": "object", "properties": {"userId": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}, "metadata": {"type": "object"}}},
        "dto.TransactionRequest": {"type": "object", "properties": {"date": {"type": "string"}, "establishment": {"type": "string"}, "amount": {"type": "string"}, "kind": {"type": "string"}, "category": {"type": "string"}, "notes": {"type": "string"}}},
        "dto.TransactionResponse": {"type": "object", "properties": {"transactionId": {"type": "string"}, "date": {"type": "string"}, "rawDate": {"type": "string"}, "establishment": {"type": "string"}, "amount": {"type": "string"}, "kind": {"type": "string"}, "category": {"type": "string"}, "notes": {"type": "string"}, "claimed": {"type": "boolean"}}},
        "dto.ListTransactionsResponse": {"type": "object", "properties": {"transactions": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}}}},
        "dto.DeleteTransactionResponse": {"type": "object", "properties": {"transactionId": {"type": "string"}, "deleted": {"type": "boolean"}}},
        "dto.ClaimResponse": {"type": "object", "properties": {"claimed": {"type": "integer"}, "alreadyRun": {"type": "boolean"}}},
        "dto.DashboardResponse": {"type": "object", "properties": {"periodLabel": {"type": "string"}, "degraded": {"type": "boolean"}, "years": {"type": "array", "items": {"type": "integer"}}, "categories": {"type": "array", "items": {"type": "string"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Finance Dashboard API",
	Description:      "Backend of the personal finance dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
