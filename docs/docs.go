// Package docs registers the OpenAPI document of the Beauty Booking API with swag.
// Keep it in step with the handler annotations when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "Beauty Booking API is running!", "schema": {"type": "string"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Checks the credentials and returns a bearer token with the user's id, name and email.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/login.Response"}},
                    "400": {"description": "Malformed body", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "description": "Creates an account and returns a bearer token bound to the new user id.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "Account details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/register.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/register.Response"}},
                    "400": {"description": "Missing fields or email already registered", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/appointments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's bookings, latest date first.",
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "List my bookings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Booking"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a pending booking for the caller. A slot is taken when another live booking starts at exactly the same time.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "Book a slot",
                "parameters": [
                    {"description": "Booking", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/create.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Booking"}},
                    "400": {"description": "Time slot unavailable", "schema": {"$ref": "#/definitions/response.MsgResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/appointments/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Allowed transitions: pending to confirmed, pending to cancelled, confirmed to cancelled. Cancelling frees the slot.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "Change a booking's status",
                "parameters": [
                    {"type": "string", "description": "Booking id", "name": "id", "in": "path", "required": true},
                    {"description": "Target status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/status.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Booking"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's bookings, latest date first.",
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "List my bookings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Booking"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a pending booking for the caller. A slot is taken when another live booking starts at exactly the same time.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "Book a slot",
                "parameters": [
                    {"description": "Booking", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/create.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Booking"}},
                    "400": {"description": "Time slot unavailable", "schema": {"$ref": "#/definitions/response.MsgResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/bookings/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Allowed transitions: pending to confirmed, pending to cancelled, confirmed to cancelled. Cancelling frees the slot.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "Change a booking's status",
                "parameters": [
                    {"type": "string", "description": "Booking id", "name": "id", "in": "path", "required": true},
                    {"description": "Target status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/status.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Booking"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.User"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get a user",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "create.Request": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2025-06-01T10:00:00Z"},
                "duration": {"type": "integer", "minimum": 0, "maximum": 1440, "example": 30},
                "notes": {"type": "string"},
                "service": {"type": "string", "example": "haircut"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "login.Response": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "message": {"type": "string", "example": "Login successful"},
                "name": {"type": "string"},
                "token": {"type": "string"},
                "userId": {"type": "string"}
            }
        },
        "models.Booking": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "date": {"type": "string"},
                "duration": {"type": "integer"},
                "id": {"type": "string"},
                "notes": {"type": "string"},
                "service": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "cancelled"]},
                "userId": {"type": "string"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "register.Request": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "register.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "User registered successfully"},
                "token": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Internal server error"}
            }
        },
        "response.MsgResponse": {
            "type": "object",
            "properties": {
                "msg": {"type": "string", "example": "Time slot unavailable"}
            }
        },
        "status.Request": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "confirmed", "cancelled"], "example": "confirmed"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Beauty Booking API",
	Description:      "Accounts, bearer tokens and exact-time booking of salon slots.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
