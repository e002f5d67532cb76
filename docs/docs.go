// Package docs holds the OpenAPI document served by the Swagger UI.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Registration"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Revoke the presented access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/auth/changepassword": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Change the caller's password",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PasswordChange"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/regions": {
            "get": {
                "tags": ["regions"],
                "summary": "List regions",
                "parameters": [
                    {"type": "string", "name": "code", "in": "query"},
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "string", "name": "ordering", "in": "query", "enum": ["asc", "desc"]},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pagesize", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            },
            "post": {
                "tags": ["regions"],
                "summary": "Create a region",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Region"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Region"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/booklovers": {
            "get": {
                "tags": ["booklovers"],
                "summary": "List book lovers",
                "parameters": [
                    {"type": "string", "name": "first_name", "in": "query"},
                    {"type": "string", "name": "birthday", "in": "query", "format": "date"},
                    {"type": "string", "name": "date_of_joining", "in": "query", "format": "date"},
                    {"type": "string", "name": "ordering", "in": "query", "enum": ["asc", "desc"]},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pagesize", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/publishers": {
            "get": {
                "tags": ["publishers"],
                "summary": "List publishers",
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "integer", "name": "region", "in": "query"},
                    {"type": "string", "name": "ordering", "in": "query", "enum": ["asc", "desc"]},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pagesize", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/books": {
            "get": {
                "tags": ["books"],
                "summary": "List books",
                "parameters": [
                    {"type": "string", "name": "title", "in": "query"},
                    {"type": "integer", "name": "year_of_release", "in": "query"},
                    {"type": "integer", "name": "id", "in": "query"},
                    {"type": "string", "name": "ordering", "in": "query", "enum": ["asc", "desc"]},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pagesize", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/books/{id}/cover": {
            "get": {
                "tags": ["books"],
                "summary": "Redirect to the cover photo",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"302": {"description": "Found"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["books"],
                "summary": "Upload a cover photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Book"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            }
        }
    },
    "definitions": {
        "Registration": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "email": {"type": "string"}}
        },
        "Credentials": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "PasswordChange": {
            "type": "object",
            "properties": {"old_password": {"type": "string"}, "new_password": {"type": "string"}}
        },
        "TokenPair": {
            "type": "object",
            "properties": {"access": {"type": "string"}, "refresh": {"type": "string"}}
        },
        "Message": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "Region": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "code": {"type": "string"}, "name": {"type": "string"}}
        },
        "Volume": {
            "type": "object",
            "properties": {"id_volume": {"type": "integer"}, "volume_number": {"type": "integer"}, "number_of_pages": {"type": "integer"}}
        },
        "Book": {
            "type": "object",
            "properties": {
                "id_book": {"type": "integer"},
                "title": {"type": "string"},
                "publisher": {"type": "integer"},
                "year_of_release": {"type": "integer"},
                "cover_photo": {"type": "string"},
                "volumes": {"type": "array", "items": {"$ref": "#/definitions/Volume"}}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "fields": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
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
	Title:            "Catalog API",
	Description:      "Library catalog with token authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
