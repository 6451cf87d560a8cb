// Package docs registers the OpenAPI description served under /swagger.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/registration": {
            "post": {
                "tags": ["auth"], "summary": "Register a user",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/authorization": {
            "post": {
                "tags": ["auth"], "summary": "Log in with email and password",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/credentialsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/logout": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"], "summary": "Revoke the presented bearer token",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/files": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["files"], "summary": "Upload one or more files",
                "consumes": ["multipart/form-data"], "produces": ["application/json"],
                "parameters": [{"type": "file", "name": "files", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/uploadItem"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "array", "items": {"$ref": "#/definitions/uploadItem"}}}
                }
            }
        },
        "/files/disk": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["files"], "summary": "List own files with their grants",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/diskItem"}}}}
            }
        },
        "/files/{file_id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["files"], "summary": "Rename a file",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "file_id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/renameRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/files/{pk}/delete": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["files"], "summary": "Delete a file with its grants",
                "parameters": [{"type": "string", "name": "pk", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/files/{file_id}/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["files"], "summary": "Download a file as an attachment",
                "produces": ["application/octet-stream"],
                "parameters": [{"type": "string", "name": "file_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/files/{file_id}/link": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["files"], "summary": "Get a presigned download link",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "file_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/linkResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/files/{file_id}/accesses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["accesses"], "summary": "Grant co-author access by email",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "file_id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/accessEntry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["accesses"], "summary": "Revoke co-author access by email",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "file_id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/accessEntry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/shared": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["files"], "summary": "List files uploaded by other users",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/fileItem"}}}}
            }
        }
    },
    "definitions": {
        "registerRequest": {"type": "object", "properties": {
            "email": {"type": "string"}, "password": {"type": "string"},
            "first_name": {"type": "string"}, "last_name": {"type": "string"}}},
        "credentialsRequest": {"type": "object", "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}}},
        "renameRequest": {"type": "object", "properties": {"name": {"type": "string"}}},
        "accessRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "tokenResponse": {"type": "object", "properties": {
            "success": {"type": "boolean"}, "message": {"type": "string"}, "token": {"type": "string"}}},
        "messageResponse": {"type": "object", "properties": {
            "success": {"type": "boolean"}, "message": {"type": "string"}}},
        "linkResponse": {"type": "object", "properties": {
            "url": {"type": "string"}, "expires_in": {"type": "integer"}}},
        "uploadItem": {"type": "object", "properties": {
            "success": {"type": "boolean"}, "message": {"type": "string"}, "name": {"type": "string"},
            "url": {"type": "string"}, "file_id": {"type": "string"},
            "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}}},
        "accessEntry": {"type": "object", "properties": {
            "fullname": {"type": "string"}, "email": {"type": "string"}, "type": {"type": "string"}}},
        "fileItem": {"type": "object", "properties": {
            "file_id": {"type": "string"}, "name": {"type": "string"}, "url": {"type": "string"}}},
        "diskItem": {"type": "object", "properties": {
            "file_id": {"type": "string"}, "name": {"type": "string"}, "url": {"type": "string"},
            "accesses": {"type": "array", "items": {"$ref": "#/definitions/accessEntry"}}}},
        "errorPayload": {"type": "object", "properties": {
            "success": {"type": "boolean"}, "message": {"type": "string"}, "request_id": {"type": "string"},
            "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
            "error": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "File Share API",
	Description:      "Upload files, share them with co-authors by email and manage access.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
