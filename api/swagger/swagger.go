package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Console",
        "description": "Server-rendered student management screen backed by the remote student API",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Console", "description": "Student management screen actions"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/": {
            "get": {
                "tags": ["Console"],
                "summary": "Render the student screen",
                "produces": ["text/html"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/state": {
            "get": {
                "tags": ["Console"],
                "summary": "Current view state",
                "description": "Pending notices are reported in meta.notices and are not consumed.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StateEnvelope"}}
                }
            }
        },
        "/search": {
            "post": {
                "tags": ["Console"],
                "summary": "Search students by term",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "term", "in": "formData", "type": "string", "description": "Sent to the API as typed"}
                ],
                "responses": {
                    "303": {"description": "Back to the screen"}
                }
            }
        },
        "/refresh": {
            "post": {
                "tags": ["Console"],
                "summary": "Reload the full student list",
                "responses": {
                    "303": {"description": "Back to the screen"}
                }
            }
        },
        "/students/new": {
            "post": {
                "tags": ["Console"],
                "summary": "Open the add student modal",
                "responses": {
                    "303": {"description": "Back to the screen"}
                }
            }
        },
        "/students/{id}/edit": {
            "post": {
                "tags": ["Console"],
                "summary": "Open the edit modal for a listed student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "303": {"description": "Back to the screen"}
                }
            }
        },
        "/students/{id}/delete": {
            "get": {
                "tags": ["Console"],
                "summary": "Delete confirmation prompt",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Console"],
                "summary": "Delete a student once confirmed",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "confirm", "in": "formData", "required": true, "type": "string", "enum": ["yes", "no"]}
                ],
                "responses": {
                    "303": {"description": "Back to the screen"}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Console"],
                "summary": "Download the displayed student list",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modal/field": {
            "post": {
                "tags": ["Console"],
                "summary": "Update one modal form field",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "name", "in": "formData", "required": true, "type": "string",
                     "enum": ["name", "surname", "gender", "dateOfBirth", "homeAddress", "emailAddress", "phoneNumber", "courseId"]},
                    {"name": "value", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Updated"},
                    "400": {"description": "Unknown field", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modal/close": {
            "post": {
                "tags": ["Console"],
                "summary": "Close the modal and discard the form",
                "responses": {
                    "303": {"description": "Back to the screen"}
                }
            }
        },
        "/modal/submit": {
            "post": {
                "tags": ["Console"],
                "summary": "Save the modal form",
                "description": "Applies every posted form field, then creates or updates the student.",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "name", "in": "formData", "type": "string"},
                    {"name": "surname", "in": "formData", "type": "string"},
                    {"name": "gender", "in": "formData", "type": "string", "enum": ["Male", "Female", "Other"]},
                    {"name": "dateOfBirth", "in": "formData", "type": "string", "format": "date"},
                    {"name": "homeAddress", "in": "formData", "type": "string"},
                    {"name": "emailAddress", "in": "formData", "type": "string", "format": "email"},
                    {"name": "phoneNumber", "in": "formData", "type": "string"},
                    {"name": "courseId", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "303": {"description": "Back to the screen"}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "studentId": {"type": "integer"},
                "studentNumber": {"type": "string"},
                "name": {"type": "string"},
                "surname": {"type": "string"},
                "gender": {"type": "string", "enum": ["Male", "Female", "Other"]},
                "dateOfBirth": {"type": "string", "format": "date"},
                "homeAddress": {"type": "string"},
                "emailAddress": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "courseId": {"type": "integer"},
                "course": {"type": "object", "properties": {"name": {"type": "string"}}}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "courseId": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "Notice": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["success", "error"]},
                "message": {"type": "string"}
            }
        },
        "ViewState": {
            "type": "object",
            "properties": {
                "students": {"type": "array", "items": {"$ref": "#/definitions/Student"}},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/Course"}},
                "loading": {"type": "boolean"},
                "searchTerm": {"type": "string"},
                "modalOpen": {"type": "boolean"},
                "editing": {"$ref": "#/definitions/Student"},
                "form": {"type": "object"},
                "mounted": {"type": "boolean"}
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
                "meta": {"type": "object"}
            }
        },
        "StateEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ViewState"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "notices": {"type": "array", "items": {"$ref": "#/definitions/Notice"}}
                    }
                }
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
