// Package docs registers the companion API description with swag.
// The template is maintained by hand alongside the handler annotations in
// server/handlers.go; keep both in step when a route changes.
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
        "/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Persona configuration",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AgentConfig"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Replace the persona configuration",
                "parameters": [{"description": "Persona", "name": "config", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.AgentConfig"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AgentConfig"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/thread": {
            "get": {
                "produces": ["application/json"],
                "tags": ["thread"],
                "summary": "Active path with sibling info and allowed actions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ThreadView"}}}
            }
        },
        "/turns": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["thread"],
                "summary": "Send a prompt and wait for the reply",
                "parameters": [{"description": "Prompt and optional image data URI", "name": "turn", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Turn_Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Turn_Response"}},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/regenerate": {
            "post": {
                "produces": ["application/json"],
                "tags": ["thread"],
                "summary": "Ask for another reply to the last prompt",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Turn_Response"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/messages/{id}/edit": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Fork an edited copy of a message",
                "parameters": [
                    {"type": "string", "description": "Message ID", "name": "id", "in": "path", "required": true},
                    {"description": "New text", "name": "edit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Edit_Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Turn_Response"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/messages/{id}/switch": {
            "post": {
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Activate the latest turn of the branch starting at a message",
                "parameters": [{"type": "string", "description": "Message ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ThreadView"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/messages/{id}/siblings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Alternatives to a message, itself included",
                "parameters": [{"type": "string", "description": "Message ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Message"}}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/messages/{id}/image": {
            "get": {
                "produces": ["image/png"],
                "tags": ["messages"],
                "summary": "Download the image attached to a message",
                "parameters": [{"type": "string", "description": "Message ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "404": {"description": "Not Found"}}
            }
        },
        "/messages/{id}/audio": {
            "get": {
                "produces": ["audio/wav"],
                "tags": ["messages"],
                "summary": "Download a message's speech as WAV",
                "parameters": [{"type": "string", "description": "Message ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "404": {"description": "Not Found"}}
            }
        },
        "/chats/new": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Archive the current thread and start an empty one",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ChatSession"}},
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/sessions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Archived sessions, most recent first",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.SessionSummary"}}}}
            },
            "delete": {
                "tags": ["sessions"],
                "summary": "Drop the current thread and every archived session",
                "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}
            }
        },
        "/sessions/{id}/load": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Restore an archived session, archiving the current thread",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ThreadView"}},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/sessions/{id}": {
            "delete": {
                "tags": ["sessions"],
                "summary": "Delete an archived session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/calls/start": {
            "post": {
                "tags": ["calls"],
                "summary": "Start call mode",
                "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}
            }
        },
        "/calls/end": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "End call mode and record the call",
                "parameters": [{"description": "Optional client-measured duration", "name": "call", "in": "body", "schema": {"$ref": "#/definitions/models.Call_End_Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CallHistory"}},
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/calls": {
            "get": {
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "Call history, most recent first",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CallHistory"}}}}
            },
            "delete": {
                "tags": ["calls"],
                "summary": "Delete the whole call history",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/calls/{id}": {
            "delete": {
                "tags": ["calls"],
                "summary": "Delete one call record",
                "parameters": [{"type": "string", "description": "Call ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/reset": {
            "post": {
                "tags": ["config"],
                "summary": "Wipe all stored state and restore the default persona",
                "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}
            }
        }
    },
    "definitions": {
        "models.AgentConfig": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "personality": {"type": "string"},
                "voice": {"type": "string"},
                "profilePic": {"type": "string"},
                "background": {"type": "string"},
                "blur": {"type": "integer"},
                "transparency": {"type": "integer"}
            }
        },
        "models.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "agent"]},
                "text": {"type": "string"},
                "image": {"type": "string"},
                "audio": {"type": "string"},
                "parentId": {"type": "string"},
                "timestamp": {"type": "integer"}
            }
        },
        "models.MessageView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "role": {"type": "string"},
                "text": {"type": "string"},
                "image": {"type": "string"},
                "audio": {"type": "string"},
                "parentId": {"type": "string"},
                "timestamp": {"type": "integer"},
                "siblingIndex": {"type": "integer"},
                "siblingCount": {"type": "integer"},
                "prevSiblingId": {"type": "string"},
                "nextSiblingId": {"type": "string"},
                "canEdit": {"type": "boolean"},
                "canRegenerate": {"type": "boolean"},
                "hasImage": {"type": "boolean"},
                "hasAudio": {"type": "boolean"}
            }
        },
        "models.ThreadView": {
            "type": "object",
            "properties": {
                "activeMessageId": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/models.MessageView"}},
                "state": {"type": "string", "enum": ["IDLE", "GENERATING_TEXT", "GENERATING_IMAGE", "DONE", "FAILED"]},
                "typing": {"type": "boolean"}
            }
        },
        "models.Turn_Request": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string"},
                "image": {"type": "string"}
            }
        },
        "models.Turn_Response": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "user_message": {"$ref": "#/definitions/models.Message"},
                "agent_message": {"$ref": "#/definitions/models.Message"},
                "error": {"type": "string"}
            }
        },
        "models.Edit_Request": {
            "type": "object",
            "properties": {"text": {"type": "string"}}
        },
        "models.ChatSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/models.Message"}},
                "activeMessageId": {"type": "string"},
                "timestamp": {"type": "integer"}
            }
        },
        "models.SessionSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "messageCount": {"type": "integer"},
                "timestamp": {"type": "integer"}
            }
        },
        "models.Call_End_Request": {
            "type": "object",
            "properties": {"duration": {"type": "string"}}
        },
        "models.CallHistory": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "timestamp": {"type": "integer"},
                "duration": {"type": "string"},
                "status": {"type": "string", "enum": ["completed", "missed"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Companion API",
	Description:      "Branching companion chat with image replies and speech.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
