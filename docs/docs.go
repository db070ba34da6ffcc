// Package docs holds the hand-maintained OpenAPI document served under
// /swagger. It describes the /api/v1 routes only; the operational endpoints
// (/health/live, /health/ready, /metrics) are left out. Keep it in step with
// api.NewRouter, which router_test.go checks.
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
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Request a confirmation code",
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/auth/token": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange a confirmation code for a token",
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "List users",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Create a user",
                "consumes": ["application/json"],
                "responses": {"201": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get own profile",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Update own profile",
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/users/{username}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get a user",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}
            }
        },
        "/categories": {
            "get": {
                "tags": ["categories"],
                "summary": "List categories",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "Create a category",
                "consumes": ["application/json"],
                "responses": {"201": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/categories/{slug}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "Delete a category",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}
            }
        },
        "/genres": {
            "get": {
                "tags": ["genres"],
                "summary": "List genres",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["genres"],
                "summary": "Create a genre",
                "consumes": ["application/json"],
                "responses": {"201": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/genres/{slug}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["genres"],
                "summary": "Delete a genre",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}
            }
        },
        "/titles": {
            "get": {
                "tags": ["titles"],
                "summary": "List titles",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["titles"],
                "summary": "Create a title",
                "consumes": ["application/json"],
                "responses": {"201": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/titles/{title_id}": {
            "get": {
                "tags": ["titles"],
                "summary": "Get a title",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["titles"],
                "summary": "Update a title",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}],
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["titles"],
                "summary": "Delete a title",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}
            }
        },
        "/titles/{title_id}/reviews": {
            "get": {
                "tags": ["reviews"],
                "summary": "List reviews of a title",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["reviews"],
                "summary": "Create a review",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}],
                "consumes": ["application/json"],
                "responses": {"201": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/titles/{title_id}/reviews/{review_id}": {
            "get": {
                "tags": ["reviews"],
                "summary": "Get a review",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["reviews"],
                "summary": "Update a review",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}],
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["reviews"],
                "summary": "Delete a review",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}
            }
        },
        "/titles/{title_id}/reviews/{review_id}/comments": {
            "get": {
                "tags": ["comments"],
                "summary": "List comments of a review",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["comments"],
                "summary": "Create a comment",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}],
                "consumes": ["application/json"],
                "responses": {"201": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/titles/{title_id}/reviews/{review_id}/comments/{comment_id}": {
            "get": {
                "tags": ["comments"],
                "summary": "Get a comment",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}, {"type": "integer", "name": "comment_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["comments"],
                "summary": "Update a comment",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}, {"type": "integer", "name": "comment_id", "in": "path", "required": true}],
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["comments"],
                "summary": "Delete a comment",
                "parameters": [{"type": "integer", "name": "title_id", "in": "path", "required": true}, {"type": "integer", "name": "review_id", "in": "path", "required": true}, {"type": "integer", "name": "comment_id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Title:            "reviewhub API",
	Description:      "Reviews and comments on categorized titles, with email-code signup and bearer tokens.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
