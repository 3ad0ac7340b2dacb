package auth

import "github.com/JaimeStill/mod-depot/pkg/openapi"

type spec struct {
	Login   *openapi.Operation
	Me      *openapi.Operation
	Schemas map[string]*openapi.Schema
}

var Spec = spec{
	Login: &openapi.Operation{
		Summary:     "Sign in",
		Description: "Exchange administrator credentials for a bearer token",
		RequestBody: openapi.RequestBodyJSON("LoginRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Session issued", "Session"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
	Me: &openapi.Operation{
		Summary:     "Current administrator",
		Description: "Return the account the bearer token was issued for",
		Security:    openapi.BearerAuth,
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Signed-in account", "User"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
		},
	},
	Schemas: map[string]*openapi.Schema{
		"LoginRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"email":    {Type: "string", Format: "email"},
				"password": {Type: "string", Format: "password"},
			},
			Required: []string{"email", "password"},
		},
		"User": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":        {Type: "string"},
				"email":     {Type: "string", Format: "email"},
				"name":      {Type: "string"},
				"isAdmin":   {Type: "boolean"},
				"createdAt": {Type: "string", Format: "date-time"},
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"user":      openapi.SchemaRef("User"),
				"token":     {Type: "string"},
				"expiresAt": {Type: "string", Format: "date-time"},
			},
		},
	},
}
