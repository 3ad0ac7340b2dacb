package mods

import "github.com/JaimeStill/mod-depot/pkg/openapi"

type spec struct {
	List       *openapi.Operation
	Find       *openapi.Operation
	Upload     *openapi.Operation
	Update     *openapi.Operation
	Delete     *openapi.Operation
	Action     *openapi.Operation
	Download   *openapi.Operation
	Categories *openapi.Operation
	Schemas    map[string]*openapi.Schema
}

var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List mods",
		Description: "List every mod, newest first, with optional search and category filters",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("search", "string", "Case-insensitive match on title, author, or description", false),
			openapi.QueryParam("category", "string", "Exact category; \"all\" disables the filter", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArray("Mods list", "Mod"),
		},
	},
	Find: &openapi.Operation{
		Summary: "Find mod",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Mod ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Mod details", "Mod"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Upload: &openapi.Operation{
		Summary:     "Upload mod",
		Description: "Upload a mod archive with its metadata. Version defaults to 1.0.",
		RequestBody: &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"multipart/form-data": {
					Schema: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"file":        {Type: "string", Format: "binary", Description: "Mod archive"},
							"title":       {Type: "string"},
							"author":      {Type: "string"},
							"category":    {Type: "string", Enum: KnownCategories},
							"description": {Type: "string"},
							"version":     {Type: "string"},
						},
						Required: []string{"file", "title", "author", "category"},
					},
				},
			},
		},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Mod uploaded", "Mod"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			413: {Description: "File too large"},
		},
		Security: openapi.BearerAuth,
	},
	Update: &openapi.Operation{
		Summary:     "Update mod",
		Description: "Update mod metadata. Omitted fields are unchanged; the archive is immutable.",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Mod ID"),
		},
		RequestBody: openapi.RequestBodyJSON("UpdateModCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Mod updated", "Mod"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.BearerAuth,
	},
	Delete: &openapi.Operation{
		Summary:     "Delete mod",
		Description: "Delete a mod record and its archive",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Mod ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Mod deleted", "Success"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.BearerAuth,
	},
	Action: &openapi.Operation{
		Summary:     "Apply mod action",
		Description: "Apply an action to a mod. Only increment_download is supported; unknown ids are ignored.",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Mod ID"),
		},
		RequestBody: openapi.RequestBodyJSON("ModAction", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Action applied", "Success"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Download: &openapi.Operation{
		Summary:     "Download mod",
		Description: "Stream the mod archive and count the download",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Mod ID"),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Mod archive",
				Content: map[string]*openapi.MediaType{
					"application/octet-stream": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Categories: &openapi.Operation{
		Summary:     "List categories",
		Description: "Known categories followed by any others in use, with record counts",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArray("Category counts", "CategoryCount"),
		},
	},
	Schemas: map[string]*openapi.Schema{
		"Mod": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string"},
				"title":         {Type: "string"},
				"description":   {Type: "string", Nullable: true},
				"author":        {Type: "string"},
				"version":       {Type: "string"},
				"category":      {Type: "string"},
				"fileName":      {Type: "string"},
				"fileSize":      {Type: "integer", Format: "int64"},
				"downloadCount": {Type: "integer", Format: "int64"},
				"createdAt":     {Type: "string", Format: "date-time"},
				"updatedAt":     {Type: "string", Format: "date-time"},
			},
		},
		"UpdateModCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"title":       {Type: "string"},
				"description": {Type: "string", Description: "Empty string clears the description"},
				"author":      {Type: "string"},
				"version":     {Type: "string"},
				"category":    {Type: "string"},
			},
		},
		"ModAction": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"action": {Type: "string", Enum: []string{ActionIncrementDownload}},
			},
			Required: []string{"action"},
		},
		"CategoryCount": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"category": {Type: "string"},
				"count":    {Type: "integer"},
			},
		},
		"Success": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
			},
		},
	},
}
