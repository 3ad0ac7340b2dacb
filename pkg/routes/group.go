// Package routes describes HTTP route groups and registers them on a ServeMux
// while contributing their operations to an OpenAPI document.
package routes

import (
	"net/http"

	"github.com/JaimeStill/mod-depot/pkg/openapi"
)

// Route represents an HTTP route with method, pattern, and handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group represents a collection of routes under a common URL prefix.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
	Schemas     map[string]*openapi.Schema
}

// AddToSpec adds the group's documented operations to spec under basePath.
// Operations without tags inherit the group tags.
func (g Group) AddToSpec(basePath string, spec *openapi.Spec) {
	if len(g.Schemas) > 0 {
		spec.AddSchemas(g.Schemas)
	}

	prefix := basePath + g.Prefix
	for _, route := range g.Routes {
		if route.OpenAPI == nil {
			continue
		}
		if len(route.OpenAPI.Tags) == 0 {
			route.OpenAPI.Tags = g.Tags
		}
		spec.AddOperation(prefix+route.Pattern, route.Method, route.OpenAPI)
	}
	for _, child := range g.Children {
		child.AddToSpec(prefix, spec)
	}
}

// Register mounts every group on mux relative to the mux root and documents it
// in spec under basePath. The mux is expected to be served behind basePath.
func Register(mux *http.ServeMux, basePath string, spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
		if spec != nil {
			group.AddToSpec(basePath, spec)
		}
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	prefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, prefix, child)
	}
}
