package openapi

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// NewSpec creates an empty OpenAPI 3.1 document with the given title and version.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Paths: make(map[string]*PathItem),
		Components: &Components{
			Schemas:         make(map[string]*Schema),
			Responses:       defaultResponses(),
			SecuritySchemes: make(map[string]*SecurityScheme),
		},
	}
}

// SetDescription sets the API description.
func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddServer appends a server URL. Empty URLs are ignored.
func (s *Spec) AddServer(url string) {
	if url == "" {
		return
	}
	s.Servers = append(s.Servers, &Server{URL: url})
}

// AddSchemas merges schemas into components/schemas.
func (s *Spec) AddSchemas(schemas map[string]*Schema) {
	for name, schema := range schemas {
		s.Components.Schemas[name] = schema
	}
}

// AddSecurityScheme registers a named security scheme.
func (s *Spec) AddSecurityScheme(name string, scheme *SecurityScheme) {
	s.Components.SecuritySchemes[name] = scheme
}

// AddOperation attaches op to path under the given HTTP method.
// Path parameters use ServeMux syntax, which matches OpenAPI templating.
func (s *Spec) AddOperation(path, method string, op *Operation) {
	if op == nil {
		return
	}

	item := s.Paths[path]
	if item == nil {
		item = &PathItem{}
		s.Paths[path] = item
	}

	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodDelete:
		item.Delete = op
	}
}

// MarshalJSON serializes the spec with indentation.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// WriteJSON serializes the spec to path, creating parent directories.
func WriteJSON(spec *Spec, path string) error {
	data, err := MarshalJSON(spec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ServeSpec returns a handler that writes the pre-serialized spec.
func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(spec)
	}
}

func defaultResponses() map[string]*Response {
	errorBody := map[string]*MediaType{
		"application/json": {
			Schema: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string"},
				},
			},
		},
	}

	return map[string]*Response{
		"BadRequest":   {Description: "Invalid request", Content: errorBody},
		"Unauthorized": {Description: "Missing or invalid credentials", Content: errorBody},
		"Forbidden":    {Description: "Credentials lack the required role", Content: errorBody},
		"NotFound":     {Description: "Resource not found", Content: errorBody},
		"ServerError":  {Description: "Internal server error", Content: errorBody},
	}
}
