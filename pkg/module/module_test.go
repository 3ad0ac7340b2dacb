package module_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/mod-depot/pkg/module"
)

func echoPath() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
}

func body(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	data, _ := io.ReadAll(w.Result().Body)
	return w.Code, string(data)
}

func TestNew_InvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "/", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, echoPath())
		})
	}
}

func TestModule_Serve(t *testing.T) {
	m := module.New("/api", echoPath())

	tests := []struct {
		path string
		want string
	}{
		{"/api", "/"},
		{"/api/mods", "/mods"},
		{"/api/mods/abc/download", "/mods/abc/download"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			m.Serve(w, req)
			if w.Body.String() != tt.want {
				t.Errorf("path = %q, want %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestModule_MiddlewareOrder(t *testing.T) {
	var order []string

	m := module.New("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	for _, name := range []string{"first", "second"} {
		m.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	m.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRouter(t *testing.T) {
	r := module.NewRouter()
	r.Mount(module.New("/api", echoPath()))
	r.HandleNative("GET /healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("OK"))
	})
	r.HandleNative("GET /uploads/{key...}", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(req.PathValue("key")))
	})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"module root", "/api", http.StatusOK, "/"},
		{"module root trailing slash", "/api/", http.StatusOK, "/"},
		{"module path", "/api/mods", http.StatusOK, "/mods"},
		{"module trailing slash", "/api/mods/", http.StatusOK, "/mods"},
		{"native", "/healthz", http.StatusOK, "OK"},
		{"native wildcard", "/uploads/1-abc.zip", http.StatusOK, "1-abc.zip"},
		{"prefix lookalike", "/apix", http.StatusNotFound, ""},
		{"unknown", "/unknown", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, got := body(t, r, tt.path)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}
