package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash canonicalizes paths with a trailing slash. Safe methods are
// redirected to the slashless path; other methods are rewritten in place
// so request bodies reach the handler. The root path "/" is preserved.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path, ok := trimmed(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				if r.URL.RawQuery != "" {
					path += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, path, http.StatusMovedPermanently)
				return
			}

			r2 := r.Clone(r.Context())
			r2.URL.Path = path
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
		})
	}
}

func trimmed(path string) (string, bool) {
	if len(path) <= 1 || !strings.HasSuffix(path, "/") {
		return path, false
	}
	if t := strings.TrimRight(path, "/"); t != "" {
		return t, true
	}
	return "/", true
}
