package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/mod-depot/pkg/database"
)

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyHandler(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name  string
		ready bool
		db    database.Pinger
		want  int
		body  string
	}{
		{"starting", false, nil, http.StatusServiceUnavailable, "NOT READY"},
		{"ready without database", true, nil, http.StatusOK, "READY"},
		{"ready with database", true, up, http.StatusOK, "READY"},
		{"database down", true, down, http.StatusServiceUnavailable, "DATABASE UNAVAILABLE"},
		{"database not verified", true, pingFunc(func(context.Context) error { return database.ErrNotReady }), http.StatusServiceUnavailable, "DATABASE UNAVAILABLE"},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			readyHandler(readiness(tt.ready), tt.db, logger)(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
