package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/mod-depot/pkg/handlers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()

	handlers.RespondJSON(w, http.StatusCreated, map[string]int{"fileSize": 10})

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]int
	json.NewDecoder(resp.Body).Decode(&body)
	if body["fileSize"] != 10 {
		t.Errorf("body = %v, want fileSize 10", body)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		err     error
		wantMsg string
	}{
		{
			"client error keeps message",
			http.StatusBadRequest,
			errors.New("title is required"),
			"title is required",
		},
		{
			"not found keeps message",
			http.StatusNotFound,
			errors.New("mod not found"),
			"mod not found",
		},
		{
			"server error hides details",
			http.StatusInternalServerError,
			errors.New("open /srv/data/mods.json: permission denied"),
			handlers.InternalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.RespondError(w, testLogger(), tt.status, tt.err)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}

			var body map[string]string
			json.NewDecoder(resp.Body).Decode(&body)
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMsg)
			}
		})
	}
}

func TestRespondSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	handlers.RespondSuccess(w)

	var body map[string]bool
	json.NewDecoder(w.Body).Decode(&body)
	if !body["success"] {
		t.Errorf("body = %v, want success true", body)
	}
}
