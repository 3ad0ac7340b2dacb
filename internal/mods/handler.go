package mods

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/JaimeStill/mod-depot/pkg/handlers"
	"github.com/JaimeStill/mod-depot/pkg/routes"
)

// ActionIncrementDownload is the PATCH action that counts a download.
const ActionIncrementDownload = "increment_download"

// multipartOverhead is the allowance for form fields and part headers on
// top of the payload limit.
const multipartOverhead = 1 << 20

// Guard wraps handlers that require an authenticated administrator.
type Guard func(http.HandlerFunc) http.HandlerFunc

// ActionRequest is the PATCH body.
type ActionRequest struct {
	Action string `json:"action"`
}

// Handler provides HTTP endpoints for mod operations.
type Handler struct {
	sys           System
	guard         Guard
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a mod handler. Mutating routes are wrapped with guard.
func NewHandler(sys System, guard Guard, logger *slog.Logger, maxUploadSize int64) *Handler {
	if guard == nil {
		guard = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return &Handler{
		sys:           sys,
		guard:         guard,
		logger:        logger.With("handler", "mods"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the mod endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/mods",
		Tags:        []string{"Mods"},
		Description: "Mod upload, browsing, and downloads",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "POST", Pattern: "", Handler: h.guard(h.Upload), OpenAPI: Spec.Upload},
			{Method: "PUT", Pattern: "/{id}", Handler: h.guard(h.Update), OpenAPI: Spec.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.guard(h.Delete), OpenAPI: Spec.Delete},
			{Method: "PATCH", Pattern: "/{id}", Handler: h.Action, OpenAPI: Spec.Action},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download, OpenAPI: Spec.Download},
		},
		Schemas: Spec.Schemas,
	}
}

// CategoryRoutes returns the category listing route group.
func (h *Handler) CategoryRoutes() routes.Group {
	return routes.Group{
		Prefix:      "/categories",
		Tags:        []string{"Mods"},
		Description: "Mod categories",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Categories, OpenAPI: Spec.Categories},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.List(r.Context(), FiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	m, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			handlers.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Errorf("buffer upload: %w", err))
			return
		}
		h.logger.Warn("malformed upload", "error", err)
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: malformed multipart body", ErrInvalidFile))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: file required", ErrInvalidFile))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	cmd := UploadCommand{
		Title:        r.FormValue("title"),
		Author:       r.FormValue("author"),
		Version:      r.FormValue("version"),
		Category:     r.FormValue("category"),
		OriginalName: header.Filename,
		Body:         io.NewSectionReader(file, 0, header.Size),
	}
	if d := r.FormValue("description"); d != "" {
		cmd.Description = &d
	}

	m, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, m)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	m, err := h.sys.Update(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondSuccess(w)
}

func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	switch req.Action {
	case ActionIncrementDownload:
		if err := h.sys.RecordDownload(r.Context(), r.PathValue("id")); err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondSuccess(w)
	default:
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action))
	}
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	m, rc, err := h.sys.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": m.FileName}))
	w.Header().Set("Content-Length", strconv.FormatInt(m.FileSize, 10))
	w.Header().Set("Content-Location", h.sys.FilePath(m))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("download interrupted", "id", m.ID, "error", err)
	}
}

// ServeFile serves a stored archive by blob key from the {key...} path value.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	rc, err := h.sys.Open(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" || strings.HasPrefix(contentType, "text/html") {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("file transfer interrupted", "key", key, "error", err)
	}
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Categories(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
