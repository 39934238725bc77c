// Package api exposes the launchpad adapter over JSON HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"launchpad/internal/launchpad"
	"launchpad/internal/resolver"
	"launchpad/pkg/domain"
)

// Launchpad is the subset of launchpad.Adapter served over HTTP.
type Launchpad interface {
	Groups(ctx context.Context) ([]domain.Group, error)
	AddGroup(ctx context.Context, title string) (domain.Group, error)
	SetGroupTitle(ctx context.Context, group domain.Group, title string) error
	HideGroups(ctx context.Context, ids []string) error
	MoveGroup(ctx context.Context, group domain.Group, index int) error
	RemoveGroup(ctx context.Context, group domain.Group) error
	ResetGroup(ctx context.Context, group domain.Group) (domain.Group, error)
	Catalogs(ctx context.Context) ([]domain.Catalog, error)
	CatalogTiles(ctx context.Context, catalog domain.Catalog) ([]resolver.CatalogEntry, error)
	AddBookmark(ctx context.Context, b launchpad.Bookmark, group *domain.Group) (domain.Tile, error)
	CountBookmarks(ctx context.Context, url string) (int, error)
	UpdateBookmarks(ctx context.Context, url string, upd launchpad.BookmarkUpdate) (int, error)
	DeleteBookmarks(ctx context.Context, url string) (int, error)
}

var _ Launchpad = (*launchpad.Adapter)(nil)

// Handler routes /api/v1 requests to a Launchpad.
type Handler struct {
	Launchpad Launchpad
	Logger    *slog.Logger
}

// NewHandler constructs a launchpad HTTP handler.
func NewHandler(lp Launchpad, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Launchpad: lp, Logger: logger}
}

const (
	groupsPath    = "/api/v1/groups"
	catalogsPath  = "/api/v1/catalogs"
	bookmarksPath = "/api/v1/bookmarks"
)

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Launchpad == nil {
		writeError(w, http.StatusInternalServerError, "launchpad not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == groupsPath:
		h.handleGroups(w, r)
	case path == groupsPath+"/hidden":
		h.handleHidden(w, r)
	case strings.HasPrefix(path, groupsPath+"/"):
		h.handleGroup(w, r, strings.TrimPrefix(path, groupsPath+"/"))
	case path == catalogsPath:
		h.handleCatalogs(w, r)
	case strings.HasPrefix(path, catalogsPath+"/"):
		h.handleCatalogTiles(w, r, strings.TrimPrefix(path, catalogsPath+"/"))
	case path == bookmarksPath:
		h.handleBookmarks(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		groups, err := h.Launchpad.Groups(r.Context())
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
	case http.MethodPost:
		var req struct {
			Title string `json:"title"`
		}
		if !decode(w, r, &req) {
			return
		}
		group, err := h.Launchpad.AddGroup(r.Context(), req.Title)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"group": group})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleHidden(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.Launchpad.HideGroups(r.Context(), req.IDs); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGroup(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	group := domain.Group{ID: segments[0]}
	if group.ID == "" || len(segments) > 2 {
		writeError(w, http.StatusNotFound, "group endpoint not found")
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodPatch:
			var req struct {
				Title string `json:"title"`
			}
			if !decode(w, r, &req) {
				return
			}
			if err := h.Launchpad.SetGroupTitle(r.Context(), group, req.Title); err != nil {
				h.writeFailure(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			if err := h.Launchpad.RemoveGroup(r.Context(), group); err != nil {
				h.writeFailure(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	switch segments[1] {
	case "move":
		var req struct {
			Index *int `json:"index"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.Index == nil {
			writeError(w, http.StatusBadRequest, "index required")
			return
		}
		if err := h.Launchpad.MoveGroup(r.Context(), group, *req.Index); err != nil {
			h.writeFailure(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "reset":
		restored, err := h.Launchpad.ResetGroup(r.Context(), group)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"group": restored})
	default:
		writeError(w, http.StatusNotFound, "group endpoint not found")
	}
}

func (h *Handler) handleCatalogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	catalogs, err := h.Launchpad.Catalogs(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"catalogs": catalogs})
}

type catalogTile struct {
	Key   string                  `json:"key"`
	AppID string                  `json:"appId"`
	Tile  domain.ResolutionResult `json:"tile"`
}

func (h *Handler) handleCatalogTiles(w http.ResponseWriter, r *http.Request, remainder string) {
	id, rest, _ := strings.Cut(remainder, "/")
	if rest != "tiles" {
		writeError(w, http.StatusNotFound, "catalog endpoint not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	catalogs, err := h.Launchpad.Catalogs(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	for _, c := range catalogs {
		if c.ID != id {
			continue
		}
		entries, err := h.Launchpad.CatalogTiles(r.Context(), c)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		tiles := make([]catalogTile, len(entries))
		for i, e := range entries {
			tiles[i] = catalogTile{Key: e.Key, AppID: e.AppID, Tile: e.Tile.Result}
		}
		writeJSON(w, http.StatusOK, map[string]any{"tiles": tiles})
		return
	}
	writeError(w, http.StatusNotFound, "catalog not found")
}

type bookmarkRequest struct {
	launchpad.Bookmark
	Group string `json:"group,omitempty"`
}

func (h *Handler) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req bookmarkRequest
		if !decode(w, r, &req) {
			return
		}
		var group *domain.Group
		if req.Group != "" {
			group = &domain.Group{ID: req.Group}
		}
		tile, err := h.Launchpad.AddBookmark(r.Context(), req.Bookmark, group)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"tile": tile})
		return
	}

	url := r.URL.Query().Get("url")
	switch r.Method {
	case http.MethodGet:
		n, err := h.Launchpad.CountBookmarks(r.Context(), url)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": n})
	case http.MethodPatch:
		var upd launchpad.BookmarkUpdate
		if !decode(w, r, &upd) {
			return
		}
		n, err := h.Launchpad.UpdateBookmarks(r.Context(), url, upd)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"updated": n})
	case http.MethodDelete:
		n, err := h.Launchpad.DeleteBookmarks(r.Context(), url)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

// statusFor maps adapter errors onto HTTP status codes.
func statusFor(err error) int {
	var failure domain.Failure
	switch {
	case errors.Is(err, launchpad.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, launchpad.ErrGroupNotFound), errors.Is(err, launchpad.ErrTileNotFound):
		return http.StatusNotFound
	case errors.Is(err, launchpad.ErrNotResettable):
		return http.StatusConflict
	case errors.Is(err, launchpad.ErrLoadSite):
		return http.StatusServiceUnavailable
	case errors.As(err, &failure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), "api: request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
