// Package server exposes the curator state over a JSON API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kangruixiang/curator/internal/content"
	"github.com/kangruixiang/curator/internal/curator"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/thumbnail"
	"github.com/kangruixiang/curator/internal/tree"
)

var (
	errUnknownAction = errors.New("unknown batch action")
	errBadRequest    = errors.New("bad request")
)

// Batch actions accepted by POST /api/notes/batch.
const (
	ActionDelete    = "delete"
	ActionRestore   = "restore"
	ActionArchive   = "archive"
	ActionUnarchive = "unarchive"
	ActionMove      = "move"
	ActionAddTag    = "add_tag"
	ActionRemoveTag = "remove_tag"
	ActionClearTags = "clear_tags"
)

// Handler serves the API. Notebooks and tags are long-lived shared states;
// note lists and single notes are loaded per request.
type Handler struct {
	client     pocketbase.RecordClient
	publicURL  string
	notebooks  *curator.NotebookState
	tags       *curator.TagState
	settings   *curator.SettingState
	thumbnails *thumbnail.Generator
	merger     *curator.Merger
	events     http.Handler
}

// Options configures the middleware around a Handler.
type Options struct {
	PublicURL      string
	AllowedOrigins []string
}

// NewHandler creates a Handler. publicURL replaces the local PocketBase origin
// in note content. events serves GET /api/events and may be nil.
func NewHandler(
	client pocketbase.RecordClient,
	publicURL string,
	notebooks *curator.NotebookState,
	tags *curator.TagState,
	thumbnails *thumbnail.Generator,
	events http.Handler,
) *Handler {
	return &Handler{
		client:     client,
		publicURL:  strings.TrimRight(publicURL, "/"),
		notebooks:  notebooks,
		tags:       tags,
		settings:   curator.NewSettingState(client),
		thumbnails: thumbnails,
		merger:     curator.NewMerger(client, thumbnails),
		events:     events,
	}
}

// Routes registers the endpoints on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /api/notebooks", h.listNotebooks)
	mux.HandleFunc("GET /api/tags", h.listTags)
	mux.HandleFunc("GET /api/notes", h.listNotes)
	mux.HandleFunc("GET /api/notes/{id}", h.getNote)
	mux.HandleFunc("POST /api/notes/merge", h.mergeNotes)
	mux.HandleFunc("POST /api/notes/batch", h.batchNotes)
	mux.HandleFunc("DELETE /api/trash", h.emptyTrash)
	mux.HandleFunc("GET /api/settings", h.getSettings)
	if h.events != nil {
		mux.Handle("GET /api/events", h.events)
	}
	return mux
}

// Wrap adds the CSP and CORS middleware to next.
func Wrap(next http.Handler, opts Options) http.Handler {
	return corsMiddleware(cspMiddleware(next, opts.PublicURL), opts.AllowedOrigins)
}

type groupNode struct {
	curator.Group
	Children []groupNode `json:"children"`
}

func groupNodes(nodes []*tree.Node[curator.Group]) []groupNode {
	result := make([]groupNode, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, groupNode{
			Group:    n.Item,
			Children: groupNodes(n.Children),
		})
	}
	return result
}

type groupsResponse struct {
	Flat    []curator.Group `json:"flat"`
	Pinned  []curator.Group `json:"pinned"`
	Tree    []groupNode     `json:"tree"`
	Orphans []groupNode     `json:"orphans"`
}

func newGroupsResponse(flat, pinned []curator.Group, forest tree.Forest[curator.Group]) groupsResponse {
	if flat == nil {
		flat = []curator.Group{}
	}
	if pinned == nil {
		pinned = []curator.Group{}
	}
	return groupsResponse{
		Flat:    flat,
		Pinned:  pinned,
		Tree:    groupNodes(forest.Roots),
		Orphans: groupNodes(forest.Orphans),
	}
}

type notebooksResponse struct {
	groupsResponse
	Inbox          curator.Notebook `json:"inbox"`
	TotalNoteCount int              `json:"totalNoteCount"`
}

type mergeRequest struct {
	IDs []string `json:"ids"`
}

type batchRequest struct {
	Action   string   `json:"action"`
	IDs      []string `json:"ids"`
	Notebook string   `json:"notebook"`
	Tag      string   `json:"tag"`
}

type trashResponse struct {
	Deleted int `json:"deleted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listNotebooks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, notebooksResponse{
		groupsResponse: newGroupsResponse(h.notebooks.Flat(), h.notebooks.Pinned(), h.notebooks.Tree()),
		Inbox:          h.notebooks.Inbox(),
		TotalNoteCount: h.notebooks.TotalNoteCount(),
	})
}

func (h *Handler) listTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newGroupsResponse(h.tags.Flat(), h.tags.Pinned(), h.tags.Tree()))
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := curator.ListQuery{
		View:   curator.View(query.Get("view")),
		ID:     query.Get("id"),
		Filter: query.Get("filter"),
		Page:   1,
	}
	if p := query.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 1 {
			writeError(w, r, errBadRequest)
			return
		}
		q.Page = page
	}

	page, err := curator.NewNoteListState(h.client, nil).Fetch(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	note, err := curator.NewNoteState(h.client, h.thumbnails).Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	note.Content = content.RewriteOrigin(note.Content, content.LocalOrigin, h.publicURL)
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) mergeNotes(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errBadRequest)
		return
	}

	merged, err := curator.NewNoteListState(h.client, h.merger).Merge(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

func (h *Handler) batchNotes(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errBadRequest)
		return
	}

	list := curator.NewNoteListState(h.client, nil)
	ctx := r.Context()
	var err error
	switch req.Action {
	case ActionDelete:
		err = list.SoftDelete(ctx, req.IDs)
	case ActionRestore:
		err = list.Restore(ctx, req.IDs)
	case ActionArchive:
		err = list.Archive(ctx, req.IDs)
	case ActionUnarchive:
		err = list.Unarchive(ctx, req.IDs)
	case ActionMove:
		err = list.ChangeNotebook(ctx, req.IDs, req.Notebook)
	case ActionAddTag:
		err = list.AddTag(ctx, req.IDs, req.Tag)
	case ActionRemoveTag:
		err = list.RemoveTag(ctx, req.IDs, req.Tag)
	case ActionClearTags:
		err = list.ClearTags(ctx, req.IDs)
	default:
		err = errUnknownAction
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) emptyTrash(w http.ResponseWriter, r *http.Request) {
	deleted, err := curator.NewNoteListState(h.client, nil).EmptyTrash(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trashResponse{Deleted: deleted})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.LoadDefaults(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", slog.Any("error", err))
	}
}

func statusOf(err error) int {
	switch {
	case pocketbase.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, curator.ErrUnknownView),
		errors.Is(err, curator.ErrNotEnoughNotes),
		errors.Is(err, errUnknownAction),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
