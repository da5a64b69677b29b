package curator

import (
	"context"
	"fmt"
	"sync"

	"github.com/kangruixiang/curator/internal/pocketbase"
)

// View selects which notes a NoteListState shows.
type View string

const (
	ViewDefault  View = "default"
	ViewNotebook View = "notebook"
	ViewTag      View = "tag"
	ViewArchive  View = "archive"
	ViewTrash    View = "trash"
	ViewSearch   View = "search"
)

// Views lists every View in display order.
var Views = []View{ViewDefault, ViewNotebook, ViewTag, ViewArchive, ViewTrash, ViewSearch}

// ListQuery identifies one page of a view. ID is the notebook or tag id for
// those views and Filter is the PocketBase filter for ViewSearch.
type ListQuery struct {
	View   View
	ID     string
	Filter string
	Page   int
}

// listRequest maps a query onto the collection and options to fetch.
func listRequest(q ListQuery) (collection string, opts pocketbase.ListOptions, err error) {
	opts = pocketbase.ListOptions{
		Sort:   "-created",
		Expand: noteExpand,
	}
	collection = NotesView
	switch q.View {
	case ViewDefault, "":
		opts.Filter = statusFilter(StatusActive)
	case ViewNotebook:
		opts.Filter = notebookFilter(q.ID)
	case ViewTag:
		opts.Filter = tagFilter(q.ID)
	case ViewArchive:
		opts.Filter = statusFilter(StatusArchived)
	case ViewTrash:
		opts.Filter = statusFilter(StatusDeleted)
	case ViewSearch:
		collection = NotesCollection
		opts.Filter = q.Filter
	default:
		return "", opts, fmt.Errorf("%w: %q", ErrUnknownView, q.View)
	}
	return collection, opts, nil
}

// NoteListState holds the current page of a note list. Each fetch replaces it.
type NoteListState struct {
	client pocketbase.RecordClient
	merger *Merger

	mu    sync.RWMutex
	query ListQuery
	page  NotePage
}

// NewNoteListState creates a NoteListState. merger may be nil when merging is not needed.
func NewNoteListState(client pocketbase.RecordClient, merger *Merger) *NoteListState {
	return &NoteListState{
		client: client,
		merger: merger,
		page:   NotePage{Items: []Note{}},
	}
}

// Fetch loads one page of q and makes it the current state. On failure the
// previous page is kept.
func (s *NoteListState) Fetch(ctx context.Context, q ListQuery) (NotePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	collection, opts, err := listRequest(q)
	if err != nil {
		return NotePage{}, err
	}

	page := NotePage{Items: []Note{}}
	info, err := s.client.GetList(ctx, collection, q.Page, notesPerPage, opts, &page.Items)
	if err != nil {
		return NotePage{}, fmt.Errorf("client.GetList(%s, page %d) > %w", collection, q.Page, err)
	}
	page.PageInfo = info

	s.mu.Lock()
	s.query = q
	s.page = page
	s.mu.Unlock()
	return page, nil
}

// Reload fetches the current query again.
func (s *NoteListState) Reload(ctx context.Context) (NotePage, error) {
	return s.Fetch(ctx, s.Query())
}

// Page returns the current page.
func (s *NoteListState) Page() NotePage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page := s.page
	page.Items = append([]Note(nil), s.page.Items...)
	return page
}

// Query returns the query of the current page.
func (s *NoteListState) Query() ListQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *NoteListState) updateEach(ctx context.Context, op string, ids []string, body map[string]any) error {
	return runBatch(ctx, op, ids, func(ctx context.Context, id string) error {
		return s.client.Update(ctx, NotesCollection, id, body, pocketbase.RecordOptions{}, nil)
	})
}

// SoftDelete moves notes to the trash.
func (s *NoteListState) SoftDelete(ctx context.Context, ids []string) error {
	return s.updateEach(ctx, "soft delete", ids, map[string]any{"status": StatusDeleted})
}

// Restore moves notes out of the trash.
func (s *NoteListState) Restore(ctx context.Context, ids []string) error {
	return s.updateEach(ctx, "restore", ids, map[string]any{"status": StatusActive})
}

func (s *NoteListState) Archive(ctx context.Context, ids []string) error {
	return s.updateEach(ctx, "archive", ids, map[string]any{"status": StatusArchived})
}

func (s *NoteListState) Unarchive(ctx context.Context, ids []string) error {
	return s.updateEach(ctx, "unarchive", ids, map[string]any{"status": StatusActive})
}

func (s *NoteListState) ChangeNotebook(ctx context.Context, ids []string, notebookID string) error {
	return s.updateEach(ctx, "change notebook", ids, map[string]any{"notebook": notebookID})
}

func (s *NoteListState) AddTag(ctx context.Context, ids []string, tagID string) error {
	return s.updateEach(ctx, "add tag", ids, map[string]any{"tags+": tagID})
}

func (s *NoteListState) RemoveTag(ctx context.Context, ids []string, tagID string) error {
	return s.updateEach(ctx, "remove tag", ids, map[string]any{"tags-": tagID})
}

func (s *NoteListState) ClearTags(ctx context.Context, ids []string) error {
	return s.updateEach(ctx, "clear tags", ids, map[string]any{"tags": []string{}})
}

// EmptyTrash permanently deletes every note in the trash and returns how many it tried to delete.
func (s *NoteListState) EmptyTrash(ctx context.Context) (int, error) {
	var notes []Note
	if err := s.client.GetFullList(ctx, NotesView, pocketbase.ListOptions{
		Filter: statusFilter(StatusDeleted),
		Fields: "id",
	}, &notes); err != nil {
		return 0, fmt.Errorf("client.GetFullList(%s) > %w", NotesView, err)
	}

	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	err := runBatch(ctx, "delete", ids, func(ctx context.Context, id string) error {
		return s.client.Delete(ctx, NotesCollection, id)
	})
	return len(ids), err
}

// Merge merges the notes into the first one.
func (s *NoteListState) Merge(ctx context.Context, ids []string) (Note, error) {
	if s.merger == nil {
		return Note{}, fmt.Errorf("merge is not configured")
	}
	return s.merger.Merge(ctx, ids)
}
