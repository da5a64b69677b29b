package curator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/tree"
)

// NotebookState holds every notebook with its note count, the Inbox and the
// number of active notes.
type NotebookState struct {
	store groupStore

	mu             sync.RWMutex
	inbox          Notebook
	totalNoteCount int
}

// NewNotebookState creates an empty NotebookState; call Refresh or Watch to fill it.
func NewNotebookState(client pocketbase.RecordClient) *NotebookState {
	return &NotebookState{
		store: groupStore{
			client:     client,
			collection: NotebooksCollection,
			view:       NotebooksView,
		},
	}
}

// Refresh refetches all notebooks and re-derives the views.
func (s *NotebookState) Refresh(ctx context.Context) error {
	return s.store.refresh(ctx)
}

// RefreshAll refreshes notebooks, the Inbox and the total count. Every part is
// attempted even when an earlier one fails.
func (s *NotebookState) RefreshAll(ctx context.Context) error {
	var errs []error
	if err := s.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.RefreshInbox(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.RefreshCounts(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RefreshInbox fetches the Inbox notebook with its note count.
func (s *NotebookState) RefreshInbox(ctx context.Context) (Notebook, error) {
	inbox, err := s.GetByName(ctx, InboxNotebook)
	if err != nil {
		return Notebook{}, err
	}
	s.mu.Lock()
	s.inbox = inbox
	s.mu.Unlock()
	return inbox, nil
}

// RefreshCounts counts the active notes.
func (s *NotebookState) RefreshCounts(ctx context.Context) error {
	var items []Note
	page, err := s.store.client.GetList(ctx, NotesCollection, 1, 1, pocketbase.ListOptions{
		Filter: statusFilter(StatusActive),
		Fields: "id",
	}, &items)
	if err != nil {
		return fmt.Errorf("client.GetList(%s) > %w", NotesCollection, err)
	}
	s.mu.Lock()
	s.totalNoteCount = page.TotalItems
	s.mu.Unlock()
	return nil
}

func (s *NotebookState) Flat() []Notebook {
	return s.store.flat()
}

func (s *NotebookState) Pinned() []Notebook {
	return s.store.pinned()
}

// Tree returns the notebook hierarchy. The nodes are shared and must not be modified.
func (s *NotebookState) Tree() tree.Forest[Notebook] {
	return s.store.tree()
}

// Inbox returns the last fetched Inbox; its ID is empty before RefreshInbox.
func (s *NotebookState) Inbox() Notebook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inbox
}

// TotalNoteCount returns the number of active notes.
func (s *NotebookState) TotalNoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalNoteCount
}

// GetByName fetches a notebook by its exact name from the counting view.
func (s *NotebookState) GetByName(ctx context.Context, name string) (Notebook, error) {
	var nb Notebook
	if err := s.store.client.GetFirstListItem(ctx, NotebooksView, nameFilter(name), pocketbase.RecordOptions{}, &nb); err != nil {
		return Notebook{}, fmt.Errorf("client.GetFirstListItem(%s, %s) > %w", NotebooksView, name, err)
	}
	return nb, nil
}

// Create adds a notebook under parentID, or at the top level when parentID is empty.
func (s *NotebookState) Create(ctx context.Context, name, parentID string) (Notebook, error) {
	return s.store.create(ctx, name, parentID)
}

func (s *NotebookState) Rename(ctx context.Context, id, name string) error {
	return s.store.update(ctx, id, map[string]any{"name": name})
}

// SetParent moves a notebook under parentID; an empty parentID makes it a root.
func (s *NotebookState) SetParent(ctx context.Context, id, parentID string) error {
	return s.store.update(ctx, id, map[string]any{"parent": parentID})
}

func (s *NotebookState) Pin(ctx context.Context, id string) error {
	return s.store.update(ctx, id, map[string]any{"status": Pinned})
}

func (s *NotebookState) Unpin(ctx context.Context, id string) error {
	return s.store.update(ctx, id, map[string]any{"status": Unpinned})
}

// Delete moves every note of the notebook into the Inbox and then deletes the
// notebook. Notes that fail to move are logged and the deletion still happens.
func (s *NotebookState) Delete(ctx context.Context, id string) error {
	var notes []Note
	if err := s.store.client.GetFullList(ctx, NotesView, pocketbase.ListOptions{
		Filter: "notebook=" + quote(id),
		Fields: "id",
	}, &notes); err != nil {
		return fmt.Errorf("client.GetFullList(%s) > %w", NotesView, err)
	}

	inbox := s.Inbox()
	if inbox.ID == "" {
		var err error
		if inbox, err = s.RefreshInbox(ctx); err != nil {
			return err
		}
	}
	if inbox.ID == id {
		return fmt.Errorf("cannot delete the %s notebook", InboxNotebook)
	}

	var errs []error
	for _, note := range notes {
		if err := s.store.client.Update(ctx, NotesCollection, note.ID, map[string]any{
			"notebook": inbox.ID,
		}, pocketbase.RecordOptions{}, nil); err != nil {
			slog.Default().Error("failed to move note to inbox",
				slog.String("note", note.ID),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("client.Update(%s, %s) > %w", NotesCollection, note.ID, err))
		}
	}

	if err := s.store.delete(ctx, id); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Watch refreshes now and again on every notebook or note change.
func (s *NotebookState) Watch(ctx context.Context, sub pocketbase.Subscriber) (*Watch, error) {
	topics := []string{NotebooksCollection + "/*", NotesCollection + "/*"}
	return startWatch(ctx, sub, topics, func(ctx context.Context) {
		if err := s.RefreshAll(ctx); err != nil {
			slog.Default().Error("failed to refresh notebooks", slog.Any("error", err))
		}
	})
}
