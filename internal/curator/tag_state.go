package curator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/tree"
)

// TagState holds every tag with its note count, the pinned tags and the tag tree.
type TagState struct {
	store groupStore
}

// NewTagState creates an empty TagState; call Refresh or Watch to fill it.
func NewTagState(client pocketbase.RecordClient) *TagState {
	return &TagState{
		store: groupStore{
			client:     client,
			collection: TagsCollection,
			view:       TagsView,
		},
	}
}

// Refresh refetches all tags and re-derives the views.
// On failure the previous state is kept.
func (s *TagState) Refresh(ctx context.Context) error {
	return s.store.refresh(ctx)
}

// Flat returns all tags sorted by name.
func (s *TagState) Flat() []Tag {
	return s.store.flat()
}

// Pinned returns the pinned tags.
func (s *TagState) Pinned() []Tag {
	return s.store.pinned()
}

// Tree returns the tag hierarchy. The nodes are shared and must not be modified.
func (s *TagState) Tree() tree.Forest[Tag] {
	return s.store.tree()
}

// Get fetches a single tag.
func (s *TagState) Get(ctx context.Context, id string) (Tag, error) {
	return s.store.get(ctx, id)
}

// Create adds a tag under parentID, or at the top level when parentID is empty.
func (s *TagState) Create(ctx context.Context, name, parentID string) (Tag, error) {
	tag, err := s.store.create(ctx, name, parentID)
	return tag, s.afterMutation(ctx, err)
}

func (s *TagState) Rename(ctx context.Context, id, name string) error {
	err := s.store.update(ctx, id, map[string]any{"name": name})
	return s.afterMutation(ctx, err)
}

// SetParent moves a tag under parentID; an empty parentID makes it a root.
func (s *TagState) SetParent(ctx context.Context, id, parentID string) error {
	err := s.store.update(ctx, id, map[string]any{"parent": parentID})
	return s.afterMutation(ctx, err)
}

func (s *TagState) Pin(ctx context.Context, id string) error {
	err := s.store.update(ctx, id, map[string]any{"status": Pinned})
	return s.afterMutation(ctx, err)
}

func (s *TagState) Unpin(ctx context.Context, id string) error {
	err := s.store.update(ctx, id, map[string]any{"status": Unpinned})
	return s.afterMutation(ctx, err)
}

func (s *TagState) Delete(ctx context.Context, id string) error {
	err := s.store.delete(ctx, id)
	return s.afterMutation(ctx, err)
}

// afterMutation refreshes whether or not the mutation succeeded.
func (s *TagState) afterMutation(ctx context.Context, err error) error {
	if refreshErr := s.Refresh(ctx); refreshErr != nil {
		return errors.Join(err, refreshErr)
	}
	return err
}

// Watch refreshes now and again whenever a note changes, since note counts
// are part of the tag view.
func (s *TagState) Watch(ctx context.Context, sub pocketbase.Subscriber) (*Watch, error) {
	return startWatch(ctx, sub, []string{NotesCollection + "/*"}, func(ctx context.Context) {
		if err := s.Refresh(ctx); err != nil {
			slog.Default().Error("failed to refresh tags", slog.Any("error", err))
		}
	})
}
