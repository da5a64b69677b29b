package curator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/tree"
)

// groupView is the derived state shared by notebooks and tags.
type groupView struct {
	flat   []Group
	pinned []Group
	forest tree.Forest[Group]
}

func deriveGroupView(groups []Group) groupView {
	view := groupView{
		flat:   groups,
		pinned: []Group{},
		forest: tree.Build(groups,
			func(g Group) string { return g.ID },
			func(g Group) string { return g.Parent },
		),
	}
	for _, g := range groups {
		if g.IsPinned() {
			view.pinned = append(view.pinned, g)
		}
	}
	for _, orphan := range view.forest.Orphans {
		slog.Default().Debug("group parent not found",
			slog.String("id", orphan.Item.ID),
			slog.String("name", orphan.Item.Name),
			slog.String("parent", orphan.Item.Parent))
	}
	return view
}

// groupStore fetches a hierarchy from a view and writes to its collection.
type groupStore struct {
	client     pocketbase.RecordClient
	collection string
	view       string

	mu      sync.RWMutex
	derived groupView
}

func (s *groupStore) refresh(ctx context.Context) error {
	var groups []Group
	if err := s.client.GetFullList(ctx, s.view, pocketbase.ListOptions{
		Sort:   "name",
		Expand: "parent",
	}, &groups); err != nil {
		return fmt.Errorf("client.GetFullList(%s) > %w", s.view, err)
	}
	derived := deriveGroupView(groups)

	s.mu.Lock()
	s.derived = derived
	s.mu.Unlock()
	return nil
}

func (s *groupStore) flat() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Group(nil), s.derived.flat...)
}

func (s *groupStore) pinned() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Group(nil), s.derived.pinned...)
}

func (s *groupStore) tree() tree.Forest[Group] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.derived.forest
}

func (s *groupStore) get(ctx context.Context, id string) (Group, error) {
	var g Group
	if err := s.client.GetOne(ctx, s.collection, id, pocketbase.RecordOptions{}, &g); err != nil {
		return Group{}, fmt.Errorf("client.GetOne(%s, %s) > %w", s.collection, id, err)
	}
	return g, nil
}

func (s *groupStore) create(ctx context.Context, name, parentID string) (Group, error) {
	var g Group
	if err := s.client.Create(ctx, s.collection, map[string]any{
		"name":   name,
		"parent": parentID,
	}, &g); err != nil {
		return Group{}, fmt.Errorf("client.Create(%s, %s) > %w", s.collection, name, err)
	}
	return g, nil
}

func (s *groupStore) update(ctx context.Context, id string, body map[string]any) error {
	if err := s.client.Update(ctx, s.collection, id, body, pocketbase.RecordOptions{}, nil); err != nil {
		return fmt.Errorf("client.Update(%s, %s) > %w", s.collection, id, err)
	}
	return nil
}

func (s *groupStore) delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("client.Delete(%s, %s) > %w", s.collection, id, err)
	}
	return nil
}
