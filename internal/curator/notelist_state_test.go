package curator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kangruixiang/curator/internal/pocketbase"
)

func TestListRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          ListQuery
		wantCollection string
		wantFilter     string
		wantErr        error
	}{
		{name: "default", query: ListQuery{}, wantCollection: NotesView, wantFilter: `status="active"`},
		{name: "notebook", query: ListQuery{View: ViewNotebook, ID: "nb1"}, wantCollection: NotesView, wantFilter: `notebook="nb1" && status="active"`},
		{name: "tag", query: ListQuery{View: ViewTag, ID: "t1"}, wantCollection: NotesView, wantFilter: `tags~"t1" && status="active"`},
		{name: "archive", query: ListQuery{View: ViewArchive}, wantCollection: NotesView, wantFilter: `status="archived"`},
		{name: "trash", query: ListQuery{View: ViewTrash}, wantCollection: NotesView, wantFilter: `status="deleted"`},
		{name: "search", query: ListQuery{View: ViewSearch, Filter: `title~"go"`}, wantCollection: NotesCollection, wantFilter: `title~"go"`},
		{name: "unknown", query: ListQuery{View: "starred"}, wantErr: ErrUnknownView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection, opts, err := listRequest(tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCollection, collection)
			assert.Equal(t, tt.wantFilter, opts.Filter)
			assert.Equal(t, "-created", opts.Sort)
			assert.Equal(t, "notebook,tags", opts.Expand)
		})
	}
}

func TestNoteListState_Fetch(t *testing.T) {
	client := newMockClient(t)
	client.EXPECT().GetList(gomock.Any(), NotesView, 1, 24, pocketbase.ListOptions{
		Sort:   "-created",
		Filter: `status="archived"`,
		Expand: "notebook,tags",
	}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _ int, _ pocketbase.ListOptions, dest any) (pocketbase.PageInfo, error) {
			assign(t, dest, []Note{{ID: "n1", Title: "first"}, {ID: "n2", Title: "second"}})
			return pocketbase.PageInfo{Page: 1, PerPage: 24, TotalItems: 2, TotalPages: 1}, nil
		})
	client.EXPECT().GetList(gomock.Any(), NotesView, 2, 24, gomock.Any(), gomock.Any()).
		Return(pocketbase.PageInfo{}, errors.New("offline"))

	state := NewNoteListState(client, nil)
	page, err := state.Fetch(context.Background(), ListQuery{View: ViewArchive, Page: 0})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, ListQuery{View: ViewArchive, Page: 1}, state.Query())

	_, err = state.Fetch(context.Background(), ListQuery{View: ViewArchive, Page: 2})
	require.Error(t, err)
	assert.Equal(t, "first", state.Page().Items[0].Title)
	assert.Equal(t, 1, state.Query().Page)
}

func TestNoteListState_Batch(t *testing.T) {
	ids := []string{"n1", "n2", "n3"}

	tests := []struct {
		name     string
		wantBody map[string]any
		run      func(ctx context.Context, state *NoteListState) error
	}{
		{name: "soft delete", wantBody: map[string]any{"status": StatusDeleted}, run: func(ctx context.Context, s *NoteListState) error { return s.SoftDelete(ctx, ids) }},
		{name: "restore", wantBody: map[string]any{"status": StatusActive}, run: func(ctx context.Context, s *NoteListState) error { return s.Restore(ctx, ids) }},
		{name: "archive", wantBody: map[string]any{"status": StatusArchived}, run: func(ctx context.Context, s *NoteListState) error { return s.Archive(ctx, ids) }},
		{name: "unarchive", wantBody: map[string]any{"status": StatusActive}, run: func(ctx context.Context, s *NoteListState) error { return s.Unarchive(ctx, ids) }},
		{name: "change notebook", wantBody: map[string]any{"notebook": "nb2"}, run: func(ctx context.Context, s *NoteListState) error { return s.ChangeNotebook(ctx, ids, "nb2") }},
		{name: "add tag", wantBody: map[string]any{"tags+": "t1"}, run: func(ctx context.Context, s *NoteListState) error { return s.AddTag(ctx, ids, "t1") }},
		{name: "remove tag", wantBody: map[string]any{"tags-": "t1"}, run: func(ctx context.Context, s *NoteListState) error { return s.RemoveTag(ctx, ids, "t1") }},
		{name: "clear tags", wantBody: map[string]any{"tags": []string{}}, run: func(ctx context.Context, s *NoteListState) error { return s.ClearTags(ctx, ids) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			for _, id := range ids {
				client.EXPECT().Update(gomock.Any(), NotesCollection, id, tt.wantBody, pocketbase.RecordOptions{}, nil).Return(nil)
			}
			require.NoError(t, tt.run(context.Background(), NewNoteListState(client, nil)))
		})
	}
}

func TestNoteListState_Batch_PartialFailure(t *testing.T) {
	client := newMockClient(t)
	client.EXPECT().Update(gomock.Any(), NotesCollection, "n1", gomock.Any(), gomock.Any(), nil).Return(nil)
	client.EXPECT().Update(gomock.Any(), NotesCollection, "n2", gomock.Any(), gomock.Any(), nil).Return(errors.New("forbidden"))
	client.EXPECT().Update(gomock.Any(), NotesCollection, "n3", gomock.Any(), gomock.Any(), nil).Return(nil)

	err := NewNoteListState(client, nil).Archive(context.Background(), []string{"n1", "n2", "n3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive(n2) > forbidden")
	assert.NotContains(t, err.Error(), "n1")
	assert.NotContains(t, err.Error(), "n3")
}

func TestNoteListState_EmptyTrash(t *testing.T) {
	client := newMockClient(t)
	client.EXPECT().GetFullList(gomock.Any(), NotesView, pocketbase.ListOptions{Filter: `status="deleted"`, Fields: "id"}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ pocketbase.ListOptions, dest any) error {
			assign(t, dest, []Note{{ID: "n1"}, {ID: "n2"}})
			return nil
		})
	client.EXPECT().Delete(gomock.Any(), NotesCollection, "n1").Return(nil)
	client.EXPECT().Delete(gomock.Any(), NotesCollection, "n2").Return(nil)

	n, err := NewNoteListState(client, nil).EmptyTrash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNoteListState_Merge_NotConfigured(t *testing.T) {
	_, err := NewNoteListState(newMockClient(t), nil).Merge(context.Background(), []string{"n1", "n2"})
	assert.Error(t, err)
}
