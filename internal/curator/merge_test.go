package curator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_pocketbase "github.com/kangruixiang/curator/internal/mocks/pocketbase"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/resource"
	"github.com/kangruixiang/curator/internal/thumbnail"
)

const filesURL = "http://pb/api/files/notes/"

func expectGetNote(t *testing.T, client *mock_pocketbase.MockRecordClient, note Note) *gomock.Call {
	return client.EXPECT().GetOne(gomock.Any(), NotesCollection, note.ID, pocketbase.RecordOptions{}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ pocketbase.RecordOptions, dest any) error {
			assign(t, dest, note)
			return nil
		})
}

func TestMerger_Merge(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	shared := resource.Resource{Name: "b.png", Hash: "hb", Type: "image/png", Size: 20_000, FileURL: filesURL + "a/b.png"}
	noteA := Note{
		ID:          "a",
		Title:       "Base",
		Description: "first",
		Content:     "<p>alpha</p>",
		Notebook:    "nb1",
		Tags:        []string{"t1", "t2"},
		Sources:     []Source{{Source: "web", SourceURL: "https://a.example"}},
		Thumbnail:   "http://pb/thumb.png",
		Resources:   []resource.Resource{{Name: "a.png", Hash: "ha", FileURL: filesURL + "a/a.png"}, shared},
	}
	noteB := Note{
		ID:          "b",
		Title:       "Other",
		Description: "second",
		Content:     `<p>beta</p><img src="` + filesURL + `b/c.png">`,
		Notebook:    "nb2",
		Tags:        []string{"t2", "t3"},
		Sources:     []Source{{Source: "web", SourceURL: "https://a.example"}, {Source: "book"}},
		Resources: []resource.Resource{
			{Name: "b.png", Hash: "hb", Type: "image/png", FileURL: filesURL + "b/b.png"},
			{Name: "c.png", Hash: "hc", Type: "image/png", Size: 30_000, FileURL: filesURL + "b/c.png"},
		},
	}

	client := newMockClient(t)
	expectGetNote(t, client, noteA)
	expectGetNote(t, client, noteB)
	client.EXPECT().GetOne(gomock.Any(), NotesCollection, "missing", gomock.Any(), gomock.Any()).
		Return(&pocketbase.ResponseError{Status: 404, Message: "not found"})

	for i, r := range noteB.Resources {
		uploaded := []string{"a.png", "b.png", "b_copy.png", "c_copy.png"}[:3+i]
		client.EXPECT().Download(gomock.Any(), r.FileURL).Return([]byte(r.Name), nil)
		client.EXPECT().Upload(gomock.Any(), NotesCollection, "a", "attachments+", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, _ string, files []pocketbase.File, dest any) error {
				require.Len(t, files, 1)
				assert.Equal(t, r.Name, files[0].Name)
				assign(t, dest, Note{ID: "a", Attachments: uploaded})
				return nil
			})
		client.EXPECT().FileURL(NotesCollection, "a", uploaded[len(uploaded)-1]).
			Return(filesURL + "a/" + uploaded[len(uploaded)-1])
	}

	client.EXPECT().Update(gomock.Any(), NotesCollection, "a", gomock.Any(), pocketbase.RecordOptions{}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, body any, _ pocketbase.RecordOptions, dest any) error {
			data := body.(map[string]any)
			assert.Equal(t, "Base", data["title"])
			assert.Equal(t, "nb1", data["notebook"])
			assert.Equal(t, []string{"t1", "t2", "t3"}, data["tags"])
			assert.Equal(t, []Source{{Source: "web", SourceURL: "https://a.example"}, {Source: "book"}}, data["sources"])
			assert.Equal(t, "first\n\nsecond", data["description"])
			assert.Equal(t, pocketbase.NewDateTime(now), data["last_opened"])

			resources := data["resources"].([]resource.Resource)
			require.Len(t, resources, 3)
			assert.Equal(t, []string{"ha", "hb", "hc"}, []string{resources[0].Hash, resources[1].Hash, resources[2].Hash})
			assert.Equal(t, filesURL+"a/b.png", resources[1].FileURL)
			assert.Equal(t, filesURL+"a/c_copy.png", resources[2].FileURL)
			assert.Equal(t, filesURL+"b/c.png", resources[2].OldFileURL)
			assert.Equal(t, "2024-05-06T07:08:09.000Z", resources[2].LastUpdated)

			merged := data["content"].(string)
			assert.Contains(t, merged, "alpha")
			assert.Contains(t, merged, "beta")
			assert.Contains(t, merged, filesURL+"a/c_copy.png")
			assert.NotContains(t, merged, filesURL+"b/c.png")
			assert.Equal(t, merged, data["original_content"])

			assign(t, dest, Note{ID: "a", Title: "Base", Content: merged, Resources: resources})
			return nil
		})
	client.EXPECT().Update(gomock.Any(), NotesCollection, "b", map[string]any{"status": StatusDeleted}, pocketbase.RecordOptions{}, nil).
		Return(nil)

	merger := NewMerger(client, nil)
	merger.now = func() time.Time { return now }

	merged, err := merger.Merge(context.Background(), []string{"a", "missing", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a", merged.ID)
	assert.Len(t, merged.Resources, 3)
}

func TestMerger_Merge_DerivesThumbnail(t *testing.T) {
	image := resource.Resource{Name: "big.jpg", Hash: "h1", Type: "image/jpeg", Size: 50_000, FileURL: filesURL + "a/big.jpg"}
	client := newMockClient(t)
	expectGetNote(t, client, Note{ID: "a", Content: "<p>a</p>", Resources: []resource.Resource{image}})
	expectGetNote(t, client, Note{ID: "b", Content: "<p>b</p>"})
	client.EXPECT().Update(gomock.Any(), NotesCollection, "a", gomock.Any(), pocketbase.RecordOptions{}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, body any, _ pocketbase.RecordOptions, dest any) error {
			assign(t, dest, Note{ID: "a", Resources: body.(map[string]any)["resources"].([]resource.Resource)})
			return nil
		})
	expectGetNote(t, client, Note{ID: "a"})
	client.EXPECT().Update(gomock.Any(), NotesCollection, "a", map[string]any{"thumbnail": filesURL + "a/big.jpg?thumb=500x0"}, pocketbase.RecordOptions{}, nil).
		Return(nil)
	client.EXPECT().Update(gomock.Any(), NotesCollection, "b", map[string]any{"status": StatusDeleted}, pocketbase.RecordOptions{}, nil).
		Return(nil)

	merger := NewMerger(client, thumbnail.NewGenerator(client, nil, thumbnail.Config{}))
	_, err := merger.Merge(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
}

func TestMerger_Merge_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		setup   func(client *mock_pocketbase.MockRecordClient)
		wantErr error
	}{
		{
			name:    "a single note",
			ids:     []string{"a"},
			setup:   func(client *mock_pocketbase.MockRecordClient) { expectGetNote(t, client, Note{ID: "a"}) },
			wantErr: ErrNotEnoughNotes,
		},
		{
			name: "only one note could be fetched",
			ids:  []string{"a", "b"},
			setup: func(client *mock_pocketbase.MockRecordClient) {
				expectGetNote(t, client, Note{ID: "a"})
				client.EXPECT().GetOne(gomock.Any(), NotesCollection, "b", gomock.Any(), gomock.Any()).Return(errors.New("gone"))
			},
			wantErr: ErrNotEnoughNotes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			tt.setup(client)
			_, err := NewMerger(client, nil).Merge(context.Background(), tt.ids)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMerger_Merge_CopyFailureLeavesNotesUntouched(t *testing.T) {
	client := newMockClient(t)
	expectGetNote(t, client, Note{ID: "a"})
	expectGetNote(t, client, Note{ID: "b", Resources: []resource.Resource{{Name: "x.png", FileURL: filesURL + "b/x.png"}}})
	client.EXPECT().Download(gomock.Any(), filesURL+"b/x.png").Return(nil, errors.New("timeout"))

	_, err := NewMerger(client, nil).Merge(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
