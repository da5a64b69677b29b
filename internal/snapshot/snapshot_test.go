package snapshot

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kangruixiang/curator/internal/curator"
	mock_pocketbase "github.com/kangruixiang/curator/internal/mocks/pocketbase"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/resource"
)

func fill[T any](items []T) func(context.Context, string, pocketbase.ListOptions, any) error {
	return func(_ context.Context, _ string, _ pocketbase.ListOptions, dest any) error {
		*dest.(*[]T) = items
		return nil
	}
}

type recordingSink struct {
	got *Library
	err error
}

func (s *recordingSink) Write(_ context.Context, library *Library) error {
	s.got = library
	return s.err
}

func TestExporter_Run(t *testing.T) {
	created := pocketbase.NewDateTime(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	notebooks := []curator.Notebook{{ID: "nb1", Name: "Inbox", NoteCount: 1}}
	tags := []curator.Tag{{ID: "t1", Name: "go", Status: curator.Pinned}, {ID: "t2", Name: "db", Parent: "t1"}}
	notes := []curator.Note{
		{
			ID:       "n1",
			Title:    "Note",
			Status:   curator.StatusActive,
			Notebook: "nb1",
			Tags:     []string{"t1", "t2"},
			Created:  created,
			Resources: []resource.Resource{
				{Name: "a.png", Hash: "ha", Size: 10, Type: "image/png", FileURL: "http://pb/a.png"},
			},
		},
	}

	tests := []struct {
		name    string
		setup   func(client *mock_pocketbase.MockRecordClient)
		sinkErr error
		want    *Result
		wantErr bool
	}{
		{
			name: "library is written to the sink",
			setup: func(client *mock_pocketbase.MockRecordClient) {
				client.EXPECT().GetFullList(gomock.Any(), curator.NotebooksView, pocketbase.ListOptions{Sort: "name"}, gomock.Any()).
					DoAndReturn(fill(notebooks))
				client.EXPECT().GetFullList(gomock.Any(), curator.TagsView, pocketbase.ListOptions{Sort: "name"}, gomock.Any()).
					DoAndReturn(fill(tags))
				client.EXPECT().GetFullList(gomock.Any(), curator.NotesView, pocketbase.ListOptions{Sort: "created"}, gomock.Any()).
					DoAndReturn(fill(notes))
			},
			want: &Result{Notebooks: 1, Tags: 2, Notes: 1, NoteTags: 2, Resources: 1},
		},
		{
			name: "fetch failure",
			setup: func(client *mock_pocketbase.MockRecordClient) {
				client.EXPECT().GetFullList(gomock.Any(), curator.NotebooksView, gomock.Any(), gomock.Any()).
					Return(errors.New("unauthorized"))
			},
			wantErr: true,
		},
		{
			name: "sink failure",
			setup: func(client *mock_pocketbase.MockRecordClient) {
				client.EXPECT().GetFullList(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)
			},
			sinkErr: errors.New("disk full"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_pocketbase.NewMockRecordClient(ctrl)
			tt.setup(client)

			var out bytes.Buffer
			sink := &recordingSink{err: tt.sinkErr}
			got, err := NewExporter(client, &out).Run(context.Background(), sink)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "[EXPORT]")

			require.NotNil(t, sink.got)
			assert.Equal(t, GroupRecord{ID: "t1", Name: "go", Status: "pinned"}, sink.got.Tags[0])
			assert.Equal(t, "2024-02-03 04:05:06.000Z", sink.got.Notes[0].Created)
			assert.Empty(t, sink.got.Notes[0].LastOpened)
			assert.Equal(t, []NoteTag{{NoteID: "n1", TagID: "t1"}, {NoteID: "n1", TagID: "t2"}}, sink.got.NoteTags())
			assert.Equal(t, "n1", sink.got.ResourceRecords()[0].NoteID)
		})
	}
}
