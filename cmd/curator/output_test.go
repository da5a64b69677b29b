package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/kangruixiang/curator/internal/curator"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/tree"
)

func disableColor(t *testing.T) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = noColor
	})
}

func groupForest(groups []curator.Group) tree.Forest[curator.Group] {
	return tree.Build(groups,
		func(g curator.Group) string { return g.ID },
		func(g curator.Group) string { return g.Parent },
	)
}

func TestPrintTree(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name   string
		groups []curator.Group
		want   string
	}{
		{
			name: "nested with orphan",
			groups: []curator.Group{
				{ID: "a", Name: "Medicine", Status: curator.Pinned, NoteCount: 3},
				{ID: "b", Name: "Cardiology", Parent: "a", NoteCount: 2},
				{ID: "c", Name: "Valves", Parent: "b"},
				{ID: "d", Name: "Lost", Parent: "gone", NoteCount: 1},
			},
			want: "Medicine (3)\n" +
				"  Cardiology (2)\n" +
				"    Valves (0)\n" +
				"orphans:\n" +
				"  Lost (1)\n",
		},
		{
			name:   "empty",
			groups: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printTree(&buf, groupForest(tt.groups))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintFlat(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	printFlat(&buf, []curator.Group{
		{ID: "a", Name: "go", NoteCount: 4},
		{ID: "b", Name: "rust"},
	})
	assert.Equal(t, "a\tgo\t4\nb\trust\t0\n", buf.String())
}

func TestPrintNotePage(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	printNotePage(&buf, curator.NotePage{
		PageInfo: pocketbase.PageInfo{Page: 1, PerPage: 24, TotalItems: 1, TotalPages: 1},
		Items: []curator.Note{{
			ID:    "n1",
			Title: "Heart sounds",
			Expand: curator.NoteExpand{
				Notebook: &curator.Group{Name: "Cardiology"},
				Tags:     []curator.Group{{Name: "exam"}, {Name: "audio"}},
			},
		}},
	})
	assert.Equal(t, "n1\tHeart sounds\tCardiology\t#exam #audio\npage 1/1, 1 notes\n", buf.String())
}

func TestPrintNote(t *testing.T) {
	disableColor(t)

	note := curator.Note{
		Title:       "Murmurs",
		Description: "Systolic and diastolic",
		Content:     "<h1>Murmurs</h1>\n<p>Aortic&nbsp;stenosis</p><img src=\"http://127.0.0.1:8090/api/files/notes/n1/echo.png\">",
		Sources:     []curator.Source{{Source: "book", SourceURL: "https://example.com"}},
	}

	var text bytes.Buffer
	printNote(&text, note, false, "https://pb.example.com")
	assert.Equal(t, "Murmurs\nSystolic and diastolic\nsource: book https://example.com\n\nMurmurs Aortic stenosis\n", text.String())

	var html bytes.Buffer
	printNote(&html, note, true, "https://pb.example.com")
	assert.Contains(t, html.String(), "<h1>Murmurs</h1>")
	assert.Contains(t, html.String(), `<img src="https://pb.example.com/api/files/notes/n1/echo.png">`)
	assert.NotContains(t, html.String(), "127.0.0.1")
}

type recordedList struct {
	calls []string
	err   error
}

func (r *recordedList) record(call string) error {
	r.calls = append(r.calls, call)
	return r.err
}

func (r *recordedList) SoftDelete(_ context.Context, _ []string) error { return r.record("soft delete") }
func (r *recordedList) Restore(_ context.Context, _ []string) error    { return r.record("restore") }
func (r *recordedList) Archive(_ context.Context, _ []string) error    { return r.record("archive") }
func (r *recordedList) Unarchive(_ context.Context, _ []string) error  { return r.record("unarchive") }
func (r *recordedList) ChangeNotebook(_ context.Context, _ []string, id string) error {
	return r.record("notebook " + id)
}
func (r *recordedList) AddTag(_ context.Context, _ []string, id string) error {
	return r.record("add " + id)
}
func (r *recordedList) RemoveTag(_ context.Context, _ []string, id string) error {
	return r.record("remove " + id)
}
func (r *recordedList) ClearTags(_ context.Context, _ []string) error { return r.record("clear") }

var _ noteList = (*curator.NoteListState)(nil)

func TestRunAction(t *testing.T) {
	tests := []struct {
		name       string
		action     ActionFlag
		notebookID string
		tagID      string
		listErr    error
		wantCalls  []string
		wantErr    bool
	}{
		{name: "delete", action: ActionDelete, wantCalls: []string{"soft delete"}},
		{name: "unarchive", action: ActionUnarchive, wantCalls: []string{"unarchive"}},
		{name: "move", action: ActionMove, notebookID: "nb1", wantCalls: []string{"notebook nb1"}},
		{name: "move without notebook", action: ActionMove, wantErr: true},
		{name: "add tag", action: ActionAddTag, tagID: "t1", wantCalls: []string{"add t1"}},
		{name: "remove tag", action: ActionRemoveTag, tagID: "t1", wantCalls: []string{"remove t1"}},
		{name: "remove tag without tag", action: ActionRemoveTag, wantErr: true},
		{name: "clear tags", action: ActionClearTags, wantCalls: []string{"clear"}},
		{name: "list failure", action: ActionArchive, listErr: errors.New("offline"), wantCalls: []string{"archive"}, wantErr: true},
		{name: "unset action", action: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := &recordedList{err: tt.listErr}
			err := runAction(context.Background(), list, tt.action, []string{"n1", "n2"}, tt.notebookID, tt.tagID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, list.calls)
		})
	}
}

func TestParseSettingValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{name: "number", raw: "0.5", want: 0.5},
		{name: "quoted string", raw: `"key"`, want: "key"},
		{name: "bare string", raw: "AIza-key", want: "AIza-key"},
		{name: "bool", raw: "true", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSettingValue(tt.raw))
		})
	}
}
