package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kangruixiang/curator/internal/curator"
)

func TestYAMLSink_Write(t *testing.T) {
	tests := []struct {
		name    string
		library *Library
		want    map[string]string
	}{
		{
			name: "tables use snake_case field names",
			library: &Library{
				Notebooks: []GroupRecord{{ID: "nb1", Name: "Inbox", NoteCount: 2}},
				Tags:      []GroupRecord{{ID: "t2", Name: "sql", Parent: "t1", Status: "pinned"}},
				Notes: []NoteRecord{
					{
						ID:       "n1",
						Title:    "Joins",
						Status:   "active",
						Rating:   4,
						Notebook: "nb1",
						Tags:     []string{"t2"},
						Resources: []ResourceRecord{
							{NoteID: "n1", Hash: "abc", Name: "er.png", Size: 1024, Type: "image/png", FileURL: "http://pb/er.png"},
						},
					},
				},
			},
			want: map[string]string{
				"notebooks.yml": `- id: nb1
  name: Inbox
  note_count: 2
`,
				"tags.yml": `- id: t2
  name: sql
  parent: t1
  status: pinned
  note_count: 0
`,
				"notes.yml": `- id: n1
  title: Joins
  status: active
  rating: 4
  weight: 0
  notebook: nb1
  created: ""
  updated: ""
`,
				"note_tags.yml": `- note_id: n1
  tag_id: t2
`,
				"resources.yml": `- note_id: n1
  hash: abc
  name: er.png
  size: 1024
  type: image/png
  file_url: http://pb/er.png
`,
			},
		},
		{
			name:    "empty library",
			library: &Library{Notebooks: []GroupRecord{}, Tags: []GroupRecord{}, Notes: []NoteRecord{}},
			want: map[string]string{
				"notebooks.yml": "[]\n",
				"tags.yml":      "[]\n",
				"notes.yml":     "[]\n",
				"note_tags.yml": "[]\n",
				"resources.yml": "[]\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputDir := filepath.Join(t.TempDir(), "export")
			require.NoError(t, NewYAMLSink(outputDir).Write(context.Background(), tt.library))

			for name, want := range tt.want {
				got, err := os.ReadFile(filepath.Join(outputDir, name))
				require.NoError(t, err)
				assert.Equal(t, want, string(got), name)
			}
		})
	}
}

func TestYAMLSink_Write_Sources(t *testing.T) {
	outputDir := t.TempDir()
	sources := []curator.Source{{Source: "blog", SourceURL: "https://example.com"}}
	library := &Library{Notes: []NoteRecord{{ID: "n1", Sources: sources}}}
	require.NoError(t, NewYAMLSink(outputDir).Write(context.Background(), library))

	data, err := os.ReadFile(filepath.Join(outputDir, "notes.yml"))
	require.NoError(t, err)
	var got []NoteRecord
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, sources, got[0].Sources)
	assert.Nil(t, got[0].Tags)
}
