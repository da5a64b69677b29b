// Package snapshot copies the library metadata out of PocketBase into YAML files or MySQL.
package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/kangruixiang/curator/internal/curator"
	"github.com/kangruixiang/curator/internal/pocketbase"
)

// GroupRecord is a notebook or tag row.
type GroupRecord struct {
	ID        string `db:"id" yaml:"id"`
	Name      string `db:"name" yaml:"name"`
	Parent    string `db:"parent" yaml:"parent,omitempty"`
	Status    string `db:"status" yaml:"status,omitempty"`
	NoteCount int    `db:"note_count" yaml:"note_count"`
}

// NoteRecord is a note row without its content.
type NoteRecord struct {
	ID          string  `db:"id" yaml:"id"`
	Title       string  `db:"title" yaml:"title"`
	Description string  `db:"description" yaml:"description,omitempty"`
	Status      string  `db:"status" yaml:"status"`
	Rating      float64 `db:"rating" yaml:"rating"`
	Weight      float64 `db:"weight" yaml:"weight"`
	Notebook    string  `db:"notebook" yaml:"notebook"`
	Thumbnail   string  `db:"thumbnail" yaml:"thumbnail,omitempty"`
	LastOpened  string  `db:"last_opened" yaml:"last_opened,omitempty"`
	Created     string  `db:"created" yaml:"created"`
	Updated     string  `db:"updated" yaml:"updated"`

	Tags      []string         `db:"-" yaml:"-"`
	Sources   []curator.Source `db:"-" yaml:"sources,omitempty"`
	Resources []ResourceRecord `db:"-" yaml:"-"`
}

// NoteTag links a note to one of its tags.
type NoteTag struct {
	NoteID string `db:"note_id" yaml:"note_id"`
	TagID  string `db:"tag_id" yaml:"tag_id"`
}

// ResourceRecord is an attachment of a note.
type ResourceRecord struct {
	NoteID  string `db:"note_id" yaml:"note_id"`
	Hash    string `db:"hash" yaml:"hash"`
	Name    string `db:"name" yaml:"name"`
	Size    int64  `db:"size" yaml:"size"`
	Type    string `db:"type" yaml:"type"`
	FileURL string `db:"file_url" yaml:"file_url"`
}

// Library is a point-in-time copy of notebooks, tags and note metadata.
type Library struct {
	Notebooks []GroupRecord
	Tags      []GroupRecord
	Notes     []NoteRecord
}

// NoteTags flattens the tag links of every note.
func (l *Library) NoteTags() []NoteTag {
	links := []NoteTag{}
	for _, n := range l.Notes {
		for _, tagID := range n.Tags {
			links = append(links, NoteTag{NoteID: n.ID, TagID: tagID})
		}
	}
	return links
}

// ResourceRecords flattens the resources of every note.
func (l *Library) ResourceRecords() []ResourceRecord {
	records := []ResourceRecord{}
	for _, n := range l.Notes {
		records = append(records, n.Resources...)
	}
	return records
}

// Sink stores a Library.
type Sink interface {
	Write(ctx context.Context, library *Library) error
}

// Result counts what an export wrote.
type Result struct {
	Notebooks int
	Tags      int
	Notes     int
	NoteTags  int
	Resources int
}

// Exporter reads the library from PocketBase.
type Exporter struct {
	client pocketbase.RecordClient
	writer io.Writer
}

// NewExporter creates a new Exporter that reports progress to writer.
func NewExporter(client pocketbase.RecordClient, writer io.Writer) *Exporter {
	return &Exporter{
		client: client,
		writer: writer,
	}
}

// Export reads every notebook, tag and note.
func (e *Exporter) Export(ctx context.Context) (*Library, error) {
	var notebooks []curator.Notebook
	if err := e.client.GetFullList(ctx, curator.NotebooksView, pocketbase.ListOptions{Sort: "name"}, &notebooks); err != nil {
		return nil, fmt.Errorf("client.GetFullList(%s) > %w", curator.NotebooksView, err)
	}
	var tags []curator.Tag
	if err := e.client.GetFullList(ctx, curator.TagsView, pocketbase.ListOptions{Sort: "name"}, &tags); err != nil {
		return nil, fmt.Errorf("client.GetFullList(%s) > %w", curator.TagsView, err)
	}
	var notes []curator.Note
	if err := e.client.GetFullList(ctx, curator.NotesView, pocketbase.ListOptions{Sort: "created"}, &notes); err != nil {
		return nil, fmt.Errorf("client.GetFullList(%s) > %w", curator.NotesView, err)
	}

	library := &Library{
		Notebooks: make([]GroupRecord, 0, len(notebooks)),
		Tags:      make([]GroupRecord, 0, len(tags)),
		Notes:     make([]NoteRecord, 0, len(notes)),
	}
	for _, nb := range notebooks {
		library.Notebooks = append(library.Notebooks, groupRecord(nb))
	}
	for _, tag := range tags {
		library.Tags = append(library.Tags, groupRecord(tag))
	}
	for _, n := range notes {
		library.Notes = append(library.Notes, noteRecord(n))
	}
	return library, nil
}

// Run exports the library and writes it to every sink in order.
func (e *Exporter) Run(ctx context.Context, sinks ...Sink) (*Result, error) {
	library, err := e.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("Export() > %w", err)
	}

	result := &Result{
		Notebooks: len(library.Notebooks),
		Tags:      len(library.Tags),
		Notes:     len(library.Notes),
		NoteTags:  len(library.NoteTags()),
		Resources: len(library.ResourceRecords()),
	}
	for _, sink := range sinks {
		if err := sink.Write(ctx, library); err != nil {
			return nil, fmt.Errorf("sink.Write(%T) > %w", sink, err)
		}
		fmt.Fprintf(e.writer, "  [EXPORT]  %T: %d notebooks, %d tags, %d notes\n",
			sink, result.Notebooks, result.Tags, result.Notes)
	}
	return result, nil
}

func groupRecord(g curator.Group) GroupRecord {
	return GroupRecord{
		ID:        g.ID,
		Name:      g.Name,
		Parent:    g.Parent,
		Status:    string(g.Status),
		NoteCount: g.NoteCount,
	}
}

func noteRecord(n curator.Note) NoteRecord {
	resources := make([]ResourceRecord, 0, len(n.Resources))
	for _, r := range n.Resources {
		resources = append(resources, ResourceRecord{
			NoteID:  n.ID,
			Hash:    r.Hash,
			Name:    r.Name,
			Size:    r.Size,
			Type:    r.Type,
			FileURL: r.FileURL,
		})
	}
	return NoteRecord{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Status:      string(n.Status),
		Rating:      n.Rating,
		Weight:      n.Weight,
		Notebook:    n.Notebook,
		Thumbnail:   n.Thumbnail,
		LastOpened:  n.LastOpened.String(),
		Created:     n.Created.String(),
		Updated:     n.Updated.String(),
		Tags:        append([]string{}, n.Tags...),
		Sources:     n.Sources,
		Resources:   resources,
	}
}
