package curator

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kangruixiang/curator/internal/content"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/resource"
	"github.com/kangruixiang/curator/internal/thumbnail"
)

// NoteState holds one open note and the discovery list it may come from.
type NoteState struct {
	client     pocketbase.RecordClient
	thumbnails *thumbnail.Generator
	now        func() time.Time

	mu        sync.RWMutex
	note      Note
	discover  NotePage
	fontScale float64
}

// NewNoteState creates a NoteState with no note loaded.
func NewNoteState(client pocketbase.RecordClient, thumbnails *thumbnail.Generator) *NoteState {
	return &NoteState{
		client:     client,
		thumbnails: thumbnails,
		now:        time.Now,
		discover:   NotePage{Items: []Note{}},
		fontScale:  1,
	}
}

// Note returns the loaded note.
func (s *NoteState) Note() Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.note
}

func (s *NoteState) set(note Note) {
	s.mu.Lock()
	s.note = note
	s.mu.Unlock()
}

func (s *NoteState) noteID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.note.ID == "" {
		return "", ErrNoNoteLoaded
	}
	return s.note.ID, nil
}

// Load fetches a note with its notebook and tags and makes it current.
func (s *NoteState) Load(ctx context.Context, id string) (Note, error) {
	var note Note
	if err := s.client.GetOne(ctx, NotesCollection, id, pocketbase.RecordOptions{Expand: noteExpand}, &note); err != nil {
		return Note{}, fmt.Errorf("client.GetOne(%s) > %w", id, err)
	}
	s.set(note)
	return note, nil
}

// Discover fetches a page of notes ranked by score. An empty filter lists active notes.
func (s *NoteState) Discover(ctx context.Context, filter string, page int) (NotePage, error) {
	if filter == "" {
		filter = statusFilter(StatusActive)
	}
	if page < 1 {
		page = 1
	}
	list := NotePage{Items: []Note{}}
	info, err := s.client.GetList(ctx, NotesView, page, discoverPerPage, pocketbase.ListOptions{
		Sort:   "-score",
		Filter: filter,
	}, &list.Items)
	if err != nil {
		return NotePage{}, fmt.Errorf("client.GetList(%s) > %w", NotesView, err)
	}
	list.PageInfo = info

	s.mu.Lock()
	s.discover = list
	s.mu.Unlock()
	return list, nil
}

// DiscoverList returns the last discovery page.
func (s *NoteState) DiscoverList() NotePage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.discover
	list.Items = append([]Note(nil), s.discover.Items...)
	return list
}

// OpenDiscover loads the note at index of the discovery page and records that it was opened.
func (s *NoteState) OpenDiscover(ctx context.Context, index int) (Note, error) {
	s.mu.RLock()
	items := s.discover.Items
	s.mu.RUnlock()
	if index < 0 || index >= len(items) {
		return Note{}, fmt.Errorf("discover index %d of %d: %w", index, len(items), ErrIndexOutOfRange)
	}

	var note Note
	id := items[index].ID
	if err := s.client.GetFirstListItem(ctx, NotesCollection, idFilter(id), pocketbase.RecordOptions{Expand: noteExpand}, &note); err != nil {
		return Note{}, fmt.Errorf("client.GetFirstListItem(%s) > %w", id, err)
	}
	s.set(note)

	if err := s.MarkOpened(ctx); err != nil {
		return note, err
	}
	return note, nil
}

// MarkOpened sets last_opened of the loaded note to now.
func (s *NoteState) MarkOpened(ctx context.Context) error {
	id, err := s.noteID()
	if err != nil {
		return err
	}
	if err := s.client.Update(ctx, NotesCollection, id, map[string]any{
		"last_opened": pocketbase.NewDateTime(s.now()),
	}, pocketbase.RecordOptions{}, nil); err != nil {
		return fmt.Errorf("client.Update(%s, last_opened) > %w", id, err)
	}
	return nil
}

// update patches the loaded note and replaces it with the expanded response.
func (s *NoteState) update(ctx context.Context, field string, body map[string]any) error {
	id, err := s.noteID()
	if err != nil {
		return err
	}
	var note Note
	if err := s.client.Update(ctx, NotesCollection, id, body, pocketbase.RecordOptions{Expand: noteExpand}, &note); err != nil {
		return fmt.Errorf("client.Update(%s, %s) > %w", id, field, err)
	}
	s.set(note)
	return nil
}

func (s *NoteState) SoftDelete(ctx context.Context) error {
	return s.update(ctx, "status", map[string]any{"status": StatusDeleted})
}

func (s *NoteState) Archive(ctx context.Context) error {
	return s.update(ctx, "status", map[string]any{"status": StatusArchived})
}

// Restore makes the note active again, from the archive or the trash.
func (s *NoteState) Restore(ctx context.Context) error {
	return s.update(ctx, "status", map[string]any{"status": StatusActive})
}

// Delete removes the note permanently and unloads it.
func (s *NoteState) Delete(ctx context.Context) error {
	id, err := s.noteID()
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, NotesCollection, id); err != nil {
		return fmt.Errorf("client.Delete(%s) > %w", id, err)
	}
	s.set(Note{})
	return nil
}

func (s *NoteState) ChangeNotebook(ctx context.Context, notebookID string) error {
	return s.update(ctx, "notebook", map[string]any{"notebook": notebookID})
}

// ChangeTags replaces all tags of the note.
func (s *NoteState) ChangeTags(ctx context.Context, tagIDs []string) error {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return s.update(ctx, "tags", map[string]any{"tags": tagIDs})
}

func (s *NoteState) AddTag(ctx context.Context, tagID string) error {
	return s.update(ctx, "tags", map[string]any{"tags+": tagID})
}

func (s *NoteState) RemoveTag(ctx context.Context, tagID string) error {
	return s.update(ctx, "tags", map[string]any{"tags-": tagID})
}

func (s *NoteState) ChangeRating(ctx context.Context, rating float64) error {
	return s.update(ctx, "rating", map[string]any{"rating": rating})
}

// Upvote raises the weight of the note by one.
func (s *NoteState) Upvote(ctx context.Context) error {
	return s.update(ctx, "weight", map[string]any{"weight": s.Note().Weight + 1})
}

// Downvote lowers the weight of the note by one.
func (s *NoteState) Downvote(ctx context.Context) error {
	return s.update(ctx, "weight", map[string]any{"weight": s.Note().Weight - 1})
}

func (s *NoteState) ChangeTitle(ctx context.Context, title string) error {
	return s.update(ctx, "title", map[string]any{"title": title})
}

func (s *NoteState) ChangeDescription(ctx context.Context, description string) error {
	return s.update(ctx, "description", map[string]any{"description": description})
}

func (s *NoteState) ChangeSources(ctx context.Context, sources []Source) error {
	if sources == nil {
		sources = []Source{}
	}
	return s.update(ctx, "sources", map[string]any{"sources": sources})
}

// ChangeThumbnail points the thumbnail at a resized fileURL, or clears it.
func (s *NoteState) ChangeThumbnail(ctx context.Context, fileURL string) error {
	id, err := s.noteID()
	if err != nil {
		return err
	}
	if err := s.thumbnails.Set(ctx, id, fileURL); err != nil {
		return err
	}
	_, err = s.Load(ctx, id)
	return err
}

func (s *NoteState) UpdateContent(ctx context.Context, html string) error {
	return s.update(ctx, "content", map[string]any{"content": html})
}

// AppendContent merges html after the current content of the note.
func (s *NoteState) AppendContent(ctx context.Context, html string) error {
	id, err := s.noteID()
	if err != nil {
		return err
	}
	var current Note
	if err := s.client.GetOne(ctx, NotesCollection, id, pocketbase.RecordOptions{}, &current); err != nil {
		return fmt.Errorf("client.GetOne(%s) > %w", id, err)
	}
	merged, err := content.MergeDocuments([]string{current.Content, html})
	if err != nil {
		return fmt.Errorf("content.MergeDocuments > %w", err)
	}
	return s.UpdateContent(ctx, merged)
}

// Attach uploads a file to the note, records its Resource, embeds it at the
// end of the content and derives a thumbnail when the note has none.
// An empty mime is sniffed from data.
func (s *NoteState) Attach(ctx context.Context, name, mime string, data []byte) (resource.Resource, error) {
	id, err := s.noteID()
	if err != nil {
		return resource.Resource{}, err
	}

	var uploaded Note
	if err := s.client.Upload(ctx, NotesCollection, id, attachmentsAdd, []pocketbase.File{
		{Name: name, Reader: bytes.NewReader(data)},
	}, &uploaded); err != nil {
		return resource.Resource{}, fmt.Errorf("client.Upload(%s, %s) > %w", id, name, err)
	}
	if len(uploaded.Attachments) == 0 {
		return resource.Resource{}, fmt.Errorf("upload of %s to %s returned no attachments", name, id)
	}

	fileURL := s.client.FileURL(NotesCollection, id, uploaded.Attachments[len(uploaded.Attachments)-1])
	r := resource.FromFile(name, mime, data, fileURL, s.now())
	resources := resource.Merge(uploaded.Resources, []resource.Resource{r})

	if s.thumbnails != nil {
		frame, err := s.thumbnails.Create(ctx, id, resources)
		if err != nil {
			return r, err
		}
		if frame != nil {
			resources = resource.Merge(resources, []resource.Resource{*frame})
		}
	}

	body := map[string]any{
		"resources": resources,
		"content":   uploaded.Content + content.MediaEmbed(r.Type, r.FileURL, r.Name),
	}
	if err := s.update(ctx, "resources", body); err != nil {
		return r, err
	}
	return r, nil
}

// SetFontScale changes the scale used by ReaderStyles; 1 is the default size.
func (s *NoteState) SetFontScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	s.mu.Lock()
	s.fontScale = scale
	s.mu.Unlock()
}

// ReaderStyles returns the stylesheet injected into the note reader.
func (s *NoteState) ReaderStyles() string {
	s.mu.RLock()
	scale := s.fontScale
	s.mu.RUnlock()
	return fmt.Sprintf(readerStyles, strconv.FormatFloat(scale*100, 'f', -1, 64))
}

const readerStyles = `:root {
  --color-base-100: oklch(100%% 0 0);
  --color-base-content: oklch(27.807%% 0.029 256.847);
}
@media (prefers-color-scheme: dark) {
  :root {
    --color-base-100: oklch(25.33%% 0.016 252.42);
    --color-base-content: oklch(97.807%% 0.029 256.847);
  }
}
html, body {
  margin: 0 !important;
  height: 100%% !important;
}
* {
  font-size: %s%% !important;
  line-height: 1.4 !important;
}
html, body, main, section, p, pre, div {
  background-color: var(--color-base-100) !important;
  background: var(--color-base-100) !important;
  color: var(--color-base-content) !important;
}
img {
  max-width: 100%% !important;
  height: auto !important;
}
.img-wrapper {
  display: flex;
  justify-content: center;
  margin-bottom: 1rem;
}
video {
  max-height: 800px !important;
}
`
