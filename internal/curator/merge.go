package curator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kangruixiang/curator/internal/content"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/resource"
	"github.com/kangruixiang/curator/internal/thumbnail"
)

// Merger folds several notes into the first one.
type Merger struct {
	client     pocketbase.RecordClient
	thumbnails *thumbnail.Generator
	now        func() time.Time
}

// NewMerger creates a Merger. thumbnails may be nil to skip thumbnail derivation.
func NewMerger(client pocketbase.RecordClient, thumbnails *thumbnail.Generator) *Merger {
	return &Merger{
		client:     client,
		thumbnails: thumbnails,
		now:        time.Now,
	}
}

// Merge combines the notes into the first fetched one and moves the others to
// the trash. Notes that cannot be fetched are skipped. Attachments of the other
// notes are copied to the base note before it is updated; copies are not
// removed when a later step fails.
func (m *Merger) Merge(ctx context.Context, ids []string) (Note, error) {
	notes := make([]Note, 0, len(ids))
	for _, id := range ids {
		var note Note
		if err := m.client.GetOne(ctx, NotesCollection, id, pocketbase.RecordOptions{}, &note); err != nil {
			slog.Default().Error("failed to get note to merge",
				slog.String("note", id),
				slog.Any("error", err))
			continue
		}
		notes = append(notes, note)
	}
	if len(notes) < 2 {
		return Note{}, ErrNotEnoughNotes
	}

	base, rest := notes[0], notes[1:]
	copied, err := m.copyResources(ctx, base.ID, rest)
	if err != nil {
		return Note{}, err
	}

	data, err := mergedNoteData(notes, copied, m.now())
	if err != nil {
		return Note{}, err
	}

	var merged Note
	if err := m.client.Update(ctx, NotesCollection, base.ID, data, pocketbase.RecordOptions{}, &merged); err != nil {
		return Note{}, fmt.Errorf("client.Update(%s, merged) > %w", base.ID, err)
	}

	if base.Thumbnail == "" && m.thumbnails != nil {
		merged = m.deriveThumbnail(ctx, merged)
	}

	restIDs := make([]string, 0, len(rest))
	for _, n := range rest {
		restIDs = append(restIDs, n.ID)
	}
	if err := runBatch(ctx, "soft delete", restIDs, func(ctx context.Context, id string) error {
		return m.client.Update(ctx, NotesCollection, id, map[string]any{"status": StatusDeleted}, pocketbase.RecordOptions{}, nil)
	}); err != nil {
		return merged, err
	}
	return merged, nil
}

func (m *Merger) deriveThumbnail(ctx context.Context, merged Note) Note {
	frame, err := m.thumbnails.Create(ctx, merged.ID, merged.Resources)
	if err != nil {
		slog.Default().Error("failed to create thumbnail for merged note",
			slog.String("note", merged.ID),
			slog.Any("error", err))
		return merged
	}
	if frame == nil {
		return merged
	}

	resources := resource.Merge(merged.Resources, []resource.Resource{*frame})
	if err := m.client.Update(ctx, NotesCollection, merged.ID, map[string]any{
		"resources": resources,
	}, pocketbase.RecordOptions{}, nil); err != nil {
		slog.Default().Error("failed to record thumbnail resource",
			slog.String("note", merged.ID),
			slog.Any("error", err))
		return merged
	}
	merged.Resources = resources
	return merged
}

// copyResources uploads every resource of notes to the base note and returns
// the new resources with OldFileURL pointing at the original file.
func (m *Merger) copyResources(ctx context.Context, baseID string, notes []Note) ([]resource.Resource, error) {
	copied := []resource.Resource{}
	for _, note := range notes {
		for _, r := range note.Resources {
			data, err := m.client.Download(ctx, r.FileURL)
			if err != nil {
				return copied, fmt.Errorf("client.Download(%s) > %w", r.FileURL, err)
			}

			var updated Note
			if err := m.client.Upload(ctx, NotesCollection, baseID, attachmentsAdd, []pocketbase.File{
				{Name: r.Name, Reader: bytes.NewReader(data)},
			}, &updated); err != nil {
				return copied, fmt.Errorf("client.Upload(%s, %s) > %w", baseID, r.Name, err)
			}
			if len(updated.Attachments) == 0 {
				return copied, fmt.Errorf("upload of %s to %s returned no attachments", r.Name, baseID)
			}

			copied = append(copied, resource.Resource{
				Name:        r.Name,
				Size:        r.Size,
				Hash:        r.Hash,
				Type:        r.Type,
				FileURL:     m.client.FileURL(NotesCollection, baseID, updated.Attachments[len(updated.Attachments)-1]),
				OldFileURL:  r.FileURL,
				LastUpdated: m.now().UTC().Format(resource.ISOLayout),
			})
		}
	}
	return copied, nil
}

// mergedNoteData builds the update payload of the base note.
func mergedNoteData(notes []Note, copied []resource.Resource, now time.Time) (map[string]any, error) {
	base := notes[0]

	docs := make([]string, 0, len(notes))
	descriptions := make([]string, 0, len(notes))
	for _, n := range notes {
		docs = append(docs, n.Content)
		descriptions = append(descriptions, n.Description)
	}
	merged, err := content.MergeDocuments(docs)
	if err != nil {
		return nil, fmt.Errorf("content.MergeDocuments > %w", err)
	}
	for _, r := range copied {
		if r.OldFileURL == "" {
			continue
		}
		merged = strings.ReplaceAll(merged, r.OldFileURL, r.FileURL)
	}

	return map[string]any{
		"title":            base.Title,
		"notebook":         base.Notebook,
		"tags":             mergeTags(notes),
		"last_opened":      pocketbase.NewDateTime(now),
		"sources":          mergeSources(notes),
		"resources":        resource.Merge(base.Resources, copied),
		"description":      strings.Join(descriptions, "\n\n"),
		"content":          merged,
		"original_content": merged,
	}, nil
}

// mergeTags is the ordered union of the tags of notes.
func mergeTags(notes []Note) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, n := range notes {
		for _, t := range n.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// mergeSources deduplicates sources by label and URL in first-seen order.
func mergeSources(notes []Note) []Source {
	seen := map[string]bool{}
	sources := []Source{}
	for _, n := range notes {
		for _, src := range n.Sources {
			key := src.Source + "|" + src.SourceURL
			if seen[key] {
				continue
			}
			seen[key] = true
			sources = append(sources, src)
		}
	}
	return sources
}
