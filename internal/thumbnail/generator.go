// Package thumbnail picks or renders the preview image of a note.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/resource"
)

const (
	DefaultMinSize     = 10000
	DefaultSize        = "500x0"
	DefaultFrameOffset = time.Second

	frameFileName = "thumbnail.png"
	frameMIME     = "image/png"
)

// Config tunes a Generator. Zero fields fall back to the defaults.
type Config struct {
	Collection  string
	MinSize     int64
	Size        string
	FrameOffset time.Duration
}

func (c Config) withDefaults() Config {
	if c.Collection == "" {
		c.Collection = "notes"
	}
	if c.MinSize == 0 {
		c.MinSize = DefaultMinSize
	}
	if c.Size == "" {
		c.Size = DefaultSize
	}
	if c.FrameOffset == 0 {
		c.FrameOffset = DefaultFrameOffset
	}
	return c
}

// Generator writes the thumbnail field of notes.
type Generator struct {
	client pocketbase.RecordClient
	frames FrameExtractor
	config Config
	now    func() time.Time
}

// NewGenerator creates a Generator. frames may be nil, in which case video
// resources never get a thumbnail.
func NewGenerator(client pocketbase.RecordClient, frames FrameExtractor, cfg Config) *Generator {
	return &Generator{
		client: client,
		frames: frames,
		config: cfg.withDefaults(),
		now:    time.Now,
	}
}

type noteRecord struct {
	ID          string   `json:"id"`
	Thumbnail   string   `json:"thumbnail"`
	Attachments []string `json:"attachments"`
}

// Create derives a thumbnail for the note from resources when the note has none.
// For videos the rendered frame is uploaded as a new attachment and its Resource
// is returned so the caller can record it; otherwise the result is nil.
func (g *Generator) Create(ctx context.Context, noteID string, resources []resource.Resource) (*resource.Resource, error) {
	var note noteRecord
	if err := g.client.GetOne(ctx, g.config.Collection, noteID, pocketbase.RecordOptions{}, &note); err != nil {
		return nil, fmt.Errorf("client.GetOne(%s) > %w", noteID, err)
	}
	if note.Thumbnail != "" {
		return nil, nil
	}

	candidate, ok := resource.SelectThumbnailCandidate(resources)
	if !ok {
		return nil, nil
	}
	if candidate.Size < g.config.MinSize {
		slog.Default().Debug("thumbnail candidate too small",
			slog.String("note", noteID),
			slog.String("resource", candidate.Name),
			slog.Int64("size", candidate.Size))
		return nil, nil
	}

	mime := candidate.Type
	if !strings.Contains(mime, "image") && !strings.Contains(mime, "video") && !strings.Contains(mime, "application/octet-stream") {
		return nil, nil
	}

	var thumbnailURL string
	var frameResource *resource.Resource
	switch {
	case strings.Contains(mime, "video"):
		r, err := g.uploadFrame(ctx, note.ID, candidate)
		if err != nil {
			return nil, err
		}
		frameResource = &r
		thumbnailURL = r.FileURL + pocketbase.ThumbQuery(g.config.Size)
	case mime == "image/gif":
		thumbnailURL = candidate.FileURL
	default:
		thumbnailURL = candidate.FileURL + pocketbase.ThumbQuery(g.config.Size)
	}

	if err := g.write(ctx, note.ID, thumbnailURL); err != nil {
		return frameResource, err
	}
	return frameResource, nil
}

func (g *Generator) uploadFrame(ctx context.Context, noteID string, video resource.Resource) (resource.Resource, error) {
	if g.frames == nil {
		return resource.Resource{}, fmt.Errorf("no frame extractor configured for %s", video.Name)
	}
	data, err := g.client.Download(ctx, video.FileURL)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("client.Download(%s) > %w", video.FileURL, err)
	}
	frame, err := g.frames.ExtractFrame(ctx, data, g.config.FrameOffset)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("frames.ExtractFrame(%s) > %w", video.Name, err)
	}

	var updated noteRecord
	if err := g.client.Upload(ctx, g.config.Collection, noteID, "attachments+", []pocketbase.File{
		{Name: frameFileName, Reader: bytes.NewReader(frame)},
	}, &updated); err != nil {
		return resource.Resource{}, fmt.Errorf("client.Upload(%s) > %w", noteID, err)
	}
	if len(updated.Attachments) == 0 {
		return resource.Resource{}, fmt.Errorf("upload of %s to %s returned no attachments", frameFileName, noteID)
	}

	fileURL := g.client.FileURL(g.config.Collection, noteID, updated.Attachments[len(updated.Attachments)-1])
	return resource.FromFile(frameFileName, frameMIME, frame, fileURL, g.now()), nil
}

// Set points the note thumbnail at a resized fileURL, or clears it when fileURL is empty.
func (g *Generator) Set(ctx context.Context, noteID, fileURL string) error {
	thumbnailURL := ""
	if fileURL != "" {
		thumbnailURL = fileURL + pocketbase.ThumbQuery(g.config.Size)
	}
	return g.write(ctx, noteID, thumbnailURL)
}

func (g *Generator) write(ctx context.Context, noteID, thumbnailURL string) error {
	if err := g.client.Update(ctx, g.config.Collection, noteID, map[string]any{
		"thumbnail": thumbnailURL,
	}, pocketbase.RecordOptions{}, nil); err != nil {
		return fmt.Errorf("client.Update(%s, thumbnail) > %w", noteID, err)
	}
	return nil
}
