// Package resource describes uploaded note attachments and the rules for
// classifying, deduplicating and picking them as thumbnails.
package resource

import (
	"crypto/md5"
	"encoding/hex"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ISOLayout matches the lastUpdated timestamps stored inside notes.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// Resource is the metadata kept on a note for one uploaded file.
type Resource struct {
	Name        string `json:"name" yaml:"name"`
	Size        int64  `json:"size" yaml:"size"`
	Hash        string `json:"hash" yaml:"hash"`
	Type        string `json:"type" yaml:"type"`
	FileURL     string `json:"fileURL" yaml:"file_url"`
	OldFileURL  string `json:"oldFileURL,omitempty" yaml:"old_file_url,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty" yaml:"last_updated,omitempty"`
}

// Hash returns the MD5 hex digest used to deduplicate resources.
func Hash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FromFile builds the Resource for a file uploaded to fileURL.
// An empty mime is sniffed from the content.
func FromFile(name, mime string, data []byte, fileURL string, now time.Time) Resource {
	if mime == "" {
		mime = Sniff(data)
	}
	return Resource{
		Name:        name,
		Size:        int64(len(data)),
		Hash:        Hash(data),
		Type:        GuessMIME(name, mime),
		FileURL:     fileURL,
		LastUpdated: now.UTC().Format(ISOLayout),
	}
}

var videoExtensions = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"3gp":  "video/3gpp",
	"ogg":  "video/ogg",
}

// GuessMIME corrects application/octet-stream from the video extension of name.
// Any other type is returned unchanged.
func GuessMIME(name, mime string) string {
	if mime != "application/octet-stream" {
		return mime
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if guessed, ok := videoExtensions[ext]; ok {
		return guessed
	}
	return mime
}

// Sniff detects the MIME type of data without parameters such as charset.
func Sniff(data []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return mime
}

// Kind groups MIME types by how a thumbnail is produced from them.
type Kind int

const (
	KindOther Kind = iota
	KindImage
	KindGIF
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindGIF:
		return "gif"
	case KindVideo:
		return "video"
	default:
		return "other"
	}
}

var imageTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/bmp":     true,
	"image/tiff":    true,
	"image/tif":     true,
	"image/svg":     true,
	"image/svg+xml": true,
	"image/webp":    true,
	"image/gif":     true,
}

var videoTypes = map[string]bool{
	"video/mp4":        true,
	"video/webm":       true,
	"video/ogg":        true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/x-matroska": true,
	"video/3gpp":       true,
}

// KindOf classifies a MIME type. Only the types a thumbnail can be made from
// are recognised; everything else is KindOther.
func KindOf(mime string) Kind {
	switch {
	case mime == "image/gif":
		return KindGIF
	case imageTypes[mime]:
		return KindImage
	case videoTypes[mime]:
		return KindVideo
	default:
		return KindOther
	}
}

// Merge appends added to existing and drops every resource whose hash was
// already seen. The first occurrence wins and order is kept.
func Merge(existing, added []Resource) []Resource {
	merged := make([]Resource, 0, len(existing)+len(added))
	seen := make(map[string]bool, len(existing)+len(added))
	for _, list := range [][]Resource{existing, added} {
		for _, r := range list {
			if seen[r.Hash] {
				continue
			}
			seen[r.Hash] = true
			merged = append(merged, r)
		}
	}
	return merged
}

// SelectThumbnailCandidate returns the largest image, or else the first video.
// Ties between images keep the earlier one.
func SelectThumbnailCandidate(resources []Resource) (Resource, bool) {
	var best Resource
	found := false
	for _, r := range resources {
		kind := KindOf(r.Type)
		if kind != KindImage && kind != KindGIF {
			continue
		}
		if !found || r.Size > best.Size {
			best = r
			found = true
		}
	}
	if found {
		return best, true
	}

	for _, r := range resources {
		if KindOf(r.Type) == KindVideo {
			return r, true
		}
	}
	return Resource{}, false
}
