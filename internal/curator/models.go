package curator

import (
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/resource"
)

// Status is the lifecycle state of a note.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// PinStatus marks a notebook or tag as pinned; the empty value means not pinned.
type PinStatus string

const (
	Pinned   PinStatus = "pinned"
	Unpinned PinStatus = ""
)

// Source is an external reference a note was captured from.
type Source struct {
	Source    string `json:"source" yaml:"source"`
	SourceURL string `json:"source_url" yaml:"source_url"`
}

// Note is a record of the notes collection, or of the notes_without_content
// view, in which case Content and OriginalContent are empty.
type Note struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Content         string              `json:"content,omitempty"`
	OriginalContent string              `json:"original_content,omitempty"`
	Description     string              `json:"description"`
	Status          Status              `json:"status"`
	Rating          float64             `json:"rating"`
	Weight          float64             `json:"weight"`
	Attachments     []string            `json:"attachments"`
	Resources       []resource.Resource `json:"resources"`
	Sources         []Source            `json:"sources"`
	Thumbnail       string              `json:"thumbnail"`
	Notebook        string              `json:"notebook"`
	Tags            []string            `json:"tags"`
	Score           float64             `json:"score,omitempty"`
	LastOpened      pocketbase.DateTime `json:"last_opened"`
	Created         pocketbase.DateTime `json:"created"`
	Updated         pocketbase.DateTime `json:"updated"`
	Expand          NoteExpand          `json:"expand"`
}

// NoteExpand holds the relations requested with expand=notebook,tags.
type NoteExpand struct {
	Notebook *Group  `json:"notebook,omitempty"`
	Tags     []Group `json:"tags,omitempty"`
}

// Group is a notebook or a tag. Both form a hierarchy through Parent.
type Group struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Parent    string              `json:"parent"`
	Status    PinStatus           `json:"status"`
	NoteCount int                 `json:"note_count,omitempty"`
	Created   pocketbase.DateTime `json:"created"`
	Updated   pocketbase.DateTime `json:"updated"`
}

type (
	Notebook = Group
	Tag      = Group
)

// IsPinned reports whether the group is pinned.
func (g Group) IsPinned() bool {
	return g.Status == Pinned
}

// NotePage is one page of a note list.
type NotePage struct {
	pocketbase.PageInfo
	Items []Note `json:"items"`
}
