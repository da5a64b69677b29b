package pocketbase

import (
	"context"
	"encoding/json"
	"io"
)

//go:generate mockgen -source=interface.go -destination=../mocks/pocketbase/mock_client.go -package=mock_pocketbase

// RecordClient is the subset of the PocketBase records API the curator uses.
// Methods decode the response into dest, which must be a pointer.
type RecordClient interface {
	GetFullList(ctx context.Context, collection string, opts ListOptions, dest any) error
	GetList(ctx context.Context, collection string, page, perPage int, opts ListOptions, dest any) (PageInfo, error)
	GetOne(ctx context.Context, collection, id string, opts RecordOptions, dest any) error
	GetFirstListItem(ctx context.Context, collection, filter string, opts RecordOptions, dest any) error
	Create(ctx context.Context, collection string, body any, dest any) error
	Update(ctx context.Context, collection, id string, body any, opts RecordOptions, dest any) error
	Upload(ctx context.Context, collection, id, field string, files []File, dest any) error
	Delete(ctx context.Context, collection, id string) error
	Download(ctx context.Context, fileURL string) ([]byte, error)
	FileURL(collection, recordID, filename string) string
}

// Subscriber delivers realtime record events for a topic such as "notes/*".
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(Event)) (UnsubscribeFunc, error)
}

// UnsubscribeFunc removes a single subscription.
type UnsubscribeFunc func(ctx context.Context) error

// ListOptions are the query parameters accepted by list endpoints.
type ListOptions struct {
	Sort      string
	Filter    string
	Expand    string
	Fields    string
	SkipTotal bool
}

// RecordOptions are the query parameters accepted by single-record endpoints.
type RecordOptions struct {
	Expand string
	Fields string
}

// PageInfo is the pagination envelope of a list response.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// File is an attachment to upload.
type File struct {
	Name   string
	Reader io.Reader
}

// Event is a realtime record notification.
type Event struct {
	Topic  string          `json:"-"`
	Action string          `json:"action"`
	Record json.RawMessage `json:"record"`
}
