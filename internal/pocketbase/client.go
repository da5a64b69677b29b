// Package pocketbase is a thin client for the PocketBase records, files and realtime APIs.
package pocketbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"resty.dev/v3"
)

const superusersCollection = "_superusers"

// Config holds the endpoints a Client talks to.
type Config struct {
	// BaseURL is the address the process reaches PocketBase on, e.g. a Docker service name.
	BaseURL string
	// PublicURL is the origin browsers use; file URLs are built from it.
	PublicURL string
	// FTSCollections routes GET list requests for these collections to the full-text search endpoint.
	FTSCollections []string
}

// Client talks to a PocketBase instance over HTTP.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	publicURL  string
	fts        map[string]bool
	auth       *AuthStore

	authMu      sync.Mutex
	credentials *credentials

	mu       sync.Mutex
	realtime *realtimeConn
}

var (
	_ RecordClient = (*Client)(nil)
	_ Subscriber   = (*Client)(nil)
)

// NewClient creates a Client for cfg.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = baseURL
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Accept", "application/json")

	fts := make(map[string]bool, len(cfg.FTSCollections))
	for _, c := range cfg.FTSCollections {
		fts[c] = true
	}

	return &Client{
		httpClient: client,
		baseURL:    baseURL,
		publicURL:  publicURL,
		fts:        fts,
		auth:       &AuthStore{},
	}
}

// Close stops any realtime connection and releases the HTTP client.
func (c *Client) Close() error {
	c.mu.Lock()
	rt := c.realtime
	c.realtime = nil
	c.mu.Unlock()
	if rt != nil {
		rt.close()
	}
	return c.httpClient.Close()
}

// AuthStore returns the store holding the current auth token.
func (c *Client) AuthStore() *AuthStore {
	return c.auth
}

// BaseURL returns the internal address of PocketBase.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PublicURL returns the origin used in file URLs.
func (c *Client) PublicURL() string {
	return c.publicURL
}

// request builds an authorized request, logging in again first when the token has expired.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return nil, err
	}
	req := c.httpClient.R().SetContext(ctx)
	if token := c.auth.Token(); token != "" {
		req.SetHeader("Authorization", token)
	}
	return req, nil
}

// do sends req and decodes a successful JSON body into dest when dest is not nil.
func (c *Client) do(req *resty.Request, method, path string, dest any) error {
	res, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s > %w", method, path, err)
	}
	if res.IsError() {
		return newResponseError(res.StatusCode(), res.String())
	}
	if dest == nil {
		return nil
	}
	body := res.String()
	if body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return fmt.Errorf("json.Unmarshal(%s %s) > %w", method, path, err)
	}
	return nil
}

func recordsPath(collection string) string {
	return "/api/collections/" + url.PathEscape(collection) + "/records"
}

func recordPath(collection, id string) string {
	return recordsPath(collection) + "/" + url.PathEscape(id)
}

func (opts ListOptions) params(page, perPage int) map[string]string {
	params := map[string]string{
		"page":    fmt.Sprint(page),
		"perPage": fmt.Sprint(perPage),
	}
	if opts.Sort != "" {
		params["sort"] = opts.Sort
	}
	if opts.Filter != "" {
		params["filter"] = opts.Filter
	}
	if opts.Expand != "" {
		params["expand"] = opts.Expand
	}
	if opts.Fields != "" {
		params["fields"] = opts.Fields
	}
	if opts.SkipTotal {
		params["skipTotal"] = "1"
	}
	return params
}

func (opts RecordOptions) params() map[string]string {
	params := map[string]string{}
	if opts.Expand != "" {
		params["expand"] = opts.Expand
	}
	if opts.Fields != "" {
		params["fields"] = opts.Fields
	}
	return params
}

type listResponse struct {
	PageInfo
	Items json.RawMessage `json:"items"`
}

func (c *Client) list(ctx context.Context, collection string, page, perPage int, opts ListOptions) (listResponse, error) {
	path := recordsPath(collection)
	if c.fts[collection] {
		path += "/fts"
	}
	var resp listResponse
	req, err := c.request(ctx)
	if err != nil {
		return listResponse{}, err
	}
	req.SetQueryParams(opts.params(page, perPage))
	if err := c.do(req, http.MethodGet, path, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// GetList fetches one page of records.
func (c *Client) GetList(ctx context.Context, collection string, page, perPage int, opts ListOptions, dest any) (PageInfo, error) {
	resp, err := c.list(ctx, collection, page, perPage, opts)
	if err != nil {
		return PageInfo{}, err
	}
	if len(resp.Items) > 0 {
		if err := json.Unmarshal(resp.Items, dest); err != nil {
			return resp.PageInfo, fmt.Errorf("json.Unmarshal(items) > %w", err)
		}
	}
	return resp.PageInfo, nil
}

// fullListBatch matches the batch size the official SDKs use.
const fullListBatch = 500

// GetFullList fetches every record matching opts, batch by batch.
func (c *Client) GetFullList(ctx context.Context, collection string, opts ListOptions, dest any) error {
	opts.SkipTotal = true
	var all []json.RawMessage
	for page := 1; ; page++ {
		resp, err := c.list(ctx, collection, page, fullListBatch, opts)
		if err != nil {
			return err
		}
		var items []json.RawMessage
		if len(resp.Items) > 0 {
			if err := json.Unmarshal(resp.Items, &items); err != nil {
				return fmt.Errorf("json.Unmarshal(items) > %w", err)
			}
		}
		all = append(all, items...)
		if len(items) < fullListBatch {
			break
		}
	}

	if all == nil {
		all = []json.RawMessage{}
	}
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("json.Unmarshal(full list) > %w", err)
	}
	return nil
}

// GetOne fetches a record by id.
func (c *Client) GetOne(ctx context.Context, collection, id string, opts RecordOptions, dest any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	req.SetQueryParams(opts.params())
	return c.do(req, http.MethodGet, recordPath(collection, id), dest)
}

// GetFirstListItem returns the first record matching filter or a 404 ResponseError.
func (c *Client) GetFirstListItem(ctx context.Context, collection, filter string, opts RecordOptions, dest any) error {
	resp, err := c.list(ctx, collection, 1, 1, ListOptions{
		Filter:    filter,
		Expand:    opts.Expand,
		Fields:    opts.Fields,
		SkipTotal: true,
	})
	if err != nil {
		return err
	}
	var items []json.RawMessage
	if len(resp.Items) > 0 {
		if err := json.Unmarshal(resp.Items, &items); err != nil {
			return fmt.Errorf("json.Unmarshal(items) > %w", err)
		}
	}
	if len(items) == 0 {
		return &ResponseError{
			Status:  http.StatusNotFound,
			Message: "The requested resource wasn't found.",
		}
	}
	if err := json.Unmarshal(items[0], dest); err != nil {
		return fmt.Errorf("json.Unmarshal(first item) > %w", err)
	}
	return nil
}

// Create creates a record from a JSON body.
func (c *Client) Create(ctx context.Context, collection string, body any, dest any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	req.SetHeader("Content-Type", "application/json").
		SetBody(body)
	return c.do(req, http.MethodPost, recordsPath(collection), dest)
}

// Update patches a record with a JSON body. Keys may use the "field+" and "field-"
// modifiers to append to or remove from multi-value fields.
func (c *Client) Update(ctx context.Context, collection, id string, body any, opts RecordOptions, dest any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	req.SetHeader("Content-Type", "application/json").
		SetQueryParams(opts.params()).
		SetBody(body)
	return c.do(req, http.MethodPatch, recordPath(collection, id), dest)
}

// Upload patches a record with multipart files under field, e.g. "attachments+".
func (c *Client) Upload(ctx context.Context, collection, id, field string, files []File, dest any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		req.SetFileReader(field, f.Name, f.Reader)
	}
	return c.do(req, http.MethodPatch, recordPath(collection, id), dest)
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	return c.do(req, http.MethodDelete, recordPath(collection, id), nil)
}

// Health checks the /api/health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(c.httpClient.R().SetContext(ctx), http.MethodGet, "/api/health", nil)
}
