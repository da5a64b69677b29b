package pocketbase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ThumbQuery is the query PocketBase uses to serve a resized copy of an image.
func ThumbQuery(size string) string {
	return "?thumb=" + size
}

// FileURL builds the public URL of an uploaded file.
func (c *Client) FileURL(collection, recordID, filename string) string {
	return fmt.Sprintf("%s/api/files/%s/%s/%s",
		c.publicURL,
		url.PathEscape(collection),
		url.PathEscape(recordID),
		url.PathEscape(filename),
	)
}

// internalURL rewrites a public file URL so this process can reach it.
func (c *Client) internalURL(fileURL string) string {
	if c.publicURL == c.baseURL {
		return fileURL
	}
	if rest, ok := strings.CutPrefix(fileURL, c.publicURL); ok {
		return c.baseURL + rest
	}
	return fileURL
}

// Download fetches the bytes of a file URL.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	target := c.internalURL(fileURL)
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	res, err := req.Get(target)
	if err != nil {
		return nil, fmt.Errorf("GET %s > %w", target, err)
	}
	if res.IsError() {
		return nil, newResponseError(res.StatusCode(), res.String())
	}
	return res.Bytes(), nil
}
