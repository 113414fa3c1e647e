// Package backend reads the slug listings the content service exposes for
// sitemap generation.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starlitjournals/sitemap/internal/models"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMalformedPayload = errors.New("malformed payload")
)

// maxBodySize caps a listing response at 10MB.
const maxBodySize = 10 * 1024 * 1024

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CategoryURL returns the listing endpoint for a category.
func (c *Client) CategoryURL(category string) string {
	return fmt.Sprintf("%s/api/sitemap/%s", c.baseURL, category)
}

// FetchCategory lists every item of a category. An item without a slug or an
// author fails the whole listing so no partial entries are emitted.
func (c *Client) FetchCategory(ctx context.Context, category string) ([]models.ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.CategoryURL(category), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return DecodeItems(body)
}

// DecodeItems parses a JSON array of content items and checks that each one
// carries the fields a sitemap path is built from.
func DecodeItems(body []byte) ([]models.ContentItem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an array, got null", ErrMalformedPayload)
	}

	items := make([]models.ContentItem, 0, len(raw))
	for i, r := range raw {
		var item models.ContentItem
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedPayload, i, err)
		}
		if item.Slug == "" {
			return nil, fmt.Errorf("%w: item %d has no slug", ErrMalformedPayload, i)
		}
		if item.Author == "" {
			return nil, fmt.Errorf("%w: item %d has no author", ErrMalformedPayload, i)
		}
		items = append(items, item)
	}

	return items, nil
}
