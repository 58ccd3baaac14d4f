// Package notion is a small client for the parts of the Notion REST API the
// lead pipeline needs (database query, page create/get/update) and a
// pipeline.RecordStore built on top of it.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
)

var (
	ErrNotFound    = errors.New("notion: object not found")
	ErrRateLimited = errors.New("notion: rate limited")
)

// APIError is the error object Notion returns for non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: unexpected status %d (%s): %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound || e.Code == "object_not_found"
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests || e.Code == "rate_limited"
	}
	return false
}

// Client holds a single HTTP session shared by every channel task. It carries
// no per-request state and is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	version string
	http    *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithVersion(v string) ClientOption {
	return func(c *Client) {
		if v = strings.TrimSpace(v); v != "" {
			c.version = v
		}
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   strings.TrimSpace(token),
		version: DefaultVersion,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RichText is a text run. Only plain text content is written.
type RichText struct {
	Type      string    `json:"type,omitempty"`
	Text      *TextBody `json:"text,omitempty"`
	PlainText string    `json:"plain_text,omitempty"`
}

type TextBody struct {
	Content string `json:"content"`
}

func Text(s string) []RichText {
	return []RichText{{Type: "text", Text: &TextBody{Content: s}}}
}

type DateValue struct {
	Start string `json:"start"`
}

type SelectValue struct {
	Name string `json:"name"`
}

type Relation struct {
	ID string `json:"id"`
}

// Property is a page property value. Exactly one value field is set.
type Property struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Title    []RichText   `json:"title,omitempty"`
	RichText []RichText   `json:"rich_text,omitempty"`
	URL      *string      `json:"url,omitempty"`
	Date     *DateValue   `json:"date,omitempty"`
	Select   *SelectValue `json:"select,omitempty"`
	Checkbox *bool        `json:"checkbox,omitempty"`
	Relation []Relation   `json:"relation,omitempty"`
	HasMore  bool         `json:"has_more,omitempty"`
}

type Parent struct {
	DatabaseID string `json:"database_id"`
}

type Page struct {
	Object     string              `json:"object"`
	ID         string              `json:"id"`
	Archived   bool                `json:"archived"`
	Properties map[string]Property `json:"properties"`
}

type TextCondition struct {
	Equals string `json:"equals"`
}

type Filter struct {
	Property string         `json:"property"`
	RichText *TextCondition `json:"rich_text,omitempty"`
}

type DatabaseQuery struct {
	Filter      *Filter `json:"filter,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
}

type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type CreatePageRequest struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

type updatePageRequest struct {
	Properties map[string]Property `json:"properties"`
}

func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q DatabaseQuery) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	var out Page
	if err := c.do(ctx, http.MethodPost, "/pages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var out Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePageProperties(ctx context.Context, pageID string, props map[string]Property) (*Page, error) {
	var out Page
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, updatePageRequest{Properties: props}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("notion: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
		apiErr := &APIError{}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notion: decode response: %w", err)
	}
	return nil
}
