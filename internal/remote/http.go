package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// HTTPClient talks to a REST document store. Documents live under
// /collections/<collection>/documents/<id>; listings go through
// POST /collections/<collection>/query.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// HTTPOption customizes the HTTP client.
type HTTPOption func(*HTTPClient)

// WithHTTPClient injects a custom http.Client (timeouts, transport).
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.client = client }
}

// NewHTTPClient creates a client for the given endpoint.
func NewHTTPClient(baseURL, apiKey string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create implements Client.
func (c *HTTPClient) Create(ctx context.Context, collection, id string, data any) error {
	return c.write(ctx, http.MethodPut, collection, id, data)
}

// Update implements Client.
func (c *HTTPClient) Update(ctx context.Context, collection, id string, data any) error {
	return c.write(ctx, http.MethodPatch, collection, id, data)
}

// Get implements Client.
func (c *HTTPClient) Get(ctx context.Context, collection, id string) (Document, error) {
	op := fmt.Sprintf("get %s/%s", collection, id)
	body, err := c.do(ctx, op, http.MethodGet, c.documentURL(collection, id), nil, collection, id)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return doc, nil
}

// Delete implements Client.
func (c *HTTPClient) Delete(ctx context.Context, collection, id string) error {
	op := fmt.Sprintf("delete %s/%s", collection, id)
	_, err := c.do(ctx, op, http.MethodDelete, c.documentURL(collection, id), nil, collection, id)
	return err
}

// List implements Client.
func (c *HTTPClient) List(ctx context.Context, collection string, query Query) ([]Document, error) {
	op := fmt.Sprintf("list %s", collection)
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("encode query: %w", err)}
	}
	target := fmt.Sprintf("%s/collections/%s/query", c.baseURL, url.PathEscape(collection))
	body, err := c.do(ctx, op, http.MethodPost, target, payload, collection, "")
	if err != nil {
		return nil, err
	}
	var docs []Document
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return docs, nil
}

func (c *HTTPClient) write(ctx context.Context, method, collection, id string, data any) error {
	op := fmt.Sprintf("%s %s/%s", strings.ToLower(method), collection, id)
	payload, err := json.Marshal(data)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("encode payload: %w", err)}
	}
	_, err = c.do(ctx, op, method, c.documentURL(collection, id), payload, collection, id)
	return err
}

func (c *HTTPClient) documentURL(collection, id string) string {
	return fmt.Sprintf("%s/collections/%s/documents/%s",
		c.baseURL, url.PathEscape(collection), url.PathEscape(id))
}

func (c *HTTPClient) do(ctx context.Context, op, method, target string, payload []byte, collection, id string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthenticationError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Collection: collection, ID: id}
	default:
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}
}
