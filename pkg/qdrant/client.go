// Package qdrant implements an HTTP client for a Qdrant-style vector
// database REST API.
//
// The client is stateless: every operation is a single HTTP request against
// one backend instance, bound at construction to a base URL and an optional
// API key. Cross-call concerns (cluster selection, rate limiting, cursors)
// live in other packages.
package qdrant

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

	"github.com/tidwall/gjson"

	qerr "github.com/quiver-mcp/quiver/pkg/errors"
)

// httpTimeout is the timeout for outgoing HTTP requests.
const httpTimeout = 30 * time.Second

// maxResponseSize bounds backend response bodies to protect against memory
// exhaustion from a misbehaving backend. 32 MB is generous for a single page
// of points.
const maxResponseSize = 32 * 1024 * 1024

// apiKeyTransport adds api-key authentication to backend requests.
type apiKeyTransport struct {
	transport http.RoundTripper
	apiKey    string
}

// RoundTrip adds the api-key header and forwards the request.
func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	newReq := req.Clone(req.Context())
	newReq.Header.Set("api-key", t.apiKey)

	return t.transport.RoundTrip(newReq)
}

// Client issues one HTTP request per operation to a single backend instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client bound to the given base URL. An empty apiKey means
// unauthenticated calls.
func New(baseURL, apiKey string) *Client {
	var transport http.RoundTripper = &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}

	if apiKey != "" {
		transport = &apiKeyTransport{
			transport: transport,
			apiKey:    apiKey,
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   httpTimeout,
		},
	}
}

// BaseURL returns the base URL the client was constructed with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one request against the backend and decodes the "result" field
// of the response envelope into result (which may be nil when the caller only
// cares about success).
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return qerr.NewBackendUnavailableError(
			fmt.Sprintf("request to %s failed", c.baseURL), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return qerr.NewBackendUnavailableError(
			fmt.Sprintf("failed to read response from %s", c.baseURL), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return qerr.NewBackendUnavailableError(backendErrorMessage(resp.StatusCode, data), nil)
	}

	if result == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return qerr.NewBackendUnavailableError(
			fmt.Sprintf("invalid JSON response from %s", c.baseURL), err)
	}
	if len(env.Result) == 0 {
		return qerr.NewBackendUnavailableError(
			fmt.Sprintf("response from %s has no result", c.baseURL), nil)
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return qerr.NewBackendUnavailableError(
			fmt.Sprintf("unexpected result shape from %s", c.baseURL), err)
	}

	return nil
}

// backendErrorMessage extracts the backend's own error description from an
// error response body. The backend reports errors as {"status": {"error":
// "..."}} but proxies in front of it may return arbitrary payloads, so the
// extraction is tolerant.
func backendErrorMessage(statusCode int, body []byte) string {
	if msg := gjson.GetBytes(body, "status.error").String(); msg != "" {
		return fmt.Sprintf("backend returned HTTP %d: %s", statusCode, msg)
	}
	if msg := gjson.GetBytes(body, "status").String(); msg != "" && msg != "ok" {
		return fmt.Sprintf("backend returned HTTP %d: %s", statusCode, msg)
	}
	return fmt.Sprintf("backend returned HTTP %d", statusCode)
}

// ListCollections returns the names of all collections on the backend.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var result collectionsResult
	if err := c.do(ctx, http.MethodGet, "/collections", nil, &result); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result.Collections))
	for _, col := range result.Collections {
		names = append(names, col.Name)
	}
	return names, nil
}

// GetCollection returns the backend's description of a collection.
func (c *Client) GetCollection(ctx context.Context, name string) (CollectionInfo, error) {
	var info CollectionInfo
	if err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(name), nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// CreateCollection creates a collection with the given vector configuration.
func (c *Client) CreateCollection(ctx context.Context, name string, params VectorParams) error {
	body := map[string]any{
		"vectors": params,
	}
	return c.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(name), body, nil)
}

// DeleteCollection removes a collection and all of its points.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(name), nil, nil)
}

// UpsertPoints inserts or updates points in a collection. The call waits for
// the change to be applied before returning.
func (c *Client) UpsertPoints(ctx context.Context, collection string, points []Point) error {
	body := map[string]any{
		"points": points,
	}
	path := "/collections/" + url.PathEscape(collection) + "/points?wait=true"
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// QueryPoints runs a similarity search against a collection.
func (c *Client) QueryPoints(ctx context.Context, collection string, req QueryRequest) ([]ScoredPoint, error) {
	var result queryResult
	path := "/collections/" + url.PathEscape(collection) + "/points/query"
	if err := c.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return result.Points, nil
}

// DeletePoints removes points by ID. The call waits for the change to be
// applied before returning.
func (c *Client) DeletePoints(ctx context.Context, collection string, ids []any) error {
	body := map[string]any{
		"points": ids,
	}
	path := "/collections/" + url.PathEscape(collection) + "/points/delete?wait=true"
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// ScrollPoints fetches one page of a collection scan. The returned
// NextPageOffset is nil when there is no further page.
func (c *Client) ScrollPoints(ctx context.Context, collection string, req ScrollRequest) (*ScrollResult, error) {
	var result ScrollResult
	path := "/collections/" + url.PathEscape(collection) + "/points/scroll"
	if err := c.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
