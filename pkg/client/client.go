// Package client is a thin JSON client for the pricelist atlas HTTP API. It
// neither retries nor caches.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/goccy/go-json"
)

const DefaultBaseURL = "http://localhost:3000"

// APIError is a non-2xx response. Message carries the server's error or
// reply text when the body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Reply
}

func (c *Client) Services(ctx context.Context) (*domain.ServiceCatalog, error) {
	var doc domain.ServiceCatalog
	if err := c.Get(ctx, "/api/getAllServices", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// File fetches one of the family's raw index documents.
func (c *Client) File(ctx context.Context, family, name string) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.Get(ctx, "/api/"+url.PathEscape(family)+"/"+url.PathEscape(name), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) options(ctx context.Context, path string, query url.Values) ([]api.Option, error) {
	var options []api.Option
	if err := c.Get(ctx, path, query, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (c *Client) ServiceOptions(ctx context.Context) ([]api.Option, error) {
	return c.options(ctx, "/api/options/services", nil)
}

func (c *Client) VersionOptions(ctx context.Context) ([]api.Option, error) {
	return c.options(ctx, "/api/options/versions", nil)
}

func (c *Client) RegionOptions(ctx context.Context) ([]api.Option, error) {
	return c.options(ctx, "/api/options/regions", nil)
}

func (c *Client) ProductOptions(ctx context.Context, regions []string) ([]api.Option, error) {
	return c.options(ctx, "/api/options/products", url.Values{"region": regions})
}

func (c *Client) Durations(ctx context.Context) ([]api.Option, error) {
	return c.options(ctx, "/api/durations", nil)
}

type TableQuery struct {
	Version  string
	Regions  []string
	Products []string
	Duration string
	Search   string
	Sort     string
}

func (q TableQuery) values() url.Values {
	v := url.Values{}
	setIf := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	setIf("version", q.Version)
	setIf("duration", q.Duration)
	setIf("search", q.Search)
	setIf("sort", q.Sort)
	for _, r := range q.Regions {
		v.Add("region", r)
	}
	for _, p := range q.Products {
		v.Add("product", p)
	}
	return v
}

func (c *Client) PricingTable(ctx context.Context, q TableQuery) (*api.PricingTable, error) {
	var table api.PricingTable
	if err := c.Get(ctx, "/api/pricing/table", q.values(), &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (c *Client) Chat(ctx context.Context, messages []api.ChatMessage) (string, error) {
	var resp api.ChatResponse
	if err := c.Post(ctx, "/api/chatbot", api.ChatRequest{Messages: messages}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}
