// Package catalog talks to the OpenFoodFacts catalog service. It normalizes
// requests, responses and failures; it holds no state between calls.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"foodexplorer/internal/logging"
)

// searchFields is the field list requested from the upstream, matching what
// the rest of the application consumes.
const searchFields = "code,product_name,brands,images,nutrition_grades,categories_tags,ingredients_text,nutriments"

// DefaultPageSize is used when a caller does not specify one.
const DefaultPageSize = 24

// Config configures a Client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns sensible defaults pointing at the public service.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://world.openfoodfacts.org",
		UserAgent: "FoodExplorer/1.0 (food-explorer@example.com)",
		Timeout:   30 * time.Second,
	}
}

// Client is a stateless catalog service client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a catalog client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a catalog client with custom configuration.
func NewClientWithConfig(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultConfig().UserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		baseURL:   config.BaseURL,
		userAgent: config.UserAgent,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Search fetches one page of products matching the given parameters.
// Empty SearchTerm or CategoryTag omit the corresponding upstream filter.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}

	q := url.Values{}
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("page_size", strconv.Itoa(params.PageSize))
	q.Set("fields", searchFields)
	if params.SearchTerm != "" {
		q.Set("search_terms", params.SearchTerm)
		q.Set("search_simple", "1")
	}
	if params.CategoryTag != "" {
		q.Set("tagtype_0", "categories")
		q.Set("tag_contains_0", "contains")
		q.Set("tag_0", params.CategoryTag)
	}

	logging.CatalogDebug("Search: term=%q category=%q page=%d size=%d",
		params.SearchTerm, params.CategoryTag, params.Page, params.PageSize)

	var result SearchResult
	if err := c.getJSON(ctx, c.baseURL+"/cgi/search.pl?"+q.Encode(), &result); err != nil {
		return nil, err
	}

	logging.CatalogDebug("Search: got %d products (count=%d page=%d/%d)",
		len(result.Products), result.Count, result.Page, result.PageCount)
	return &result, nil
}

// productResponse is the upstream barcode-lookup envelope.
type productResponse struct {
	Status  int     `json:"status"` // 1 = found, 0 = not found
	Product Product `json:"product"`
}

// GetByCode fetches a single product by barcode.
func (c *Client) GetByCode(ctx context.Context, code string) (*Product, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: barcode required", ErrInvalidArgument)
	}

	var resp productResponse
	u := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(code))
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Status != 1 {
		return nil, fmt.Errorf("%w: code %s", ErrNotFound, code)
	}
	return &resp.Product, nil
}

// getJSON performs a GET and decodes the JSON body into out, translating
// failures into the client's error taxonomy.
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Get(logging.CategoryCatalog).Error("Request failed: %v", err)
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Get(logging.CategoryCatalog).Error("Upstream status %d for %s", resp.StatusCode, rawURL)
		return &UpstreamError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logging.Get(logging.CategoryCatalog).Error("Decode failed: %v", err)
		return &FormatError{Err: err}
	}
	return nil
}
