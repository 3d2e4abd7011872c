package off

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/foodlens-app/nutrition-mcp-server/internal/config"
)

// searchFields is the field projection requested from the search API.
// Keeping the payload narrow keeps candidate scoring cheap.
const searchFields = "code,product_name,brands,nutrition_grades,nova_group,additives_tags,nutriments,image_front_url,categories_tags,ecoscore_grade"

// Client talks to the live Open Food Facts HTTP API
type Client struct {
	httpClient *http.Client
	productURL string
	searchURL  string
	userAgent  string
	log        *slog.Logger
}

// Ensure Client implements the Backend interface
var _ Backend = (*Client)(nil)

// lookupResponse is the product endpoint envelope. A status of 0 means
// the barcode is not in the database.
type lookupResponse struct {
	Status  int      `json:"status"`
	Code    string   `json:"code"`
	Product *Product `json:"product"`
}

// searchResponse is the search endpoint envelope
type searchResponse struct {
	Count    int       `json:"count"`
	Products []Product `json:"products"`
}

// NewClient creates a new Open Food Facts API client
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		productURL: cfg.ProductURL,
		searchURL:  cfg.SearchURL,
		userAgent:  cfg.UserAgent,
		log:        logger,
	}
}

// ProductByBarcode fetches a product by barcode.
// Returns (nil, nil) when the barcode is unknown upstream.
func (c *Client) ProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	start := time.Now()
	c.log.Debug("ProductByBarcode starting", "barcode", barcode)

	endpoint := fmt.Sprintf("%s/%s.json", c.productURL, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Barcode lookup request failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("barcode lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug("No product found for barcode", "barcode", barcode, "duration", time.Since(start))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("Barcode lookup returned unexpected status", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, fmt.Errorf("barcode lookup: unexpected status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("Barcode lookup decode failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}

	// status == 0 or a missing product payload is "not found", not an error
	if payload.Status == 0 || payload.Product == nil {
		c.log.Debug("Barcode not in database", "barcode", barcode, "duration", time.Since(start))
		return nil, nil
	}

	product := payload.Product
	if product.Code == "" {
		product.Code = payload.Code
	}

	c.log.Info("ProductByBarcode completed", "found", true, "duration", time.Since(start))
	return product, nil
}

// SearchByCategory queries the search API for up to limit products in a
// category, sorted best nutrition grade first as a pre-filter hint.
func (c *Client) SearchByCategory(ctx context.Context, category string, limit int) ([]Product, error) {
	start := time.Now()
	c.log.Debug("SearchByCategory starting", "category", category, "limit", limit)

	params := url.Values{}
	params.Set("categories_tags_en", category)
	params.Set("sort_by", "nutriscore_score")
	params.Set("page_size", fmt.Sprintf("%d", limit))
	params.Set("json", "1")
	params.Set("fields", searchFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Category search request failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("category search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("Category search returned unexpected status", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, fmt.Errorf("category search: unexpected status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("Category search decode failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	c.log.Info("SearchByCategory completed", "count", len(payload.Products), "duration", time.Since(start))
	return payload.Products, nil
}

// HealthCheck probes the product endpoint with a HEAD-style request
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.productURL+"/737628064502.json", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("health check: upstream status %d", resp.StatusCode)
	}
	return nil
}

// Close closes the client (no-op for the HTTP backend)
func (c *Client) Close() error {
	return nil
}
