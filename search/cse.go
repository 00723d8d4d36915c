package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultCSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// CSEConfig configures the Custom Search JSON API backend.
type CSEConfig struct {
	APIKey   string
	EngineID string

	// Endpoint overrides the API URL, mainly for tests.
	Endpoint string

	// Timeout bounds one query. Default: 15s.
	Timeout time.Duration

	Client *http.Client
}

func (c *CSEConfig) defaults() {
	if c.Endpoint == "" {
		c.Endpoint = defaultCSEEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
}

// CSE is the API-backed search backend.
type CSE struct {
	cfg CSEConfig
}

// NewCSE creates the API backend. Missing credentials are an error so
// provider auto-selection can fall through to the browser scraper.
func NewCSE(cfg CSEConfig) (*CSE, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("search: cse requires api key and engine id")
	}
	cfg.defaults()
	return &CSE{cfg: cfg}, nil
}

func (c *CSE) Name() string { return "cse" }

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search queries the API. The API caps num at 10 per request.
func (c *CSE) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 10 {
		limit = 10
	}

	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("cx", c.cfg.EngineID)
	q.Set("q", query)
	q.Set("num", fmt.Sprintf("%d", limit))
	q.Set("hl", "ja")
	q.Set("gl", "jp")
	q.Set("safe", "off")

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search: build cse request: %w", err)
	}
	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: cse query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("search: read cse response: %w", err)
	}

	var out cseResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("search: decode cse response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("search: cse error %d: %s", out.Error.Code, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: cse status %d", resp.StatusCode)
	}

	results := make([]Result, 0, len(out.Items))
	for _, it := range out.Items {
		if it.Link == "" {
			continue
		}
		results = append(results, Result{Title: it.Title, Link: it.Link, Snippet: it.Snippet})
	}
	return results, nil
}
