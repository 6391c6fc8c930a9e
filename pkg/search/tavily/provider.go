// Package tavily is a minimal client for the Tavily web-search API. It
// returns results in Tavily's raw shape; flattening belongs to
// search.Normalize.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nitishkumarnitc/HealthBot/pkg/search"
)

const defaultBaseURL = "https://api.tavily.com"

type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	mock       bool
	httpClient *http.Client
}

var _ search.Provider = (*Client)(nil)

// New creates a Tavily client. With mock enabled, Search returns a canned
// result and never touches the network, which keeps the whole flow runnable
// without an API key.
func New(apiKey, baseURL string, maxResults int, mock bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if maxResults <= 0 {
		maxResults = 4
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		mock:       mock,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

func (c *Client) Search(ctx context.Context, query string) (any, error) {
	if c.mock {
		return map[string]any{
			"results": []any{
				map[string]any{
					"title":   fmt.Sprintf("Mock result for %s", query),
					"snippet": "This is a mock snippet",
					"content": fmt.Sprintf("Mock content for %s.", query),
				},
			},
		}, nil
	}

	reqBody := searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	// Decode into the loose shape; Normalize handles whatever Tavily sends.
	var raw any
	if err := json.Unmarshal(bodyBytes, &raw); err != nil {
		// Some deployments answer with plain text.
		return string(bodyBytes), nil
	}
	return raw, nil
}
