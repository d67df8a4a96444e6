package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/skillscout/skillscout/models"
)

const defaultBaseURL = "https://api.tavily.com"

// Client talks to the Tavily search and extract endpoints.
// https://docs.tavily.com/
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Search runs one ranked search. Each result carries the provider's
// relevance score; the caller applies its own threshold.
func (c *Client) Search(ctx context.Context, q string, maxResults int) ([]models.SourceItem, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	payload := map[string]any{"query": q, "max_results": maxResults}
	var raw struct {
		Results []struct {
			URL           string  `json:"url"`
			Title         string  `json:"title"`
			Content       string  `json:"content"`
			Score         float64 `json:"score"`
			PublishedDate string  `json:"published_date"`
		} `json:"results"`
	}
	if err := c.post(ctx, "/search", payload, &raw); err != nil {
		return nil, err
	}

	out := make([]models.SourceItem, 0, len(raw.Results))
	for _, r := range raw.Results {
		out = append(out, models.SourceItem{
			URL:          r.URL,
			Title:        r.Title,
			Domain:       domainOf(r.URL),
			PublishedAt:  r.PublishedDate,
			Snippet:      r.Content,
			MatchedQuery: q,
			Score:        r.Score,
		})
	}
	return out, nil
}

// Extract pulls the raw content of one URL.
func (c *Client) Extract(ctx context.Context, target string) (models.ExtractedDoc, error) {
	payload := map[string]any{"urls": target}
	var raw struct {
		Results []struct {
			URL        string `json:"url"`
			RawContent string `json:"raw_content"`
		} `json:"results"`
		FailedResults []struct {
			URL   string `json:"url"`
			Error string `json:"error"`
		} `json:"failed_results"`
	}
	if err := c.post(ctx, "/extract", payload, &raw); err != nil {
		return models.ExtractedDoc{}, err
	}
	if len(raw.Results) == 0 {
		if len(raw.FailedResults) > 0 {
			return models.ExtractedDoc{}, fmt.Errorf("extract %s: %s", target, raw.FailedResults[0].Error)
		}
		return models.ExtractedDoc{}, fmt.Errorf("extract %s: no content returned", target)
	}
	return models.ExtractedDoc{URL: raw.Results[0].URL, Content: raw.Results[0].RawContent}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tavily %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tavily %s returned status: %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tavily %s response: %w", path, err)
	}
	return nil
}

func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
