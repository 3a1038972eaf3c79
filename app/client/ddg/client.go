// Package ddg queries the DuckDuckGo instant-answer API for web search.
package ddg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/do"
)

const defaultBaseURL = "https://api.duckduckgo.com/"

type Result struct {
	Title string
	Text  string
	URL   string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(_ *do.Injector) (*Client, error) {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}, nil
}

// Search returns up to maxResults instant-answer results for the query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var results []Result

	if payload.AbstractText != "" {
		results = append(results, Result{
			Title: payload.Heading,
			Text:  payload.AbstractText,
			URL:   payload.AbstractURL,
		})
	}

	for _, t := range payload.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if t.Text == "" {
			continue
		}
		results = append(results, Result{
			Title: t.Text,
			Text:  t.Text,
			URL:   t.FirstURL,
		})
	}

	return results, nil
}
