// Package exchange fetches currency rates from open.er-api.com.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do"
)

const defaultBaseURL = "https://open.er-api.com/v6/latest"

// CurrencyNames maps common codes to their Korean names for display.
var CurrencyNames = map[string]string{
	"KRW": "한국 원",
	"USD": "미국 달러",
	"JPY": "일본 엔",
	"EUR": "유로",
	"GBP": "영국 파운드",
	"CNY": "중국 위안",
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

// Rate returns how many units of the target currency one unit of the base
// currency buys.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+from, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode rates: %w", err)
	}

	if payload.Result != "success" {
		return 0, fmt.Errorf("rates api returned result %q", payload.Result)
	}

	rate, ok := payload.Rates[to]
	if !ok {
		return 0, fmt.Errorf("no rate for currency %q", to)
	}

	return rate, nil
}
