// Package gamma is a thin client for the Polymarket Gamma REST API. It
// covers only what the simulation engine consumes: a volume-ordered batch
// of active markets and a keyword search. Records come back as raw JSON
// objects; normalization lives in the market package.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"polysim/internal/market"
)

const defaultBaseURL = "https://gamma-api.polymarket.com"

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchMarkets returns up to limit active markets ordered by volume
// descending. Markets flagged closed are dropped client-side as well,
// since the API filter is not always honored.
func (c *Client) FetchMarkets(ctx context.Context, limit int) ([]market.Record, error) {
	params := url.Values{
		"limit":        {strconv.Itoa(limit * 3)}, // overfetch, then filter
		"active":       {"true"},
		"closed":       {"false"},
		"end_date_min": {time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)},
		"order":        {"volumeNum"},
		"ascending":    {"false"},
	}

	records, err := c.getMarkets(ctx, params)
	if err != nil {
		return nil, err
	}

	open := filterOpen(records)
	if len(open) > limit {
		open = open[:limit]
	}
	slog.Debug("fetched markets", "returned", len(open), "raw", len(records))
	return open, nil
}

// SearchMarkets runs a keyword query against the markets endpoint.
func (c *Client) SearchMarkets(ctx context.Context, query string, limit int) ([]market.Record, error) {
	params := url.Values{
		"limit":     {strconv.Itoa(limit * 5)},
		"q":         {query},
		"active":    {"true"},
		"closed":    {"false"},
		"order":     {"volumeNum"},
		"ascending": {"false"},
	}

	records, err := c.getMarkets(ctx, params)
	if err != nil {
		return nil, err
	}

	open := filterOpen(records)
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (c *Client) getMarkets(ctx context.Context, params url.Values) ([]market.Record, error) {
	u := c.baseURL + "/markets?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching markets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gamma api returned status %d", resp.StatusCode)
	}

	var records []market.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding markets: %w", err)
	}
	return records, nil
}

func filterOpen(records []market.Record) []market.Record {
	open := records[:0]
	for _, rec := range records {
		if closed, ok := rec["closed"].(bool); ok && closed {
			continue
		}
		open = append(open, rec)
	}
	return open
}
