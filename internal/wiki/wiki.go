// Package wiki looks up short topic summaries from Wikipedia.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://en.wikipedia.org"

// Summary is a short topic summary with its canonical page link.
type Summary struct {
	Title    string
	Extract  string
	URL      string
	ImageURL string
}

// Client fetches page summaries from the Wikipedia REST API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a wiki client.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Used by tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// Lookup fetches the summary for a topic. The extract is trimmed to at most
// maxLines lines.
func (c *Client) Lookup(ctx context.Context, topic string, maxLines int) (*Summary, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("empty topic")
	}

	endpoint := c.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no wikipedia page for %q", topic)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia api: status %d", resp.StatusCode)
	}

	var payload struct {
		Title     string `json:"title"`
		Extract   string `json:"extract"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode wikipedia response: %w", err)
	}
	if payload.Extract == "" {
		return nil, fmt.Errorf("no readable summary for %q", topic)
	}

	return &Summary{
		Title:    payload.Title,
		Extract:  trimLines(payload.Extract, maxLines),
		URL:      payload.ContentURLs.Desktop.Page,
		ImageURL: payload.Thumbnail.Source,
	}, nil
}

func trimLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
