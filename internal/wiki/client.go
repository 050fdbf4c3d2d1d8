// internal/wiki/client.go
//
// HTTP client for the definition importer. Fetches the printable
// rendering of a word's Wiktionary page and feeds it to the parser.

package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://ru.wiktionary.org/w/index.php"

// Client fetches and parses Wiktionary pages. Both fields may be
// overridden in tests.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewClient builds a client against ru.wiktionary.org.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		BaseURL:    defaultBaseURL,
	}
}

// Definitions fetches the printable page for word and parses it.
func (c *Client) Definitions(ctx context.Context, word string) ([]Definition, error) {
	pageURL := fmt.Sprintf("%s?title=%s&printable=yes", c.BaseURL, url.QueryEscape(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: unexpected status %s", pageURL, resp.Status)
	}
	return Parse(resp.Body)
}
