package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoResult is returned when no query variant produced a search hit.
var ErrNoResult = errors.New("no search result")

// WikipediaClient queries the MediaWiki API for venue facts.
type WikipediaClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// WikipediaOption configures a WikipediaClient.
type WikipediaOption func(*WikipediaClient)

// WithWikipediaLogger sets a logger for debug output.
func WithWikipediaLogger(l *zap.Logger) WikipediaOption {
	return func(c *WikipediaClient) { c.logger = l }
}

// NewWikipediaClient creates a client against baseURL with a per-call timeout.
func NewWikipediaClient(baseURL string, timeout time.Duration, opts ...WikipediaOption) *WikipediaClient {
	c := &WikipediaClient{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryVariants builds 1-3 deduplicated search strings for a venue name:
// the full name, the first word, and the first two words.
func QueryVariants(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	words := strings.Fields(name)
	candidates := []string{name}
	if len(words) > 1 {
		candidates = append(candidates, words[0])
	}
	if len(words) > 2 {
		candidates = append(candidates, words[0]+" "+words[1])
	}
	var variants []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		variants = append(variants, c)
	}
	return variants
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Search runs one search call and returns the top result title, or
// ErrNoResult when the result set is empty.
func (c *WikipediaClient) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "1")
	params.Set("format", "json")

	var out searchResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return "", err
	}
	if len(out.Query.Search) == 0 {
		return "", ErrNoResult
	}
	return out.Query.Search[0].Title, nil
}

// SearchRace issues all query variants for name concurrently and returns
// the first successful non-empty title. Losing calls run to completion
// against their own timeouts and are ignored; the buffered channel keeps
// them from leaking.
func (c *WikipediaClient) SearchRace(ctx context.Context, name string) (string, error) {
	variants := QueryVariants(name)
	if len(variants) == 0 {
		return "", ErrNoResult
	}

	type hit struct {
		title string
		err   error
	}
	results := make(chan hit, len(variants))
	for _, query := range variants {
		go func(q string) {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			title, err := c.Search(callCtx, q)
			results <- hit{title: title, err: err}
		}(query)
	}

	var lastErr error = ErrNoResult
	for range variants {
		select {
		case h := <-results:
			if h.err == nil && h.title != "" {
				return h.title, nil
			}
			lastErr = h.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// FetchExtract retrieves the plain-text extract for a page title.
func (c *WikipediaClient) FetchExtract(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)
	params.Set("format", "json")

	var out extractResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return "", err
	}
	for _, page := range out.Query.Pages {
		if page.Extract != "" {
			return page.Extract, nil
		}
	}
	return "", ErrNoResult
}

// PageURL returns the canonical article URL for a title.
func PageURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

func (c *WikipediaClient) getJSON(ctx context.Context, params url.Values, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
