package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finsight/finsight-go/pkg/errors"
)

// SearchResult is one hit returned by a web search.
type SearchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// SearchClient abstracts the web search backend so the search tools can be
// tested without network access.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

const defaultTavilyBaseURL = "https://api.tavily.com"

// TavilyClient implements SearchClient against the Tavily search API.
type TavilyClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type TavilyOption func(*TavilyClient)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(c *TavilyClient) {
		c.httpClient = client
	}
}

func NewTavilyClient(apiKey string, opts ...TavilyOption) (*TavilyClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.InvalidInput, "search API key is required")
	}

	c := &TavilyClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultTavilyBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

// Search implements the SearchClient interface.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to encode search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to build search request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.ToolExecutionFailed, "search request failed"),
			errors.Fields{"query": query})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.WithFields(
			errors.New(errors.ToolExecutionFailed, fmt.Sprintf("search returned status %d", resp.StatusCode)),
			errors.Fields{"query": query, "body": string(payload)})
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to decode search response")
	}

	return parsed.Results, nil
}
