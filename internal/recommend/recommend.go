// Package recommend fetches suggested issues from the app backend.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/idilsaglam/issuetracker/internal/editor"
)

const Path = "/api/recommendedProductIssue"

// Response is the backend payload. ProductIssue is null when there is no
// recommendation.
type Response struct {
	ProductIssue *editor.Suggestion `json:"productIssue"`
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recommendation status %d", e.Code)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ editor.Recommender = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Recommend(ctx context.Context, productID string) (*editor.Suggestion, error) {
	u := c.baseURL + Path + "?" + url.Values{"productId": {productID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request (recommend): %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse recommendation: %w", err)
	}
	return out.ProductIssue, nil
}
