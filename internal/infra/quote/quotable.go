// Package quote - quotable.go
// HTTP adapter for the quotable.io random quote endpoint.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// QuotableProvider implements Provider for a quotable.io compatible API.
type QuotableProvider struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

type quotableResponse struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// NewQuotableProvider creates an adapter for baseURL.
func NewQuotableProvider(baseURL string, timeout time.Duration) *QuotableProvider {
	return &QuotableProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Name returns the provider name.
func (p *QuotableProvider) Name() string {
	return "Quotable"
}

// IsAvailable checks if an endpoint is configured.
func (p *QuotableProvider) IsAvailable() bool {
	return p.baseURL != ""
}

// Fetch sends a GET to the endpoint and decodes {content, author}.
func (p *QuotableProvider) Fetch(ctx context.Context) (*Quote, error) {
	if !p.IsAvailable() {
		return nil, fmt.Errorf("quote endpoint not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var qr quotableResponse
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if strings.TrimSpace(qr.Content) == "" || strings.TrimSpace(qr.Author) == "" {
		return nil, ErrMalformed
	}

	return &Quote{
		Text:      qr.Content,
		Author:    qr.Author,
		Timestamp: p.now(),
	}, nil
}

// Ensure QuotableProvider implements Provider
var _ Provider = (*QuotableProvider)(nil)
