// Package airtable provides a screenshot.Store backed by the Airtable REST API.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/dusty-domains/internal/screenshot"
)

const (
	defaultBaseURL = "https://api.airtable.com"
	defaultTable   = "Submissions"
	// maxErrorBody bounds how much of an error response is kept for logs.
	maxErrorBody = 512
)

// Config captures the parameters required to query Airtable.
type Config struct {
	BaseURL string
	BaseID  string
	APIKey  string
	Table   string
	Timeout time.Duration
}

// StatusError is returned when Airtable answers with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("airtable returned status %d", e.StatusCode)
}

// Client queries the submissions table.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

type listResponse struct {
	Records []struct {
		ID     string `json:"id"`
		Fields struct {
			// URL is only present when requested in fields[].
			URL        string `json:"URL"`
			Screenshot string `json:"screenshot"`
		} `json:"fields"`
	} `json:"records"`
}

// New builds a Client. A nil httpClient gets one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if cfg.BaseID == "" {
		return nil, fmt.Errorf("airtable base id is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("airtable api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Table == "" {
		cfg.Table = defaultTable
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{httpClient: httpClient, cfg: cfg, logger: logger}, nil
}

// FindBySite returns the first submission whose URL field contains site.
func (c *Client) FindBySite(ctx context.Context, site string) (screenshot.Record, bool, error) {
	endpoint := c.searchURL(site)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return screenshot.Record{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return screenshot.Record{}, false, fmt.Errorf("query airtable: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close airtable response body failed", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("airtable lookup failed",
			zap.Int("status", resp.StatusCode),
			zap.String("site", site),
			zap.ByteString("body", body),
		)
		return screenshot.Record{}, false, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return screenshot.Record{}, false, fmt.Errorf("decode airtable response: %w", err)
	}
	if len(payload.Records) == 0 {
		return screenshot.Record{}, false, nil
	}
	first := payload.Records[0]
	return screenshot.Record{URL: first.Fields.URL, ScreenshotURL: first.Fields.Screenshot}, true, nil
}

// searchURL builds the list-records call restricted to one record and the screenshot field.
func (c *Client) searchURL(site string) string {
	q := url.Values{}
	q.Set("maxRecords", "1")
	q.Add("fields[]", "screenshot")
	q.Set("filterByFormula", searchFormula(site))
	return fmt.Sprintf("%s/v0/%s/%s?%s",
		c.cfg.BaseURL,
		url.PathEscape(c.cfg.BaseID),
		url.PathEscape(c.cfg.Table),
		q.Encode(),
	)
}

// searchFormula matches records whose URL field contains site.
func searchFormula(site string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(site)
	return fmt.Sprintf(`SEARCH("%s", URL)`, escaped)
}
