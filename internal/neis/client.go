package neis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"meal-export-backend/config"
	"meal-export-backend/internal/mealdate"
)

// Fetcher retrieves the raw meal schedule for a date range.
type Fetcher interface {
	FetchMeals(ctx context.Context, r mealdate.DateRange) ([]byte, error)
}

// Client calls the NEIS mealServiceDietInfo endpoint for one configured school.
type Client struct {
	cfg    config.UpstreamConfig
	client *http.Client
}

// NewClient creates a client for the configured upstream. A zero timeout
// leaves the transport default in place.
func NewClient(cfg config.UpstreamConfig) *Client {
	var transport http.RoundTripper = &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.WithError(err).Warnf("invalid proxy URL %q, upstream calls will not use a proxy", cfg.HTTPProxy)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// RequestURL builds the outbound URL for a date range.
func (c *Client) RequestURL(r mealdate.DateRange) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid upstream base URL: %w", err)
	}

	q := u.Query()
	q.Set(ParamOfficeCode, c.cfg.OfficeCode)
	q.Set(ParamSchoolCode, c.cfg.SchoolCode)
	q.Set(ParamType, c.cfg.Type)
	q.Set(ParamKey, c.cfg.Key)
	q.Set(ParamFromDate, r.From)
	q.Set(ParamToDate, r.To)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchMeals performs exactly one upstream request and returns the body unmodified.
func (c *Client) FetchMeals(ctx context.Context, r mealdate.DateRange) ([]byte, error) {
	reqURL, err := c.RequestURL(r)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("http request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: statusIfFailed(resp.StatusCode), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: errorText(body)}
	}

	summary := Summarize(body)
	log.WithFields(log.Fields{
		"from":        r.From,
		"to":          r.To,
		"result_code": summary.ResultCode,
		"rows":        summary.RowCount,
		"elapsed":     time.Since(start).String(),
	}).Debug("upstream meal schedule fetched")

	return body, nil
}

func (c *Client) readBody(rc io.Reader) ([]byte, error) {
	limit := c.cfg.MaxBodyBytes
	if limit <= 0 {
		body, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

func statusIfFailed(code int) int {
	if code < 200 || code > 299 {
		return code
	}
	return 0
}
