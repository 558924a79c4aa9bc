// Package export is the Go counterpart of the browser UI: it queries a
// running meald server, reshapes the month's schedule and writes it to disk.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"meal-export-backend/internal/mealdate"
	"meal-export-backend/internal/reshape"
)

// MsgLoadFailed is reported when the server gave no error text of its own.
const MsgLoadFailed = "failed to load data"

// ServerError is a non-2xx answer from the meald server.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client talks to the /api/meal endpoint of a meald server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Result is one successful search. It is never modified after Search returns.
type Result struct {
	Year  string
	Month string
	Data  reshape.Result
}

// Search fetches and reshapes the schedule for year and month.
func (c *Client) Search(ctx context.Context, year, month string) (*Result, error) {
	year = strings.TrimSpace(year)
	month = strings.TrimSpace(month)
	if year == "" || month == "" {
		return nil, &mealdate.ValidationError{Message: mealdate.MsgRequired}
	}
	month = mealdate.PaddedMonth(month)

	u, err := url.Parse(c.baseURL + "/api/meal")
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	q := u.Query()
	q.Set("year", year)
	q.Set("month", month)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: serverMessage(body)}
	}

	data, err := reshape.Reshape(body)
	if err != nil {
		return nil, fmt.Errorf("failed to reshape response: %w", err)
	}

	log.WithFields(log.Fields{
		"year":    year,
		"month":   month,
		"outcome": data.Outcome().String(),
	}).Debug("meal schedule loaded")

	return &Result{Year: year, Month: month, Data: data}, nil
}

// Preview renders the result as indented JSON.
func (r *Result) Preview() (string, error) {
	b, err := r.Data.MarshalIndent()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FileName is the download name, e.g. meal_data_2024_03.json.
func (r *Result) FileName() string {
	return fmt.Sprintf("meal_data_%s_%s.json", r.Year, r.Month)
}

// WriteFile writes the preview into dir and returns the file path.
func (r *Result) WriteFile(dir string) (string, error) {
	preview, err := r.Preview()
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, r.FileName())
	if err := os.WriteFile(path, []byte(preview), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Download writes result into dir. Without a successful search there is
// nothing to save, so a nil result is silently ignored.
func Download(result *Result, dir string) (string, error) {
	if result == nil {
		return "", nil
	}
	return result.WriteFile(dir)
}

// IsServerError reports whether err came from a non-2xx server answer.
func IsServerError(err error) bool {
	var serr *ServerError
	return errors.As(err, &serr)
}

func serverMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		if v := gjson.GetBytes(body, "error"); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return MsgLoadFailed
}
