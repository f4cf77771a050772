// Package weather proxies active weather alerts for the dispatch console.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// Alert is the subset of a NOAA alert the console shows.
type Alert struct {
	ID          string `json:"id"`
	AreaDesc    string `json:"areaDesc"`
	Event       string `json:"event"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Instruction string `json:"instruction"`
	Effective   string `json:"effective"`
	Expires     string `json:"expires"`
}

type alertFeed struct {
	Features []struct {
		Properties Alert `json:"properties"`
	} `json:"features"`
}

// Client fetches alerts. Failures degrade to an empty list.
type Client struct {
	url       string
	userAgent string
	timeout   time.Duration
	http      *retryablehttp.Client
}

func NewClient(url, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	hc.RetryWaitMin = 200 * time.Millisecond
	hc.RetryWaitMax = time.Second
	hc.HTTPClient.Timeout = timeout
	hc.Logger = logrusAdapter{}

	return &Client{url: url, userAgent: userAgent, timeout: timeout, http: hc}
}

// Alerts never fails. Upstream errors are logged and yield an empty list.
func (c *Client) Alerts(ctx context.Context) []Alert {
	alerts, err := c.fetch(ctx)
	if err != nil {
		logrus.WithError(err).WithField("url", c.url).Warn("Weather alerts unavailable")
		return []Alert{}
	}
	return alerts
}

func (c *Client) fetch(ctx context.Context) ([]Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var feed alertFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	alerts := make([]Alert, 0, len(feed.Features))
	for _, f := range feed.Features {
		alerts = append(alerts, f.Properties)
	}
	return alerts, nil
}

type logrusAdapter struct{}

func (logrusAdapter) Error(msg string, kv ...interface{}) { entry(kv).Error(msg) }
func (logrusAdapter) Info(msg string, kv ...interface{})  { entry(kv).Debug(msg) }
func (logrusAdapter) Debug(msg string, kv ...interface{}) { entry(kv).Debug(msg) }
func (logrusAdapter) Warn(msg string, kv ...interface{})  { entry(kv).Warn(msg) }

func entry(kv []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return logrus.WithFields(fields)
}
