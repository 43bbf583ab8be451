package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/khoborlab/svnews/internal/logger"
)

// Client fetches pages with a fixed politeness delay before every request.
type Client struct {
	http      *http.Client
	userAgent string
	delay     time.Duration
	sleep     func(time.Duration)
}

func New(timeout, delay time.Duration, userAgent string) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		delay:     delay,
		sleep:     time.Sleep,
	}
}

// Get downloads the page body. Non-2xx responses are errors.
func (c *Client) Get(url string) (string, error) {
	if c.delay > 0 {
		c.sleep(c.delay)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", "url", url, "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
