package facebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/khoborlab/svnews/internal/logger"
)

const apiVersion = "v19.0"

const defaultBaseURL = "https://graph.facebook.com"

// Scopes a page token must carry to publish to the feed.
var requiredScopes = []string{"pages_manage_posts", "pages_read_engagement"}

// Credential validation failures abort the run before any other side effect.
var ErrInvalidCredentials = errors.New("invalid page credentials")

// Client publishes posts to a Facebook Page feed.
type Client struct {
	pageID  string
	token   string
	http    *http.Client
	baseURL string
}

func New(pageID, token string) *Client {
	return &Client{
		pageID:  pageID,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type publishResponse struct {
	ID    string    `json:"id"`
	Error *apiError `json:"error"`
}

// Publish posts the message to the page feed. A response carrying a post id
// is success; everything else (non-2xx, timeout, malformed body) is failure.
// Expected HTTP-level failures never surface as errors to the caller.
func (c *Client) Publish(message string) bool {
	endpoint := fmt.Sprintf("%s/%s/%s/feed", c.baseURL, apiVersion, c.pageID)

	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", c.token)

	resp, err := c.http.PostForm(endpoint, form)
	if err != nil {
		logger.Error("feed publish request failed", "error", err)
		return false
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close publish response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("failed to read publish response", "error", err)
		return false
	}

	var parsed publishResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logger.Error("unparseable publish response", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return false
	}

	if parsed.ID != "" {
		logger.Info("published to page feed", "post_id", parsed.ID)
		return true
	}
	if parsed.Error != nil {
		logger.Error("page feed publish rejected",
			"status", resp.StatusCode,
			"code", parsed.Error.Code,
			"type", parsed.Error.Type,
			"message", parsed.Error.Message)
	} else {
		logger.Error("publish response carried no post id", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
	}
	return false
}

type debugTokenResponse struct {
	Data struct {
		IsValid   bool     `json:"is_valid"`
		Type      string   `json:"type"`
		ProfileID string   `json:"profile_id"`
		Scopes    []string `json:"scopes"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

// ValidateCredentials introspects the configured token once per run, before
// any publish attempt: the token must be valid, page-scoped, issued for the
// configured page, and carry the publish permission scopes.
func (c *Client) ValidateCredentials() error {
	endpoint := fmt.Sprintf("%s/%s/debug_token?%s", c.baseURL, apiVersion, url.Values{
		"input_token":  {c.token},
		"access_token": {c.token},
	}.Encode())

	resp, err := c.http.Get(endpoint)
	if err != nil {
		return fmt.Errorf("%w: token introspection request failed: %v", ErrInvalidCredentials, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close debug_token response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read introspection response: %v", ErrInvalidCredentials, err)
	}

	var parsed debugTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("%w: unparseable introspection response: %s", ErrInvalidCredentials, strings.TrimSpace(string(body)))
	}
	if parsed.Error != nil {
		return fmt.Errorf("%w: %s (code %d)", ErrInvalidCredentials, parsed.Error.Message, parsed.Error.Code)
	}

	data := parsed.Data
	if !data.IsValid {
		return fmt.Errorf("%w: token is expired or revoked; generate a new page access token", ErrInvalidCredentials)
	}
	if !strings.EqualFold(data.Type, "PAGE") {
		return fmt.Errorf("%w: token type is %q, a page-scoped token is required (not a user token)", ErrInvalidCredentials, data.Type)
	}
	if data.ProfileID != "" && data.ProfileID != c.pageID {
		return fmt.Errorf("%w: token belongs to page %s, configured page is %s", ErrInvalidCredentials, data.ProfileID, c.pageID)
	}
	for _, scope := range requiredScopes {
		if !containsScope(data.Scopes, scope) {
			return fmt.Errorf("%w: token is missing the %s permission; re-grant it in the app settings", ErrInvalidCredentials, scope)
		}
	}
	return nil
}

func containsScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
