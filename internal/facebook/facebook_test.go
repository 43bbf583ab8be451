package facebook

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New("1234567890", "test-token")
	c.baseURL = srv.URL
	return c, srv
}

func TestPublishSuccess(t *testing.T) {
	var gotForm url.Values
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/1234567890/feed") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "1234567890_111"})
	})
	defer srv.Close()

	if !c.Publish("Hej från pipelinen") {
		t.Fatal("Publish returned false for a response carrying a post id")
	}
	if gotForm.Get("message") != "Hej från pipelinen" {
		t.Errorf("message = %q", gotForm.Get("message"))
	}
	if gotForm.Get("access_token") != "test-token" {
		t.Errorf("access_token = %q", gotForm.Get("access_token"))
	}
}

func TestPublishErrorPayload(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`))
	})
	defer srv.Close()

	if c.Publish("hej") {
		t.Error("Publish returned true for an API error payload")
	}
}

func TestPublishMalformedBody(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})
	defer srv.Close()

	if c.Publish("hej") {
		t.Error("Publish returned true for a non-JSON response")
	}
}

func TestPublishMissingID(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	defer srv.Close()

	if c.Publish("hej") {
		t.Error("Publish returned true without a post id in the response")
	}
}

func debugTokenBody(isValid bool, tokenType, profileID string, scopes []string) string {
	payload := map[string]any{"data": map[string]any{
		"is_valid":   isValid,
		"type":       tokenType,
		"profile_id": profileID,
		"scopes":     scopes,
	}}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestValidateCredentialsAccepted(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "debug_token") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(debugTokenBody(true, "PAGE", "1234567890",
			[]string{"pages_manage_posts", "pages_read_engagement"})))
	})
	defer srv.Close()

	if err := c.ValidateCredentials(); err != nil {
		t.Errorf("ValidateCredentials: %v", err)
	}
}

func TestValidateCredentialsRejections(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"expired", debugTokenBody(false, "PAGE", "1234567890",
			[]string{"pages_manage_posts", "pages_read_engagement"})},
		{"user token", debugTokenBody(true, "USER", "1234567890",
			[]string{"pages_manage_posts", "pages_read_engagement"})},
		{"wrong page", debugTokenBody(true, "PAGE", "999",
			[]string{"pages_manage_posts", "pages_read_engagement"})},
		{"missing scope", debugTokenBody(true, "PAGE", "1234567890",
			[]string{"pages_read_engagement"})},
		{"api error", `{"error":{"message":"bad token","code":190}}`},
		{"malformed", "not json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			defer srv.Close()

			err := c.ValidateCredentials()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("error does not wrap ErrInvalidCredentials: %v", err)
			}
		})
	}
}

func TestValidateCredentialsCaseInsensitiveType(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(debugTokenBody(true, "page", "1234567890",
			[]string{"pages_manage_posts", "pages_read_engagement"})))
	})
	defer srv.Close()

	if err := c.ValidateCredentials(); err != nil {
		t.Errorf("lowercase token type rejected: %v", err)
	}
}
