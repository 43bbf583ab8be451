package translate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestTranslator(handler http.HandlerFunc) (*Translator, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t := New("")
	t.freeEndpoint = srv.URL
	return t, srv
}

func TestTranslateSuccess(t *testing.T) {
	tr, srv := newTestTranslator(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tl"); got != "bn" {
			t.Errorf("target language = %q, want bn", got)
		}
		w.Write([]byte(`[[["হ্যালো বিশ্ব","Hello World",null,null,10]],null,"en"]`))
	})
	defer srv.Close()

	if got := tr.Translate("Hello World", "bn"); got != "হ্যালো বিশ্ব" {
		t.Errorf("Translate = %q, want the translated text", got)
	}
}

func TestTranslateJoinsSegments(t *testing.T) {
	tr, srv := newTestTranslator(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[["প্রথম অংশ ","first part"],["দ্বিতীয় অংশ","second part"]],null,"en"]`))
	})
	defer srv.Close()

	if got := tr.Translate("first part second part", "bn"); got != "প্রথম অংশ দ্বিতীয় অংশ" {
		t.Errorf("segments not joined: %q", got)
	}
}

func TestTranslatePassthroughOnFailure(t *testing.T) {
	tr, srv := newTestTranslator(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	if got := tr.Translate("Hello World", "bn"); got != "Hello World" {
		t.Errorf("Translate on failure = %q, want the original text", got)
	}
}

func TestTranslatePassthroughOnMalformedBody(t *testing.T) {
	tr, srv := newTestTranslator(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})
	defer srv.Close()

	if got := tr.Translate("Hello World", "bn"); got != "Hello World" {
		t.Errorf("Translate on malformed body = %q, want the original text", got)
	}
}

func TestTranslateEmptyInputUnchanged(t *testing.T) {
	tr := New("")
	tr.freeEndpoint = "http://127.0.0.1:0" // must never be reached

	if got := tr.Translate("", "bn"); got != "" {
		t.Errorf("empty input changed: %q", got)
	}
	if got := tr.Translate("   \n ", "bn"); got != "   \n " {
		t.Errorf("whitespace input changed: %q", got)
	}
}

func TestNormalizeForTranslationCapsAndCollapses(t *testing.T) {
	out := normalizeForTranslation("Hello    World\n\nTest")
	if out != "Hello World Test" {
		t.Errorf("whitespace not collapsed: %q", out)
	}

	long := strings.Repeat("abcde ", 3000)
	out = normalizeForTranslation(long)
	if n := len([]rune(out)); n > maxTranslateRunes {
		t.Errorf("input not capped: %d runes", n)
	}
}

func TestParseFreeServiceResponseEmpty(t *testing.T) {
	if _, err := parseFreeServiceResponse([]byte(`[]`)); err == nil {
		t.Error("empty response should be an error")
	}
	if _, err := parseFreeServiceResponse([]byte(`{"weird":true}`)); err == nil {
		t.Error("non-array response should be an error")
	}
}
