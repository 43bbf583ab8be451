package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{
		"https://example.se/nyheter/artikel",
		"https://example.se/nyheter/artikel/",
		"  https://example.se/nyheter/artikel/  ",
		"",
		"   ",
	}
	for _, c := range cases {
		once := Normalize(c)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", c, once, twice)
		}
	}
}

func TestNormalizeVariantsCollapse(t *testing.T) {
	a := Normalize("https://example.se/artikel/")
	b := Normalize(" https://example.se/artikel ")
	if a != b {
		t.Errorf("trailing-slash and whitespace variants should normalize identically: %q vs %q", a, b)
	}
	if a != "https://example.se/artikel" {
		t.Errorf("unexpected normalized form: %q", a)
	}
}

func TestMarkThenIsPosted(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "posted.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}

	url := "https://example.se/artikel/"
	if s.IsPosted(url) {
		t.Fatal("fresh store should not contain the url")
	}
	if err := s.MarkPosted(url); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}
	if !s.IsPosted(url) {
		t.Error("url not found right after MarkPosted")
	}
	if !s.IsPosted("https://example.se/artikel") {
		t.Error("normalized variant should also be found")
	}
}

func TestPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posted.json")

	s := New(path)
	if err := s.MarkPosted("https://example.se/a/"); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reloaded.IsPosted("https://example.se/a") {
		t.Error("entry lost after reload from persisted state")
	}
}

func TestFileIsSortedJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posted.json")
	s := New(path)

	for _, u := range []string{"https://example.se/c", "https://example.se/a", "https://example.se/b"} {
		if err := s.MarkPosted(u); err != nil {
			t.Fatalf("MarkPosted(%s): %v", u, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("file is not a JSON string array: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	if !sort.StringsAreSorted(entries) {
		t.Errorf("entries not sorted: %v", entries)
	}
}

func TestMergePreservesPriorWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posted.json")

	// Seed the file the way a previous run would have left it, including a
	// legacy opaque GUID entry.
	seed := []string{"legacy-guid-0001", "https://example.se/old"}
	data, _ := json.Marshal(seed)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	s := New(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.MarkPosted("https://example.se/new"); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, want := range []string{"legacy-guid-0001", "https://example.se/old", "https://example.se/new"} {
		if !reloaded.IsPosted(want) {
			t.Errorf("entry %q missing after merge-write", want)
		}
	}
	if got := reloaded.Len(); got != 3 {
		t.Errorf("want 3 entries, got %d", got)
	}
}
