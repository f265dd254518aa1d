package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"metatagger/internal/provider"
)

func newTestClient(url string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiURL:     url,
		userAgent:  "metatagger-test/1.0",
		policy:     provider.Policy{Retries: 1, BaseDelay: time.Millisecond},
	}
}

func TestLookup_ParsesTopRecording(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recording" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent header")
		}
		if got := r.URL.Query().Get("fmt"); got != "json" {
			t.Errorf("fmt = %q, want json", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"recordings": [{
				"id": "rec-1",
				"title": "Bohemian Rhapsody",
				"artist-credit": [{"name": "Queen", "artist": {"id": "a1", "name": "Queen"}}],
				"releases": [
					{"id": "rel-1", "title": "A Night at the Opera", "date": "1975-10-31"},
					{"id": "rel-2", "title": "Greatest Hits", "date": "1981-10-26"}
				]
			}, {
				"id": "rec-2",
				"title": "Bohemian Rhapsody (live)",
				"artist-credit": [{"name": "Queen", "artist": {"id": "a1", "name": "Queen"}}]
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	track, err := c.Lookup(context.Background(), "Bohemian Rhapsody", "Queen")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	if track.Title != "Bohemian Rhapsody" {
		t.Errorf("Title = %q, want %q", track.Title, "Bohemian Rhapsody")
	}
	if track.Artist != "Queen" {
		t.Errorf("Artist = %q, want %q", track.Artist, "Queen")
	}
	// First release wins, relevance ordering is the provider's job.
	if track.Album != "A Night at the Opera" {
		t.Errorf("Album = %q, want %q", track.Album, "A Night at the Opera")
	}
	if track.Date != "1975-10-31" {
		t.Errorf("Date = %q, want %q", track.Date, "1975-10-31")
	}
}

func TestLookup_NoRecordings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recordings": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	track, err := c.Lookup(context.Background(), "does not exist", "")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if !track.IsEmpty() {
		t.Errorf("expected empty track, got %+v", track)
	}
}

func TestLookup_EmptyHintSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty hint")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	track, err := c.Lookup(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if !track.IsEmpty() {
		t.Errorf("expected empty track, got %+v", track)
	}
}

func TestLookup_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.Lookup(context.Background(), "title", "artist"); err == nil {
		t.Fatal("expected a decode error for a malformed response")
	}
}

func TestLookup_ServerErrorSurfacesAfterRetries(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.policy = provider.Policy{Retries: 2, BaseDelay: time.Millisecond}
	if _, err := c.Lookup(context.Background(), "title", "artist"); err == nil {
		t.Fatal("expected an error after exhausted retries")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		title, artist string
		want          string
	}{
		{"Song", "Artist", `recording:"Song" AND artist:"Artist"`},
		{"Song", "", `recording:"Song"`},
		{"", "Artist", `artist:"Artist"`},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := buildQuery(tt.title, tt.artist); got != tt.want {
			t.Errorf("buildQuery(%q, %q) = %q, want %q", tt.title, tt.artist, got, tt.want)
		}
	}
}
