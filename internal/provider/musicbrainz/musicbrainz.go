package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"metatagger/internal/metadata"
	"metatagger/internal/provider"
)

// Client queries the MusicBrainz recording search API. It implements
// metadata.Provider as the primary, unauthenticated lookup.
type Client struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
	policy     provider.Policy
}

// New creates a new MusicBrainz client. MusicBrainz rejects requests
// without a meaningful User-Agent, so one is always sent.
func New(userAgent string, timeout time.Duration, policy provider.Policy) *Client {
	if userAgent == "" {
		userAgent = "metatagger/1.0"
	}
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     "https://musicbrainz.org/ws/2",
		userAgent:  userAgent,
		policy:     policy,
	}
}

func (c *Client) Name() string { return "musicbrainz" }

// Lookup searches recordings for the given hint and returns the top
// match. The first recording is taken unconditionally; ranking is left
// to MusicBrainz's own relevance ordering.
func (c *Client) Lookup(ctx context.Context, title, artist string) (metadata.Track, error) {
	q := buildQuery(title, artist)
	if q == "" {
		return metadata.Track{}, nil
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("fmt", "json")
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/recording?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return metadata.Track{}, fmt.Errorf("failed to create musicbrainz request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := provider.Do(c.httpClient, req, c.policy)
	if err != nil {
		return metadata.Track{}, fmt.Errorf("musicbrainz search failed: %w", err)
	}
	defer resp.Body.Close()

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return metadata.Track{}, fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}
	if len(searchResp.Recordings) == 0 {
		return metadata.Track{}, nil
	}
	return parseRecording(searchResp.Recordings[0]), nil
}

// buildQuery constructs a Lucene query with an optional artist qualifier.
func buildQuery(title, artist string) string {
	var parts []string
	if title != "" {
		parts = append(parts, fmt.Sprintf("recording:%q", title))
	}
	if artist != "" {
		parts = append(parts, fmt.Sprintf("artist:%q", artist))
	}
	return strings.Join(parts, " AND ")
}

func parseRecording(rec recording) metadata.Track {
	track := metadata.Track{
		Title:  rec.Title,
		Artist: creditName(rec.ArtistCredit),
	}
	if len(rec.Releases) > 0 {
		track.Album = rec.Releases[0].Title
		track.Date = rec.Releases[0].Date
	}
	return track
}

// creditName returns the credited artist name of the first credit,
// falling back to the nested artist record.
func creditName(credits []artistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	if credits[0].Name != "" {
		return credits[0].Name
	}
	return credits[0].Artist.Name
}

// MusicBrainz API response types

type searchResponse struct {
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
}

type artistCredit struct {
	Name   string     `json:"name"`
	Artist artistInfo `json:"artist"`
}

type artistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type release struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}
