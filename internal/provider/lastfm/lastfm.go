package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"metatagger/internal/metadata"
	"metatagger/internal/provider"
)

// Client queries the Last.fm track.getInfo API. It implements
// metadata.Provider as the credentialed fallback lookup.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	policy     provider.Policy
}

// New creates a new Last.fm client with the given API key.
func New(apiKey string, timeout time.Duration, policy provider.Policy) *Client {
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     "https://ws.audioscrobbler.com/2.0/",
		apiKey:     apiKey,
		policy:     policy,
	}
}

func (c *Client) Name() string { return "lastfm" }

// Lookup fetches track info for an exact (artist, track) pair. Unlike
// MusicBrainz there is no free-text search: both parameters are
// required, so a hint without an artist returns no result at all.
func (c *Client) Lookup(ctx context.Context, title, artist string) (metadata.Track, error) {
	if title == "" || artist == "" {
		return metadata.Track{}, nil
	}
	if c.apiKey == "" {
		return metadata.Track{}, fmt.Errorf("lastfm api key is not configured")
	}

	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("api_key", c.apiKey)
	params.Set("artist", artist)
	params.Set("track", title)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return metadata.Track{}, fmt.Errorf("failed to create lastfm request: %w", err)
	}

	resp, err := provider.Do(c.httpClient, req, c.policy)
	if err != nil {
		return metadata.Track{}, fmt.Errorf("lastfm lookup failed: %w", err)
	}
	defer resp.Body.Close()

	var infoResp trackInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&infoResp); err != nil {
		return metadata.Track{}, fmt.Errorf("failed to decode lastfm response: %w", err)
	}
	if infoResp.Track == nil {
		// Last.fm reports unknown tracks as an error payload with 200 OK.
		return metadata.Track{}, nil
	}

	return metadata.Track{
		Title:  infoResp.Track.Name,
		Artist: infoResp.Track.Artist.Name,
		Album:  infoResp.Track.Album.Title,
	}, nil
}

// Last.fm API response types

type trackInfoResponse struct {
	Track *trackInfo `json:"track"`
}

type trackInfo struct {
	Name   string `json:"name"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Title string `json:"title"`
	} `json:"album"`
}
