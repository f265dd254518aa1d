package metadata

import "context"

// Track holds the metadata fields a provider can contribute for one song.
type Track struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Date   string `json:"date,omitempty"` // release date, "2003-07-31" or "2003" when that's all a provider gives
}

// IsEmpty reports whether the track carries no usable field at all.
func (t Track) IsEmpty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.Date == ""
}

// Provider is the interface that metadata lookup services must implement.
// Lookup resolves a (title, artist) search hint into a single best-match
// track; a zero Track with a nil error means the service had no match.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, title, artist string) (Track, error)
}
