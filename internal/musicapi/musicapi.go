// Package musicapi looks up tracks on external music providers.
package musicapi

import (
	"context"

	"barsandbios/internal/apperr"
)

// Provider names an external catalogue.
type Provider string

const ProviderSpotify Provider = "spotify"

var (
	// ErrTrackNotFound is returned when a search has no match or an id is unknown.
	ErrTrackNotFound = apperr.NotFound("TRACK_NOT_FOUND", "no tracks found")
	// ErrProviderAuth is returned when the provider rejects our credentials.
	ErrProviderAuth = apperr.New(apperr.KindInternal, "SPOTIFY_AUTH_ERROR", "failed to authenticate with spotify")
	// ErrProviderAPI is returned for any other provider failure.
	ErrProviderAPI = apperr.New(apperr.KindInternal, "SPOTIFY_API_ERROR", "failed to search tracks on spotify")
	// ErrNotConfigured is returned when no provider credentials were supplied.
	ErrNotConfigured = apperr.New(apperr.KindInternal, "SPOTIFY_NOT_CONFIGURED", "track lookup is not configured")
)

// ArtistRef is the artist credit on a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the release a track appears on.
type AlbumRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	CoverURL    string `json:"coverUrl,omitempty"`
}

// Track is a provider track normalized for API responses.
type Track struct {
	ExternalID  string      `json:"id"`
	Title       string      `json:"name"`
	Artists     []ArtistRef `json:"artists"`
	Album       *AlbumRef   `json:"album,omitempty"`
	Provider    Provider    `json:"provider"`
	DurationMS  int         `json:"durationMs"`
	TrackNumber int         `json:"trackNumber,omitempty"`
	DiscNumber  int         `json:"discNumber,omitempty"`
	Explicit    bool        `json:"explicit"`
	Popularity  int         `json:"popularity"`
	ISRC        string      `json:"isrc,omitempty"`
	PreviewURL  string      `json:"previewUrl,omitempty"`
	ExternalURL string      `json:"externalUrl,omitempty"`
}

// TrackService is the lookup surface used by the HTTP layer.
type TrackService interface {
	// SearchTrack returns the best match for query.
	SearchTrack(ctx context.Context, query string) (Track, error)
	GetTrack(ctx context.Context, id string) (Track, error)
}

// Disabled is the TrackService used when no credentials are configured.
type Disabled struct{}

func (Disabled) SearchTrack(context.Context, string) (Track, error) { return Track{}, ErrNotConfigured }
func (Disabled) GetTrack(context.Context, string) (Track, error)    { return Track{}, ErrNotConfigured }
