package musicapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com/api/token"
	defaultAPIURL      = "https://api.spotify.com/v1/"
)

// SpotifyClient implements TrackService against the Spotify Web API using
// the client-credentials flow.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	accountsURL  string
	apiURL       string

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

// SpotifyOption customizes a SpotifyClient.
type SpotifyOption func(*SpotifyClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) SpotifyOption {
	return func(s *SpotifyClient) { s.httpClient = c }
}

// WithEndpoints points the client at alternative token and API base URLs.
func WithEndpoints(accountsURL, apiURL string) SpotifyOption {
	return func(s *SpotifyClient) {
		s.accountsURL = accountsURL
		s.apiURL = strings.TrimRight(apiURL, "/") + "/"
	}
}

// NewSpotifyClient creates a new Spotify API client
func NewSpotifyClient(clientID, clientSecret string, opts ...SpotifyOption) *SpotifyClient {
	c := &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		accountsURL:  defaultAccountsURL,
		apiURL:       defaultAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type spotifySearchResponse struct {
	Tracks *struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks,omitempty"`
}

type spotifyTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DurationMS  int    `json:"duration_ms"`
	TrackNumber int    `json:"track_number"`
	DiscNumber  int    `json:"disc_number"`
	Explicit    bool   `json:"explicit"`
	Popularity  int    `json:"popularity"`
	PreviewURL  string `json:"preview_url"`
	Artists     []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Album *struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album,omitempty"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// statusError carries a non-2xx response from the API.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("spotify api error: %d - %s", e.status, e.body)
}

// authenticate obtains an access token from Spotify
func (c *SpotifyClient) authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	authString := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL, strings.NewReader(data.Encode()))
	if err != nil {
		return ErrProviderAuth.Wrap(fmt.Errorf("create auth request: %w", err))
	}
	req.Header.Set("Authorization", "Basic "+authString)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrProviderAuth.Wrap(fmt.Errorf("send auth request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ErrProviderAuth.Wrap(fmt.Errorf("spotify auth failed: %s - %s", resp.Status, string(body)))
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return ErrProviderAuth.Wrap(fmt.Errorf("decode auth response: %w", err))
	}

	c.accessToken = tokenResp.AccessToken
	// Renew a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)
	return nil
}

// doRequest performs an authenticated GET against the API.
func (c *SpotifyClient) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	target := c.apiURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode == http.StatusUnauthorized {
			c.mu.Lock()
			c.accessToken = ""
			c.mu.Unlock()
		}
		return &statusError{status: resp.StatusCode, body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SearchTrack returns the first track matching query.
func (c *SpotifyClient) SearchTrack(ctx context.Context, query string) (Track, error) {
	params := url.Values{
		"q":     []string{query},
		"type":  []string{"track"},
		"limit": []string{"1"},
	}

	var result spotifySearchResponse
	if err := c.doRequest(ctx, "search", params, &result); err != nil {
		return Track{}, classify(err)
	}
	if result.Tracks == nil || len(result.Tracks.Items) == 0 {
		return Track{}, ErrTrackNotFound
	}
	return convertTrack(result.Tracks.Items[0]), nil
}

// GetTrack fetches a track by its Spotify id.
func (c *SpotifyClient) GetTrack(ctx context.Context, id string) (Track, error) {
	var st spotifyTrack
	if err := c.doRequest(ctx, "tracks/"+url.PathEscape(id), nil, &st); err != nil {
		return Track{}, classify(err)
	}
	return convertTrack(st), nil
}

func classify(err error) error {
	if errors.Is(err, ErrProviderAuth) {
		return err
	}
	var se *statusError
	if errors.As(err, &se) && (se.status == http.StatusNotFound || se.status == http.StatusBadRequest) {
		return ErrTrackNotFound.Wrap(err)
	}
	return ErrProviderAPI.Wrap(err)
}

func convertTrack(st spotifyTrack) Track {
	t := Track{
		ExternalID:  st.ID,
		Title:       st.Name,
		Artists:     make([]ArtistRef, 0, len(st.Artists)),
		Provider:    ProviderSpotify,
		DurationMS:  st.DurationMS,
		TrackNumber: st.TrackNumber,
		DiscNumber:  st.DiscNumber,
		Explicit:    st.Explicit,
		Popularity:  st.Popularity,
		ISRC:        st.ExternalIDs.ISRC,
		PreviewURL:  st.PreviewURL,
		ExternalURL: st.ExternalURLs.Spotify,
	}
	for _, a := range st.Artists {
		t.Artists = append(t.Artists, ArtistRef{ID: a.ID, Name: a.Name})
	}
	if st.Album != nil {
		t.Album = &AlbumRef{ID: st.Album.ID, Name: st.Album.Name, ReleaseDate: st.Album.ReleaseDate}
		if len(st.Album.Images) > 0 {
			t.Album.CoverURL = st.Album.Images[0].URL
		}
	}
	return t
}
