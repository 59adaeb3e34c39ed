// Package search runs one free-text query across the catalogue and the
// newsroom and groups the matches into sections.
package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"barsandbios/internal/apperr"
	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
	"barsandbios/internal/store"
)

const (
	DefaultLimit = 5
	MaxLimit     = 20
)

// ArtistLister is the subset of the artist service used here.
type ArtistLister interface {
	Get(ctx context.Context, id int64) (store.Artist, error)
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Artist], error)
}

// AlbumLister is the subset of the album service used here.
type AlbumLister interface {
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Album], error)
}

// NewsLister is the subset of the news service used here.
type NewsLister interface {
	List(ctx context.Context, f pagination.Filter, req pagination.Request, caller auth.Identity) (pagination.Page[store.News], error)
}

// Response models the payload returned by a search.
type Response struct {
	Query    string    `json:"query"`
	Sections []Section `json:"sections"`
}

// Section groups related search results.
type Section struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	Items []Item `json:"items"`
}

// Item represents a single search result entry.
type Item struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Href      string `json:"href"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Service searches artists, albums and news in one call.
type Service interface {
	Search(ctx context.Context, query string, limit int, caller auth.Identity) (Response, error)
}

type service struct {
	artists ArtistLister
	albums  AlbumLister
	news    NewsLister
	logger  zerolog.Logger
}

// New builds a Service over the catalogue services.
func New(artists ArtistLister, albums AlbumLister, news NewsLister, logger zerolog.Logger) Service {
	return &service{
		artists: artists,
		albums:  albums,
		news:    news,
		logger:  logger.With().Str("component", "search").Logger(),
	}
}

// Search performs a fan-out query across artists, albums and news. Empty
// sections are omitted; drafts stay hidden from callers who cannot publish.
func (s *service) Search(ctx context.Context, query string, limit int, caller auth.Identity) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{}, apperr.Invalid("q is required")
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	f := pagination.Filter{Search: query}
	resp := Response{Query: query, Sections: []Section{}}

	artists, err := s.artists.List(ctx, f, request(limit, "followers"))
	if err != nil {
		return Response{}, err
	}
	names := make(map[int64]string, len(artists.Items))
	if len(artists.Items) > 0 {
		items := make([]Item, 0, len(artists.Items))
		for _, a := range artists.Items {
			names[a.ID] = a.Name
			items = append(items, Item{
				ID:        a.ID,
				Title:     a.Name,
				Subtitle:  pluralize(a.Followers, "follower"),
				Href:      "/api/v1/artists/" + strconv.FormatInt(a.ID, 10),
				Thumbnail: a.Image,
			})
		}
		resp.Sections = append(resp.Sections, Section{Name: "artists", Total: artists.Meta.Total, Items: items})
	}

	albums, err := s.albums.List(ctx, f, request(limit, "averageRating"))
	if err != nil {
		return Response{}, err
	}
	if len(albums.Items) > 0 {
		items := make([]Item, 0, len(albums.Items))
		for _, a := range albums.Items {
			subtitle := s.artistName(ctx, names, a.ArtistID)
			if !a.ReleaseDate.IsZero() {
				subtitle = joinNonEmpty(subtitle, strconv.Itoa(a.ReleaseDate.Year()))
			}
			items = append(items, Item{
				ID:        a.ID,
				Title:     a.Title,
				Subtitle:  subtitle,
				Href:      "/api/v1/albums/" + strconv.FormatInt(a.ID, 10),
				Thumbnail: a.CoverArt,
			})
		}
		resp.Sections = append(resp.Sections, Section{Name: "albums", Total: albums.Meta.Total, Items: items})
	}

	articles, err := s.news.List(ctx, f, request(limit, "publishDate"), caller)
	if err != nil {
		return Response{}, err
	}
	if len(articles.Items) > 0 {
		items := make([]Item, 0, len(articles.Items))
		for _, n := range articles.Items {
			items = append(items, Item{
				ID:        n.ID,
				Title:     n.Title,
				Subtitle:  string(n.Category),
				Href:      "/api/v1/news/slug/" + n.Slug,
				Thumbnail: n.FeaturedImage,
			})
		}
		resp.Sections = append(resp.Sections, Section{Name: "news", Total: articles.Meta.Total, Items: items})
	}

	return resp, nil
}

// artistName resolves an album's artist, caching lookups in names.
func (s *service) artistName(ctx context.Context, names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	a, err := s.artists.Get(ctx, id)
	if err != nil {
		s.logger.Debug().Err(err).Int64("artist_id", id).Msg("artist lookup failed")
		names[id] = ""
		return ""
	}
	names[id] = a.Name
	return a.Name
}

func request(limit int, sortBy string) pagination.Request {
	return pagination.Request{Page: 1, Limit: limit, SortBy: sortBy, SortOrder: pagination.Desc}
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " • " + b
}

func pluralize(count int64, singular string) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 " + singular
	default:
		return strconv.FormatInt(count, 10) + " " + singular + "s"
	}
}
