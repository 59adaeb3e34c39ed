package main

import (
	"context"
	"net/http"

	"barsandbios/internal/app/albums"
	"barsandbios/internal/app/artists"
	"barsandbios/internal/app/news"
	"barsandbios/internal/app/ratings"
	"barsandbios/internal/app/reviews"
	"barsandbios/internal/app/users"
	"barsandbios/internal/auth"
	"barsandbios/internal/config"
	"barsandbios/internal/httpapi"
	"barsandbios/internal/logging"
	"barsandbios/internal/musicapi"
	"barsandbios/internal/search"
)

// backend is satisfied by both the Postgres store and the in-memory store.
type backend interface {
	users.Store
	artists.Store
	albums.Store
	reviews.Store
	news.Store
	ratings.Store
	Ping(ctx context.Context) error
}

type application struct {
	users   users.Service
	artists artists.Service
	albums  albums.Service
	reviews reviews.Service
	news    news.Service
	tracks  musicapi.TrackService
	search  search.Service
}

func newApplication(cfg *config.Config, st backend, tokens *auth.TokenManager, logger *logging.Logger) *application {
	agg := ratings.New(st, logger.Component("ratings"))

	app := &application{
		users:   users.New(st, tokens, agg, logger.Component("users")),
		artists: artists.New(st),
		albums:  albums.New(st),
		reviews: reviews.New(st, agg, logger.Component("reviews")),
		news:    news.New(st, logger.Component("news")),
		tracks:  newTrackService(cfg, logger),
	}
	app.search = search.New(app.artists, app.albums, app.news, logger.Zerolog())
	return app
}

func newTrackService(cfg *config.Config, logger *logging.Logger) musicapi.TrackService {
	if !cfg.Spotify.Enabled() {
		logger.Info("Spotify credentials not provided, track lookup disabled")
		return nil
	}
	client := musicapi.NewSpotifyClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	logger.Info("Spotify client initialized")
	return musicapi.NewCachedTracks(client, cfg.Spotify.CacheSize, cfg.Spotify.CacheTTL)
}

func newHTTPHandler(cfg *config.Config, app *application, st backend, tokens *auth.TokenManager, logger *logging.Logger) http.Handler {
	return httpapi.New(httpapi.Services{
		Users:   app.users,
		Artists: app.artists,
		Albums:  app.albums,
		Reviews: app.reviews,
		News:    app.news,
		Tracks:  app.tracks,
		Search:  app.search,
	}, httpapi.Options{
		Environment:       cfg.Env,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Verifier:          tokens,
		Health:            st,
		Logger:            logger.Zerolog(),
	}).Routes()
}
