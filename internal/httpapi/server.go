package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"barsandbios/internal/app/albums"
	"barsandbios/internal/app/artists"
	"barsandbios/internal/app/news"
	"barsandbios/internal/app/reviews"
	"barsandbios/internal/app/users"
	"barsandbios/internal/apperr"
	"barsandbios/internal/auth"
	"barsandbios/internal/http/middleware"
	"barsandbios/internal/musicapi"
	"barsandbios/internal/pagination"
	"barsandbios/internal/search"
	"barsandbios/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, in users.RegisterInput) (users.AuthResult, error)
	Login(ctx context.Context, in users.LoginInput) (users.AuthResult, error)
	Get(ctx context.Context, id int64) (store.User, error)
	UpdateProfile(ctx context.Context, caller auth.Identity, id int64, p users.ProfilePatch) (store.User, error)
	ChangePassword(ctx context.Context, caller auth.Identity, in users.PasswordChange) error
	UpdateRole(ctx context.Context, caller auth.Identity, id int64, role string) (store.User, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.User], error)
	Resolve(ctx context.Context, claimed auth.Identity) (auth.Identity, error)
}

// ArtistService describes artist catalogue workflows.
type ArtistService interface {
	Create(ctx context.Context, caller auth.Identity, in artists.Input) (store.Artist, error)
	Get(ctx context.Context, id int64) (store.Artist, error)
	Update(ctx context.Context, caller auth.Identity, id int64, in artists.Input) (store.Artist, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Artist], error)
}

// AlbumService exposes album catalogue workflows.
type AlbumService interface {
	Create(ctx context.Context, caller auth.Identity, in albums.Input) (store.Album, error)
	Get(ctx context.Context, id int64) (store.Album, error)
	Update(ctx context.Context, caller auth.Identity, id int64, in albums.Input) (store.Album, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Album], error)
}

// ReviewService coordinates review operations.
type ReviewService interface {
	Create(ctx context.Context, caller auth.Identity, in reviews.Input) (reviews.View, error)
	Get(ctx context.Context, id int64, caller auth.Identity) (reviews.View, error)
	Update(ctx context.Context, caller auth.Identity, id int64, p reviews.Patch) (reviews.View, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	Purge(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request, caller auth.Identity) (pagination.Page[reviews.View], error)
	ToggleLike(ctx context.Context, caller auth.Identity, id int64) (reviews.View, error)
	ToggleDislike(ctx context.Context, caller auth.Identity, id int64) (reviews.View, error)
}

// NewsService coordinates editorial operations.
type NewsService interface {
	Create(ctx context.Context, caller auth.Identity, in news.Input) (store.News, error)
	Get(ctx context.Context, id int64, caller auth.Identity) (store.News, error)
	GetBySlug(ctx context.Context, slug string, caller auth.Identity) (store.News, error)
	Update(ctx context.Context, caller auth.Identity, id int64, in news.Input) (store.News, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request, caller auth.Identity) (pagination.Page[store.News], error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the handlers' dependencies.
type Services struct {
	Users   UserService
	Artists ArtistService
	Albums  AlbumService
	Reviews ReviewService
	News    NewsService
	Tracks  musicapi.TrackService
	Search  search.Service
}

// Options configures the transport concerns around the handlers.
type Options struct {
	Environment       string
	AllowedOrigins    []string
	RequestsPerMinute int
	Verifier          auth.Verifier
	Health            Pinger
	Logger            zerolog.Logger
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users   UserService
	artists ArtistService
	albums  AlbumService
	reviews ReviewService
	news    NewsService
	tracks  musicapi.TrackService
	search  search.Service

	env            string
	production     bool
	allowedOrigins []string
	rateLimit      int
	verifier       auth.Verifier
	health         Pinger
	logger         zerolog.Logger
}

// New configures a Server.
func New(svc Services, opts Options) *Server {
	tracks := svc.Tracks
	if tracks == nil {
		tracks = musicapi.Disabled{}
	}
	finder := svc.Search
	if finder == nil {
		finder = search.New(svc.Artists, svc.Albums, svc.News, opts.Logger)
	}
	return &Server{
		users:          svc.Users,
		artists:        svc.Artists,
		albums:         svc.Albums,
		reviews:        svc.Reviews,
		news:           svc.News,
		tracks:         tracks,
		search:         finder,
		env:            opts.Environment,
		production:     opts.Environment == "production",
		allowedOrigins: opts.AllowedOrigins,
		rateLimit:      opts.RequestsPerMinute,
		verifier:       opts.Verifier,
		health:         opts.Health,
		logger:         opts.Logger.With().Str("component", "http").Logger(),
	}
}

// Routes exposes the HTTP handlers wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, apperr.NotFound(apperr.CodeNotFound, "Route "+r.URL.Path+" not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: errorBody{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "method " + r.Method + " not allowed",
		}})
	})

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RateLimit(s.rateLimit))

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/auth/password", s.handleChangePassword).Methods(http.MethodPut)

	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)

	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}/role", s.handleUpdateUserRole).Methods(http.MethodPatch)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/artists", s.handleListArtists).Methods(http.MethodGet)
	api.HandleFunc("/artists", s.handleCreateArtist).Methods(http.MethodPost)
	api.HandleFunc("/artists/{id:[0-9]+}", s.handleGetArtist).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id:[0-9]+}", s.handleUpdateArtist).Methods(http.MethodPut)
	api.HandleFunc("/artists/{id:[0-9]+}", s.handleDeleteArtist).Methods(http.MethodDelete)

	api.HandleFunc("/albums", s.handleListAlbums).Methods(http.MethodGet)
	api.HandleFunc("/albums", s.handleCreateAlbum).Methods(http.MethodPost)
	api.HandleFunc("/albums/search/track", s.handleSearchTrack).Methods(http.MethodGet)
	api.HandleFunc("/albums/tracks/{trackId}", s.handleGetTrack).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id:[0-9]+}", s.handleGetAlbum).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id:[0-9]+}", s.handleUpdateAlbum).Methods(http.MethodPut)
	api.HandleFunc("/albums/{id:[0-9]+}", s.handleDeleteAlbum).Methods(http.MethodDelete)
	api.HandleFunc("/albums/{id:[0-9]+}/reviews", s.handleAlbumReviews).Methods(http.MethodGet)

	api.HandleFunc("/reviews", s.handleListReviews).Methods(http.MethodGet)
	api.HandleFunc("/reviews", s.handleCreateReview).Methods(http.MethodPost)
	api.HandleFunc("/reviews/{id:[0-9]+}", s.handleGetReview).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{id:[0-9]+}", s.handleUpdateReview).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/reviews/{id:[0-9]+}", s.handleDeleteReview).Methods(http.MethodDelete)
	api.HandleFunc("/reviews/{id:[0-9]+}/purge", s.handlePurgeReview).Methods(http.MethodDelete)
	api.HandleFunc("/reviews/{id:[0-9]+}/like", s.handleLikeReview).Methods(http.MethodPost)
	api.HandleFunc("/reviews/{id:[0-9]+}/dislike", s.handleDislikeReview).Methods(http.MethodPost)

	api.HandleFunc("/news", s.handleListNews).Methods(http.MethodGet)
	api.HandleFunc("/news", s.handleCreateNews).Methods(http.MethodPost)
	api.HandleFunc("/news/slug/{slug}", s.handleGetNewsBySlug).Methods(http.MethodGet)
	api.HandleFunc("/news/{id:[0-9]+}", s.handleGetNews).Methods(http.MethodGet)
	api.HandleFunc("/news/{id:[0-9]+}", s.handleUpdateNews).Methods(http.MethodPut)
	api.HandleFunc("/news/{id:[0-9]+}", s.handleDeleteNews).Methods(http.MethodDelete)

	var handler http.Handler = router
	if s.verifier != nil {
		handler = auth.Middleware(s.verifier, s.users)(handler)
	}
	handler = middleware.CORS(s.allowedOrigins)(handler)
	handler = middleware.Metrics()(handler)
	handler = middleware.RequestLogging(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"success":     true,
		"message":     "Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.env,
	}
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("health check failed")
			status = http.StatusServiceUnavailable
			body["success"] = false
			body["message"] = "Database unavailable"
		}
	}
	writeJSON(w, status, body)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := s.search.Search(r.Context(), r.URL.Query().Get("q"), limit, identity(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

// identity returns the caller attached by the auth middleware, or the
// anonymous zero value.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

// requireIdentity is for routes that are closed to anonymous callers but
// whose service does not check the caller itself.
func requireIdentity(r *http.Request) (auth.Identity, error) {
	id := identity(r)
	if id.UserID == 0 {
		return auth.Identity{}, apperr.ErrUnauthorized
	}
	return id, nil
}
