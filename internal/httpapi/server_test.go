package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"barsandbios/internal/app/albums"
	"barsandbios/internal/app/artists"
	"barsandbios/internal/app/news"
	"barsandbios/internal/app/ratings"
	"barsandbios/internal/app/reviews"
	"barsandbios/internal/app/users"
	"barsandbios/internal/auth"
	"barsandbios/internal/musicapi"
	"barsandbios/internal/pagination"
	"barsandbios/internal/search"
	"barsandbios/internal/store"
)

var reviewBody = strings.Repeat("Dense rhymes over dusty loops, start to finish. ", 4)

type stubTracks struct {
	lastQuery string
}

func (s *stubTracks) SearchTrack(_ context.Context, query string) (musicapi.Track, error) {
	s.lastQuery = query
	if query == "nothing" {
		return musicapi.Track{}, musicapi.ErrTrackNotFound
	}
	return musicapi.Track{ExternalID: "abc", Title: "Accordion", Provider: musicapi.ProviderSpotify}, nil
}

func (s *stubTracks) GetTrack(_ context.Context, id string) (musicapi.Track, error) {
	return musicapi.Track{ExternalID: id, Title: "Accordion", Provider: musicapi.ProviderSpotify}, nil
}

type testEnv struct {
	handler http.Handler
	mem     *store.Memory
	tokens  *auth.TokenManager
	tracks  *stubTracks
}

func newTestEnv(t *testing.T, env string, tracks musicapi.TrackService) *testEnv {
	t.Helper()
	mem := store.NewMemory()
	tokens, err := auth.NewTokenManager("http-test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	logger := zerolog.Nop()
	agg := ratings.New(mem, logger)

	srv := New(Services{
		Users:   users.New(mem, tokens, agg, logger),
		Artists: artists.New(mem),
		Albums:  albums.New(mem),
		Reviews: reviews.New(mem, agg, logger),
		News:    news.New(mem, logger),
		Tracks:  tracks,
	}, Options{
		Environment:    env,
		AllowedOrigins: []string{"http://localhost:3000"},
		Verifier:       tokens,
		Health:         mem,
		Logger:         logger,
	})

	e := &testEnv{handler: srv.Routes(), mem: mem, tokens: tokens}
	if st, ok := tracks.(*stubTracks); ok {
		e.tracks = st
	}
	return e
}

type response struct {
	Success    bool             `json:"success"`
	Data       json.RawMessage  `json:"data"`
	Message    string           `json:"message"`
	Pagination *pagination.Meta `json:"pagination"`
	Error      *errorBody       `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, resp
}

func (e *testEnv) staff(t *testing.T, name string, role auth.Role) string {
	t.Helper()
	u, err := e.mem.CreateUser(context.Background(), store.User{Username: name, Email: name + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	token, err := e.tokens.Generate(auth.Identity{UserID: u.ID, Role: u.Role})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func (e *testEnv) register(t *testing.T, name string) (string, store.User) {
	t.Helper()
	code, resp := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%+v)", name, code, resp.Error)
	}
	var res users.AuthResult
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		t.Fatalf("decode auth result: %v", err)
	}
	return res.Token, res.User
}

func (e *testEnv) seedAlbum(t *testing.T, adminToken string) int64 {
	t.Helper()
	code, resp := e.do(t, http.MethodPost, "/api/v1/artists", adminToken, map[string]any{"name": "MF DOOM"})
	if code != http.StatusCreated {
		t.Fatalf("create artist: expected 201, got %d (%+v)", code, resp.Error)
	}
	var artist store.Artist
	_ = json.Unmarshal(resp.Data, &artist)

	code, resp = e.do(t, http.MethodPost, "/api/v1/albums", adminToken, map[string]any{
		"title":       "Mm..Food",
		"artistId":    artist.ID,
		"type":        "album",
		"releaseDate": "2004-11-16",
		"genres":      []string{"hip-hop"},
	})
	if code != http.StatusCreated {
		t.Fatalf("create album: expected 201, got %d (%+v)", code, resp.Error)
	}
	var album store.Album
	_ = json.Unmarshal(resp.Data, &album)
	if !album.ReleaseDate.Equal(time.Date(2004, 11, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected release date %v", album.ReleaseDate)
	}
	return album.ID
}

func (e *testEnv) album(t *testing.T, id int64) store.Album {
	t.Helper()
	code, resp := e.do(t, http.MethodGet, "/api/v1/albums/"+strconv.FormatInt(id, 10), "", nil)
	if code != http.StatusOK {
		t.Fatalf("get album: expected 200, got %d", code)
	}
	var album store.Album
	if err := json.Unmarshal(resp.Data, &album); err != nil {
		t.Fatalf("decode album: %v", err)
	}
	return album
}

func TestHealthAndUnknownRoute(t *testing.T) {
	e := newTestEnv(t, "test", nil)

	code, resp := e.do(t, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || !resp.Success {
		t.Fatalf("expected healthy response, got %d %+v", code, resp)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	if code != http.StatusNotFound || resp.Success || resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 envelope, got %d %+v", code, resp)
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	_, user := e.register(t, "ghostface")

	code, resp := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ghostface@example.com",
		"password": "password123",
	})
	if code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%+v)", code, resp.Error)
	}
	var res users.AuthResult
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(string(resp.Data), "password") {
		t.Fatalf("password hash leaked: %s", resp.Data)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/auth/me", res.Token, nil)
	if code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", code)
	}
	var me store.User
	_ = json.Unmarshal(resp.Data, &me)
	if me.ID != user.ID || me.Role != auth.RoleUser {
		t.Fatalf("unexpected me %+v", me)
	}

	code, resp = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "ghostface",
		"password": "wrong-password",
	})
	if code != http.StatusUnauthorized || resp.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d %+v", code, resp.Error)
	}

	code, _ = e.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: expected 401, got %d", code)
	}
}

func TestReviewLifecycleKeepsAlbumAggregate(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	admin := e.staff(t, "admin", auth.RoleAdmin)
	albumID := e.seedAlbum(t, admin)

	var tokens []string
	var ids []int64
	for i, rating := range []int{5, 3, 4} {
		token, _ := e.register(t, "fan"+strconv.Itoa(i))
		code, resp := e.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]any{
			"albumId": albumID,
			"rating":  rating,
			"title":   "Take " + strconv.Itoa(i),
			"content": reviewBody,
		})
		if code != http.StatusCreated {
			t.Fatalf("create review: expected 201, got %d (%+v)", code, resp.Error)
		}
		var view reviews.View
		_ = json.Unmarshal(resp.Data, &view)
		tokens = append(tokens, token)
		ids = append(ids, view.ID)
	}

	album := e.album(t, albumID)
	if album.AverageRating != 4.0 || album.TotalReviews != 3 {
		t.Fatalf("expected 4.0/3, got %v/%d", album.AverageRating, album.TotalReviews)
	}

	code, _ := e.do(t, http.MethodDelete, "/api/v1/reviews/"+strconv.FormatInt(ids[1], 10), tokens[1], nil)
	if code != http.StatusOK {
		t.Fatalf("delete review: expected 200, got %d", code)
	}
	album = e.album(t, albumID)
	if album.AverageRating != 4.5 || album.TotalReviews != 2 {
		t.Fatalf("after soft delete expected 4.5/2, got %v/%d", album.AverageRating, album.TotalReviews)
	}

	code, _ = e.do(t, http.MethodGet, "/api/v1/reviews/"+strconv.FormatInt(ids[1], 10), "", nil)
	if code != http.StatusNotFound {
		t.Fatalf("deleted review: expected 404, got %d", code)
	}
}

func TestNonAuthorUpdateIsForbidden(t *testing.T) {
	e := newTestEnv(t, "production", nil)
	admin := e.staff(t, "admin", auth.RoleAdmin)
	albumID := e.seedAlbum(t, admin)

	author, _ := e.register(t, "author")
	other, _ := e.register(t, "other")

	code, resp := e.do(t, http.MethodPost, "/api/v1/reviews", author, map[string]any{
		"albumId": albumID, "rating": 4, "title": "Mine", "content": reviewBody,
	})
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	var view reviews.View
	_ = json.Unmarshal(resp.Data, &view)
	path := "/api/v1/reviews/" + strconv.FormatInt(view.ID, 10)

	code, resp = e.do(t, http.MethodPatch, path, other, map[string]any{"rating": 1})
	if code != http.StatusForbidden || resp.Error.Code != "FORBIDDEN" {
		t.Fatalf("expected 403 FORBIDDEN, got %d %+v", code, resp.Error)
	}
	if resp.Error.Stack != "" {
		t.Fatalf("stack must be hidden in production, got %q", resp.Error.Stack)
	}

	if a := e.album(t, albumID); a.AverageRating != 4.0 || a.TotalReviews != 1 {
		t.Fatalf("aggregate changed after forbidden update: %v/%d", a.AverageRating, a.TotalReviews)
	}

	code, _ = e.do(t, http.MethodPost, "/api/v1/reviews", "", map[string]any{"albumId": albumID})
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", code)
	}
}

func TestDuplicateReviewConflict(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	admin := e.staff(t, "admin", auth.RoleAdmin)
	albumID := e.seedAlbum(t, admin)
	token, _ := e.register(t, "repeat")

	body := map[string]any{"albumId": albumID, "rating": 2, "title": "Once", "content": reviewBody}
	if code, _ := e.do(t, http.MethodPost, "/api/v1/reviews", token, body); code != http.StatusCreated {
		t.Fatalf("first review: expected 201, got %d", code)
	}
	body["rating"] = 5
	code, resp := e.do(t, http.MethodPost, "/api/v1/reviews", token, body)
	if code != http.StatusConflict || resp.Error.Code != "DUPLICATE_REVIEW" {
		t.Fatalf("expected 409 DUPLICATE_REVIEW, got %d %+v", code, resp.Error)
	}
	if a := e.album(t, albumID); a.AverageRating != 2.0 || a.TotalReviews != 1 {
		t.Fatalf("aggregate changed after conflict: %v/%d", a.AverageRating, a.TotalReviews)
	}
}

func TestListReviewsPaginationAndFilters(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	admin := e.staff(t, "admin", auth.RoleAdmin)
	albumID := e.seedAlbum(t, admin)

	for i, rating := range []int{1, 5, 3, 2, 4} {
		token, _ := e.register(t, "lister"+strconv.Itoa(i))
		if code, resp := e.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]any{
			"albumId": albumID, "rating": rating, "title": "t", "content": reviewBody,
		}); code != http.StatusCreated {
			t.Fatalf("create: %d %+v", code, resp.Error)
		}
	}

	code, resp := e.do(t, http.MethodGet, "/api/v1/albums/"+strconv.FormatInt(albumID, 10)+"/reviews?sortBy=rating&sortOrder=asc&limit=2", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", code)
	}
	var views []reviews.View
	if err := json.Unmarshal(resp.Data, &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 || views[0].Rating != 1 || views[1].Rating != 2 {
		t.Fatalf("unexpected first page %+v", views)
	}
	want := pagination.Meta{Total: 5, Page: 1, Limit: 2, TotalPages: 3, HasNextPage: true}
	if resp.Pagination == nil || *resp.Pagination != want {
		t.Fatalf("unexpected meta %+v", resp.Pagination)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/reviews?page=9&limit=2", "", nil)
	if code != http.StatusOK || string(resp.Data) != "[]" || resp.Pagination.Total != 5 {
		t.Fatalf("beyond last page: got %d data=%s meta=%+v", code, resp.Data, resp.Pagination)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/reviews?minRating=abc", "", nil)
	if code != http.StatusBadRequest || resp.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("malformed filter: expected 400, got %d %+v", code, resp.Error)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/reviews?minRating=4&limit=abc", "", nil)
	if code != http.StatusOK || resp.Pagination.Total != 2 || resp.Pagination.Limit != pagination.DefaultLimit {
		t.Fatalf("range filter: got %d %+v", code, resp.Pagination)
	}
}

func TestToggleLikeEndpoint(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	admin := e.staff(t, "admin", auth.RoleAdmin)
	albumID := e.seedAlbum(t, admin)
	author, _ := e.register(t, "writer")
	fan, _ := e.register(t, "reader")

	_, resp := e.do(t, http.MethodPost, "/api/v1/reviews", author, map[string]any{
		"albumId": albumID, "rating": 5, "title": "Classic", "content": reviewBody,
	})
	var view reviews.View
	_ = json.Unmarshal(resp.Data, &view)
	path := "/api/v1/reviews/" + strconv.FormatInt(view.ID, 10)

	code, resp := e.do(t, http.MethodPost, path+"/like", fan, nil)
	if code != http.StatusOK {
		t.Fatalf("like: expected 200, got %d", code)
	}
	_ = json.Unmarshal(resp.Data, &view)
	if view.LikesCount != 1 || view.IsLikedByUser == nil || !*view.IsLikedByUser {
		t.Fatalf("unexpected view after like %+v", view)
	}

	code, resp = e.do(t, http.MethodPost, path+"/dislike", fan, nil)
	if code != http.StatusOK {
		t.Fatalf("dislike: expected 200, got %d", code)
	}
	_ = json.Unmarshal(resp.Data, &view)
	if view.LikesCount != 0 || view.DislikesCount != 1 {
		t.Fatalf("unexpected counts after dislike %+v", view)
	}

	code, resp = e.do(t, http.MethodGet, path, "", nil)
	if code != http.StatusOK || strings.Contains(string(resp.Data), "isLikedByUser") {
		t.Fatalf("anonymous get should omit per-user flags: %d %s", code, resp.Data)
	}
}

func TestCatalogWritesRequireRole(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	token, _ := e.register(t, "civilian")

	code, resp := e.do(t, http.MethodPost, "/api/v1/artists", token, map[string]any{"name": "Nope"})
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %+v", code, resp.Error)
	}

	critic := e.staff(t, "critic", auth.RoleReviewer)
	code, resp = e.do(t, http.MethodPost, "/api/v1/albums", critic, map[string]any{
		"title": "Bad date", "artistId": 1, "type": "album", "releaseDate": "16/11/2004",
	})
	if code != http.StatusBadRequest || resp.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 for malformed date, got %d %+v", code, resp.Error)
	}
}

func TestStaleTokenFollowsAccountChanges(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	admin := e.staff(t, "admin", auth.RoleAdmin)
	critic := e.staff(t, "critic", auth.RoleReviewer)

	code, resp := e.do(t, http.MethodPost, "/api/v1/artists", critic, map[string]any{"name": "Madvillain"})
	if code != http.StatusCreated {
		t.Fatalf("reviewer create artist: expected 201, got %d %+v", code, resp.Error)
	}

	criticID, err := e.tokens.Validate(critic)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	path := "/api/v1/users/" + strconv.FormatInt(criticID.UserID, 10)

	code, resp = e.do(t, http.MethodPatch, path+"/role", admin, map[string]string{"role": "user"})
	if code != http.StatusOK {
		t.Fatalf("demote: expected 200, got %d %+v", code, resp.Error)
	}
	code, resp = e.do(t, http.MethodPost, "/api/v1/artists", critic, map[string]any{"name": "Viktor Vaughn"})
	if code != http.StatusForbidden {
		t.Fatalf("demoted token: expected 403, got %d %+v", code, resp.Error)
	}

	code, resp = e.do(t, http.MethodDelete, path, admin, nil)
	if code != http.StatusOK {
		t.Fatalf("delete user: expected 200, got %d %+v", code, resp.Error)
	}
	code, resp = e.do(t, http.MethodPost, "/api/v1/artists", critic, map[string]any{"name": "King Geedorah"})
	if code != http.StatusUnauthorized {
		t.Fatalf("deleted account token: expected 401, got %d %+v", code, resp.Error)
	}
	code, _ = e.do(t, http.MethodGet, "/api/v1/auth/me", critic, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("deleted account me: expected 401, got %d", code)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	token, user := e.register(t, "raekwon")

	code, resp := e.do(t, http.MethodPatch, "/api/v1/users/"+strconv.FormatInt(user.ID, 10), token, map[string]string{"password": "hijacked1"})
	if code != http.StatusOK {
		t.Fatalf("profile update: expected 200, got %d %+v", code, resp.Error)
	}
	code, _ = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "raekwon", "password": "hijacked1"})
	if code != http.StatusUnauthorized {
		t.Fatalf("profile update must not change the password, login got %d", code)
	}

	code, _ = e.do(t, http.MethodPut, "/api/v1/auth/password", "", map[string]string{"currentPassword": "password123", "newPassword": "cuban-linx"})
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous change: expected 401, got %d", code)
	}

	code, resp = e.do(t, http.MethodPut, "/api/v1/auth/password", token, map[string]string{"currentPassword": "nope", "newPassword": "cuban-linx"})
	if code != http.StatusBadRequest || resp.Error.Code != "INVALID_PASSWORD" {
		t.Fatalf("wrong current password: expected 400 INVALID_PASSWORD, got %d %+v", code, resp.Error)
	}

	code, resp = e.do(t, http.MethodPut, "/api/v1/auth/password", token, map[string]string{"currentPassword": "password123", "newPassword": "cuban-linx"})
	if code != http.StatusOK || !resp.Success {
		t.Fatalf("change password: expected 200, got %d %+v", code, resp.Error)
	}
	code, _ = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "raekwon", "password": "cuban-linx"})
	if code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", code)
	}
}

func TestNewsBySlug(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	editor := e.staff(t, "editor", auth.RoleReviewer)

	code, resp := e.do(t, http.MethodPost, "/api/v1/news", editor, map[string]any{
		"title":     "New Tape Announced",
		"content":   "The duo returns with a surprise release.",
		"category":  "releases",
		"published": true,
	})
	if code != http.StatusCreated {
		t.Fatalf("create news: expected 201, got %d (%+v)", code, resp.Error)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/news/slug/new-tape-announced", "", nil)
	if code != http.StatusOK {
		t.Fatalf("get by slug: expected 200, got %d (%+v)", code, resp.Error)
	}
	var article store.News
	_ = json.Unmarshal(resp.Data, &article)
	if article.Title != "New Tape Announced" {
		t.Fatalf("unexpected article %+v", article)
	}
}

func TestCatalogSearch(t *testing.T) {
	e := newTestEnv(t, "test", nil)
	admin := e.staff(t, "admin", auth.RoleAdmin)
	e.seedAlbum(t, admin)

	code, resp := e.do(t, http.MethodGet, "/api/v1/search?q=doom", "", nil)
	if code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d (%+v)", code, resp.Error)
	}
	var res search.Response
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(res.Sections) != 1 || res.Sections[0].Name != "artists" || res.Sections[0].Items[0].Title != "MF DOOM" {
		t.Fatalf("unexpected sections %+v", res.Sections)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/search?q=food", "", nil)
	_ = json.Unmarshal(resp.Data, &res)
	if code != http.StatusOK || len(res.Sections) != 1 || res.Sections[0].Items[0].Subtitle != "MF DOOM • 2004" {
		t.Fatalf("album search: got %d %+v", code, res.Sections)
	}

	code, _ = e.do(t, http.MethodGet, "/api/v1/search", "", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("missing q: expected 400, got %d", code)
	}
}

func TestTrackLookup(t *testing.T) {
	stub := &stubTracks{}
	e := newTestEnv(t, "test", stub)

	code, resp := e.do(t, http.MethodGet, "/api/v1/albums/search/track?query=madvillain", "", nil)
	if code != http.StatusOK || stub.lastQuery != "madvillain" {
		t.Fatalf("search: got %d, query %q", code, stub.lastQuery)
	}
	var track musicapi.Track
	_ = json.Unmarshal(resp.Data, &track)
	if track.Title != "Accordion" {
		t.Fatalf("unexpected track %+v", track)
	}

	code, _ = e.do(t, http.MethodGet, "/api/v1/albums/search/track", "", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("missing query: expected 400, got %d", code)
	}

	code, resp = e.do(t, http.MethodGet, "/api/v1/albums/search/track?query=nothing", "", nil)
	if code != http.StatusNotFound || resp.Error.Code != "TRACK_NOT_FOUND" {
		t.Fatalf("expected 404 TRACK_NOT_FOUND, got %d %+v", code, resp.Error)
	}

	code, _ = e.do(t, http.MethodGet, "/api/v1/albums/tracks/xyz", "", nil)
	if code != http.StatusOK {
		t.Fatalf("get track: expected 200, got %d", code)
	}
}

func TestUnconfiguredTrackLookupShowsStackOutsideProduction(t *testing.T) {
	e := newTestEnv(t, "development", nil)

	code, resp := e.do(t, http.MethodGet, "/api/v1/albums/tracks/xyz", "", nil)
	if code != http.StatusInternalServerError || resp.Error.Code != "SPOTIFY_NOT_CONFIGURED" {
		t.Fatalf("expected 500 SPOTIFY_NOT_CONFIGURED, got %d %+v", code, resp.Error)
	}
	if resp.Error.Stack == "" {
		t.Fatal("expected stack outside production")
	}
}
