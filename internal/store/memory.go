package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
)

// Memory keeps every collection in process memory. It mirrors the Postgres
// store's constraints (unique keys, one active review per author and album,
// cascading deletes) and is used for local demos and service tests.
type Memory struct {
	mu sync.RWMutex

	users   map[int64]*User
	artists map[int64]*Artist
	albums  map[int64]*Album
	reviews map[int64]*Review
	news    map[int64]*News

	nextID map[string]int64
	now    func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[int64]*User),
		artists: make(map[int64]*Artist),
		albums:  make(map[int64]*Album),
		reviews: make(map[int64]*Review),
		news:    make(map[int64]*News),
		nextID:  make(map[string]int64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) id(kind string) int64 {
	m.nextID[kind]++
	return m.nextID[kind]
}

// Users

func (m *Memory) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if m.userTaken(u, 0) {
		return User{}, ErrUserExists
	}
	if u.Role == "" {
		u.Role = auth.RoleUser
	}

	now := m.now()
	u.ID = m.id("users")
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = &u
	return u, nil
}

func (m *Memory) userTaken(u User, except int64) bool {
	for _, existing := range m.users {
		if existing.ID == except {
			continue
		}
		if strings.EqualFold(existing.Username, u.Username) || existing.Email == u.Email {
			return true
		}
	}
	return false
}

func (m *Memory) UserByID(_ context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *u, nil
}

func (m *Memory) UserByLogin(_ context.Context, login string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	login = strings.TrimSpace(login)
	var found *User
	for _, u := range m.users {
		if strings.EqualFold(u.Username, login) || u.Email == strings.ToLower(login) {
			if found == nil || u.ID < found.ID {
				found = u
			}
		}
	}
	if found == nil {
		return User{}, ErrUserNotFound
	}
	return *found, nil
}

func (m *Memory) UsersByIDs(_ context.Context, ids []int64) (map[int64]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (m *Memory) UpdateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[u.ID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if m.userTaken(u, u.ID) {
		return User{}, ErrUserExists
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = m.now()
	*existing = u
	return u, nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	for rid, r := range m.reviews {
		if r.AuthorID == id {
			delete(m.reviews, rid)
			continue
		}
		r.LikedBy = removeID(r.LikedBy, id)
		r.DislikedBy = removeID(r.DislikedBy, id)
	}
	for _, n := range m.news {
		if n.AuthorID == id {
			n.AuthorID = 0
		}
	}
	return nil
}

func (m *Memory) ListUsers(_ context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[User], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]User, 0, len(m.users))
	for _, u := range m.users {
		items = append(items, *u)
	}
	return pagination.Apply(items, UserSpec, f, UserSpec.Normalize(req), userField, func(u User) int64 { return u.ID }), nil
}

func userField(u User, field string) any {
	switch field {
	case "createdAt":
		return u.CreatedAt
	case "updatedAt":
		return u.UpdatedAt
	case "username":
		return u.Username
	case "email":
		return u.Email
	case "firstName":
		return u.FirstName
	case "lastName":
		return u.LastName
	case "role":
		return string(u.Role)
	case "isVerified":
		return u.IsVerified
	}
	return nil
}

// Artists

func (m *Memory) CreateArtist(_ context.Context, a Artist) (Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	a = cloneArtist(a)
	a.Name = strings.TrimSpace(a.Name)
	a.ID = m.id("artists")
	a.CreatedAt, a.UpdatedAt = now, now
	m.artists[a.ID] = &a
	return cloneArtist(a), nil
}

func (m *Memory) ArtistByID(_ context.Context, id int64) (Artist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.artists[id]
	if !ok {
		return Artist{}, ErrArtistNotFound
	}
	return cloneArtist(*a), nil
}

func (m *Memory) UpdateArtist(_ context.Context, a Artist) (Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.artists[a.ID]
	if !ok {
		return Artist{}, ErrArtistNotFound
	}
	a = cloneArtist(a)
	a.Name = strings.TrimSpace(a.Name)
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = m.now()
	*existing = a
	return cloneArtist(a), nil
}

func (m *Memory) DeleteArtist(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.artists[id]; !ok {
		return ErrArtistNotFound
	}
	delete(m.artists, id)
	for aid, album := range m.albums {
		if album.ArtistID == id {
			m.deleteAlbumLocked(aid)
		}
	}
	return nil
}

func (m *Memory) ListArtists(_ context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[Artist], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Artist, 0, len(m.artists))
	for _, a := range m.artists {
		items = append(items, cloneArtist(*a))
	}
	return pagination.Apply(items, ArtistSpec, f, ArtistSpec.Normalize(req), artistField, func(a Artist) int64 { return a.ID }), nil
}

func artistField(a Artist, field string) any {
	switch field {
	case "createdAt":
		return a.CreatedAt
	case "updatedAt":
		return a.UpdatedAt
	case "name":
		return a.Name
	case "stageName":
		return a.StageName
	case "realName":
		return a.RealName
	case "genre":
		return a.Genres
	case "hometown":
		return a.Hometown
	case "featured":
		return a.Featured
	case "verified":
		return a.Verified
	case "followers":
		return a.Followers
	case "monthlyListeners":
		return a.MonthlyListeners
	}
	return nil
}

func cloneArtist(a Artist) Artist {
	a.Genres = nonNil(slices.Clone(a.Genres))
	a.Labels = nonNil(slices.Clone(a.Labels))
	return a
}

// Albums

func (m *Memory) CreateAlbum(_ context.Context, a Album) (Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.artists[a.ArtistID]; !ok {
		return Album{}, ErrArtistNotFound
	}

	now := m.now()
	a = cloneAlbum(a)
	a.Title = strings.TrimSpace(a.Title)
	a.ID = m.id("albums")
	a.AverageRating, a.TotalReviews = 0, 0
	a.CreatedAt, a.UpdatedAt = now, now
	m.albums[a.ID] = &a
	return cloneAlbum(a), nil
}

func (m *Memory) AlbumByID(_ context.Context, id int64) (Album, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.albums[id]
	if !ok {
		return Album{}, ErrAlbumNotFound
	}
	return cloneAlbum(*a), nil
}

func (m *Memory) AlbumsByIDs(_ context.Context, ids []int64) (map[int64]Album, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]Album, len(ids))
	for _, id := range ids {
		if a, ok := m.albums[id]; ok {
			out[id] = cloneAlbum(*a)
		}
	}
	return out, nil
}

func (m *Memory) UpdateAlbum(_ context.Context, a Album) (Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.albums[a.ID]
	if !ok {
		return Album{}, ErrAlbumNotFound
	}
	if _, ok := m.artists[a.ArtistID]; !ok {
		return Album{}, ErrArtistNotFound
	}
	a = cloneAlbum(a)
	a.Title = strings.TrimSpace(a.Title)
	a.AverageRating, a.TotalReviews = existing.AverageRating, existing.TotalReviews
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = m.now()
	*existing = a
	return cloneAlbum(a), nil
}

func (m *Memory) SetAlbumRating(_ context.Context, albumID int64, average float64, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.albums[albumID]
	if !ok {
		return ErrAlbumNotFound
	}
	a.AverageRating, a.TotalReviews = average, total
	return nil
}

func (m *Memory) DeleteAlbum(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.albums[id]; !ok {
		return ErrAlbumNotFound
	}
	m.deleteAlbumLocked(id)
	return nil
}

func (m *Memory) deleteAlbumLocked(id int64) {
	delete(m.albums, id)
	for rid, r := range m.reviews {
		if r.AlbumID == id {
			delete(m.reviews, rid)
		}
	}
}

func (m *Memory) ListAlbums(_ context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[Album], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Album, 0, len(m.albums))
	for _, a := range m.albums {
		items = append(items, cloneAlbum(*a))
	}
	return pagination.Apply(items, AlbumSpec, f, AlbumSpec.Normalize(req), albumField, func(a Album) int64 { return a.ID }), nil
}

func albumField(a Album, field string) any {
	switch field {
	case "createdAt":
		return a.CreatedAt
	case "updatedAt":
		return a.UpdatedAt
	case "title":
		return a.Title
	case "description":
		return a.Description
	case "releaseDate":
		return a.ReleaseDate
	case "averageRating", "rating":
		return a.AverageRating
	case "totalReviews":
		return a.TotalReviews
	case "artistId":
		return a.ArtistID
	case "type":
		return string(a.Type)
	case "genre":
		return a.Genres
	case "featured":
		return a.Featured
	}
	return nil
}

func cloneAlbum(a Album) Album {
	a.Genres = nonNil(slices.Clone(a.Genres))
	a.Producers = nonNil(slices.Clone(a.Producers))
	tracks := make([]Track, len(a.Tracklist))
	for i, t := range a.Tracklist {
		t.Features = slices.Clone(t.Features)
		tracks[i] = t
	}
	a.Tracklist = tracks
	return a
}
