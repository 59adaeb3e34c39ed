package store

import (
	"context"
	"slices"
	"strings"

	"barsandbios/internal/pagination"
)

func (m *Memory) CreateReview(_ context.Context, r Review) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.albums[r.AlbumID]; !ok {
		return Review{}, ErrAlbumNotFound
	}
	if _, ok := m.users[r.AuthorID]; !ok {
		return Review{}, ErrUserNotFound
	}
	if m.activeReviewLocked(r.AlbumID, r.AuthorID) {
		return Review{}, ErrDuplicateReview
	}

	now := m.now()
	r = cloneReview(r)
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.ID = m.id("reviews")
	r.IsActive = true
	r.LikedBy, r.DislikedBy = []int64{}, []int64{}
	r.CreatedAt, r.UpdatedAt = now, now
	m.reviews[r.ID] = &r
	return cloneReview(r), nil
}

func (m *Memory) activeReviewLocked(albumID, authorID int64) bool {
	for _, r := range m.reviews {
		if r.IsActive && r.AlbumID == albumID && r.AuthorID == authorID {
			return true
		}
	}
	return false
}

func (m *Memory) ReviewByID(_ context.Context, id int64) (Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reviews[id]
	if !ok {
		return Review{}, ErrReviewNotFound
	}
	return cloneReview(*r), nil
}

func (m *Memory) UpdateReview(_ context.Context, r Review) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reviews[r.ID]
	if !ok || !existing.IsActive {
		return Review{}, ErrReviewNotFound
	}

	existing.Rating = r.Rating
	existing.Title = strings.TrimSpace(r.Title)
	existing.Content = strings.TrimSpace(r.Content)
	existing.Pros = nonNil(slices.Clone(r.Pros))
	existing.Cons = nonNil(slices.Clone(r.Cons))
	existing.Highlights = nonNil(slices.Clone(r.Highlights))
	existing.Lowlights = nonNil(slices.Clone(r.Lowlights))
	existing.Tags = nonNil(slices.Clone(r.Tags))
	existing.Featured = r.Featured
	existing.Verified = r.Verified
	existing.ReadTime = r.ReadTime
	existing.UpdatedAt = m.now()
	return cloneReview(*existing), nil
}

func (m *Memory) SoftDeleteReview(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reviews[id]
	if !ok || !r.IsActive {
		return ErrReviewNotFound
	}
	r.IsActive = false
	r.UpdatedAt = m.now()
	return nil
}

func (m *Memory) DeleteReview(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *Memory) ListReviews(_ context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[Review], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Review, 0, len(m.reviews))
	for _, r := range m.reviews {
		items = append(items, cloneReview(*r))
	}
	return pagination.Apply(items, ReviewSpec, f, ReviewSpec.Normalize(req), reviewField, func(r Review) int64 { return r.ID }), nil
}

func (m *Memory) ActiveReviewRatings(_ context.Context, albumID int64) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ratings []int
	for _, r := range m.reviews {
		if r.AlbumID == albumID && r.IsActive {
			ratings = append(ratings, r.Rating)
		}
	}
	return ratings, nil
}

func (m *Memory) ActiveReviewExists(_ context.Context, albumID, authorID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.activeReviewLocked(albumID, authorID), nil
}

func (m *Memory) ReviewedAlbumIDs(_ context.Context, authorID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []int64
	for _, r := range m.reviews {
		if r.AuthorID == authorID && r.IsActive && !slices.Contains(ids, r.AlbumID) {
			ids = append(ids, r.AlbumID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *Memory) ToggleReaction(_ context.Context, reviewID, userID int64, kind Reaction) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reviews[reviewID]
	if !ok || !r.IsActive {
		return Review{}, ErrReviewNotFound
	}
	toggleReaction(r, userID, kind)
	return cloneReview(*r), nil
}

func reviewField(r Review, field string) any {
	switch field {
	case "createdAt":
		return r.CreatedAt
	case "updatedAt":
		return r.UpdatedAt
	case "rating":
		return r.Rating
	case "likes":
		return r.Likes()
	case "title":
		return r.Title
	case "content":
		return r.Content
	case "albumId":
		return r.AlbumID
	case "authorId":
		return r.AuthorID
	case "featured":
		return r.Featured
	case "verified":
		return r.Verified
	case "isActive":
		return r.IsActive
	case "tag":
		return r.Tags
	}
	return nil
}

func cloneReview(r Review) Review {
	r.Pros = nonNil(slices.Clone(r.Pros))
	r.Cons = nonNil(slices.Clone(r.Cons))
	r.Highlights = nonNil(slices.Clone(r.Highlights))
	r.Lowlights = nonNil(slices.Clone(r.Lowlights))
	r.Tags = nonNil(slices.Clone(r.Tags))
	r.LikedBy = nonNil(slices.Clone(r.LikedBy))
	r.DislikedBy = nonNil(slices.Clone(r.DislikedBy))
	return r
}

// News

func (m *Memory) CreateNews(_ context.Context, n News) (News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slugTakenLocked(n.Slug, 0) {
		return News{}, ErrSlugExists
	}

	now := m.now()
	n = cloneNews(n)
	n.Title = strings.TrimSpace(n.Title)
	n.ID = m.id("news")
	n.CreatedAt, n.UpdatedAt = now, now
	m.news[n.ID] = &n
	return cloneNews(n), nil
}

func (m *Memory) slugTakenLocked(slug string, except int64) bool {
	for _, n := range m.news {
		if n.ID != except && n.Slug == slug {
			return true
		}
	}
	return false
}

func (m *Memory) NewsByID(_ context.Context, id int64) (News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.news[id]
	if !ok {
		return News{}, ErrNewsNotFound
	}
	return cloneNews(*n), nil
}

func (m *Memory) NewsBySlug(_ context.Context, slug string) (News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, n := range m.news {
		if n.Slug == slug {
			return cloneNews(*n), nil
		}
	}
	return News{}, ErrNewsNotFound
}

func (m *Memory) UpdateNews(_ context.Context, n News) (News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.news[n.ID]
	if !ok {
		return News{}, ErrNewsNotFound
	}
	if m.slugTakenLocked(n.Slug, n.ID) {
		return News{}, ErrSlugExists
	}
	n = cloneNews(n)
	n.Title = strings.TrimSpace(n.Title)
	n.AuthorID = existing.AuthorID
	n.Views = existing.Views
	n.CreatedAt = existing.CreatedAt
	n.UpdatedAt = m.now()
	*existing = n
	return cloneNews(n), nil
}

func (m *Memory) IncrementNewsViews(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, ok := m.news[id]; ok {
		n.Views++
	}
	return nil
}

func (m *Memory) DeleteNews(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.news[id]; !ok {
		return ErrNewsNotFound
	}
	delete(m.news, id)
	return nil
}

func (m *Memory) ListNews(_ context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[News], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]News, 0, len(m.news))
	for _, n := range m.news {
		items = append(items, cloneNews(*n))
	}
	return pagination.Apply(items, NewsSpec, f, NewsSpec.Normalize(req), newsField, func(n News) int64 { return n.ID }), nil
}

func newsField(n News, field string) any {
	switch field {
	case "createdAt":
		return n.CreatedAt
	case "updatedAt":
		return n.UpdatedAt
	case "publishDate":
		if n.PublishDate == nil {
			return nil
		}
		return *n.PublishDate
	case "views":
		return n.Views
	case "title":
		return n.Title
	case "excerpt":
		return n.Excerpt
	case "content":
		return n.Content
	case "category":
		return string(n.Category)
	case "authorId":
		return n.AuthorID
	case "featured":
		return n.Featured
	case "published":
		return n.Published
	case "tag":
		return n.Tags
	}
	return nil
}

func cloneNews(n News) News {
	n.Tags = nonNil(slices.Clone(n.Tags))
	if n.PublishDate != nil {
		t := *n.PublishDate
		n.PublishDate = &t
	}
	return n
}
