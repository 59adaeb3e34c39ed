package reviews

import (
	"context"
	"time"

	"barsandbios/internal/auth"
	"barsandbios/internal/store"
)

// AlbumRef is the album summary embedded in a review.
type AlbumRef struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ArtistID int64  `json:"artistId"`
}

// AuthorRef is the public author summary embedded in a review.
type AuthorRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// View is the client-facing shape of a review. The per-user flags are set
// only when the request carries an identity.
type View struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	Rating           int       `json:"rating"`
	Album            AlbumRef  `json:"album"`
	Author           AuthorRef `json:"author"`
	LikesCount       int       `json:"likesCount"`
	DislikesCount    int       `json:"dislikesCount"`
	IsLikedByUser    *bool     `json:"isLikedByUser,omitempty"`
	IsDislikedByUser *bool     `json:"isDislikedByUser,omitempty"`
	Pros             []string  `json:"pros"`
	Cons             []string  `json:"cons"`
	Highlights       []string  `json:"highlights"`
	Lowlights        []string  `json:"lowlights"`
	Tags             []string  `json:"tags"`
	Featured         bool      `json:"featured"`
	Verified         bool      `json:"verified"`
	ReadTime         int       `json:"readTime"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (s *service) view(ctx context.Context, r store.Review, caller auth.Identity) (View, error) {
	views, err := s.views(ctx, []store.Review{r}, caller)
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// views maps reviews to their client shape with one album lookup and one
// user lookup for the whole batch.
func (s *service) views(ctx context.Context, reviews []store.Review, caller auth.Identity) ([]View, error) {
	out := make([]View, 0, len(reviews))
	if len(reviews) == 0 {
		return out, nil
	}

	albumIDs := make([]int64, 0, len(reviews))
	authorIDs := make([]int64, 0, len(reviews))
	for _, r := range reviews {
		albumIDs = append(albumIDs, r.AlbumID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	albums, err := s.store.AlbumsByIDs(ctx, albumIDs)
	if err != nil {
		return nil, err
	}
	authors, err := s.store.UsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, r := range reviews {
		v := View{
			ID:            r.ID,
			Title:         r.Title,
			Content:       r.Content,
			Rating:        r.Rating,
			Album:         AlbumRef{ID: r.AlbumID},
			Author:        AuthorRef{ID: r.AuthorID},
			LikesCount:    r.Likes(),
			DislikesCount: r.Dislikes(),
			Pros:          r.Pros,
			Cons:          r.Cons,
			Highlights:    r.Highlights,
			Lowlights:     r.Lowlights,
			Tags:          r.Tags,
			Featured:      r.Featured,
			Verified:      r.Verified,
			ReadTime:      r.ReadTime,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		}
		if a, ok := albums[r.AlbumID]; ok {
			v.Album = AlbumRef{ID: a.ID, Title: a.Title, ArtistID: a.ArtistID}
		}
		if u, ok := authors[r.AuthorID]; ok {
			v.Author = AuthorRef{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
		}
		if caller.UserID != 0 {
			liked, disliked := r.LikedByUser(caller.UserID), r.DislikedByUser(caller.UserID)
			v.IsLikedByUser, v.IsDislikedByUser = &liked, &disliked
		}
		out = append(out, v)
	}
	return out, nil
}
