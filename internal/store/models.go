package store

import (
	"math"
	"strings"
	"time"

	"barsandbios/internal/auth"
)

// User is a site account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Artist is a catalogue artist.
type Artist struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	StageName        string    `json:"stageName"`
	RealName         string    `json:"realName"`
	Bio              string    `json:"bio"`
	Image            string    `json:"image"`
	Genres           []string  `json:"genres"`
	Hometown         string    `json:"hometown"`
	ActiveStart      *int      `json:"activeStart,omitempty"`
	ActiveEnd        *int      `json:"activeEnd,omitempty"`
	Labels           []string  `json:"labels"`
	Featured         bool      `json:"featured"`
	Verified         bool      `json:"verified"`
	Followers        int64     `json:"followers"`
	MonthlyListeners int64     `json:"monthlyListeners"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// AlbumType is the release format.
type AlbumType string

const (
	AlbumTypeAlbum   AlbumType = "album"
	AlbumTypeMixtape AlbumType = "mixtape"
	AlbumTypeEP      AlbumType = "EP"
	AlbumTypeSingle  AlbumType = "single"
)

// Valid reports whether t is a known release format.
func (t AlbumType) Valid() bool {
	switch t {
	case AlbumTypeAlbum, AlbumTypeMixtape, AlbumTypeEP, AlbumTypeSingle:
		return true
	}
	return false
}

// Track is one entry of an album tracklist.
type Track struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Duration string   `json:"duration,omitempty"`
	Features []string `json:"features,omitempty"`
}

// Album is a catalogue release. AverageRating and TotalReviews are a cached
// projection of the album's active reviews and are written only by
// SetAlbumRating.
type Album struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	ArtistID      int64     `json:"artistId"`
	Type          AlbumType `json:"type"`
	ReleaseDate   time.Time `json:"releaseDate"`
	Genres        []string  `json:"genres"`
	CoverArt      string    `json:"coverArt"`
	Description   string    `json:"description"`
	Tracklist     []Track   `json:"tracklist"`
	TotalDuration string    `json:"totalDuration"`
	Label         string    `json:"label"`
	Producers     []string  `json:"producers"`
	Featured      bool      `json:"featured"`
	Verified      bool      `json:"verified"`
	AverageRating float64   `json:"averageRating"`
	TotalReviews  int       `json:"totalReviews"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Review is one user's critique of an album. LikedBy and DislikedBy are sets
// of user ids; the counters exposed to clients are their sizes.
type Review struct {
	ID         int64     `json:"id"`
	AlbumID    int64     `json:"albumId"`
	AuthorID   int64     `json:"authorId"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Pros       []string  `json:"pros"`
	Cons       []string  `json:"cons"`
	Highlights []string  `json:"highlights"`
	Lowlights  []string  `json:"lowlights"`
	Tags       []string  `json:"tags"`
	Featured   bool      `json:"featured"`
	Verified   bool      `json:"verified"`
	LikedBy    []int64   `json:"-"`
	DislikedBy []int64   `json:"-"`
	ReadTime   int       `json:"readTime"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Likes is the number of distinct users who liked the review.
func (r Review) Likes() int { return len(r.LikedBy) }

// Dislikes is the number of distinct users who disliked the review.
func (r Review) Dislikes() int { return len(r.DislikedBy) }

// LikedByUser reports whether userID is in the like set.
func (r Review) LikedByUser(userID int64) bool { return containsID(r.LikedBy, userID) }

// DislikedByUser reports whether userID is in the dislike set.
func (r Review) DislikedByUser(userID int64) bool { return containsID(r.DislikedBy, userID) }

// Reaction selects which set a toggle applies to.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// NewsCategory is the closed list of news sections.
type NewsCategory string

const (
	NewsBreaking     NewsCategory = "breaking"
	NewsReleases     NewsCategory = "releases"
	NewsTours        NewsCategory = "tours"
	NewsInterviews   NewsCategory = "interviews"
	NewsIndustry     NewsCategory = "industry"
	NewsCollabs      NewsCategory = "collaborations"
	NewsControversy  NewsCategory = "controversy"
	NewsAchievements NewsCategory = "achievements"
)

// Valid reports whether c is a known category.
func (c NewsCategory) Valid() bool {
	switch c {
	case NewsBreaking, NewsReleases, NewsTours, NewsInterviews, NewsIndustry, NewsCollabs, NewsControversy, NewsAchievements:
		return true
	}
	return false
}

// News is an editorial article.
type News struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Excerpt       string       `json:"excerpt"`
	Content       string       `json:"content"`
	AuthorID      int64        `json:"authorId"`
	Category      NewsCategory `json:"category"`
	Tags          []string     `json:"tags"`
	FeaturedImage string       `json:"featuredImage"`
	Featured      bool         `json:"featured"`
	Published     bool         `json:"published"`
	PublishDate   *time.Time   `json:"publishDate,omitempty"`
	ReadTime      int          `json:"readTime"`
	Views         int64        `json:"views"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

const wordsPerMinute = 200

// ReadTime estimates minutes of reading at 200 words per minute.
func ReadTime(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// toggleReaction flips userID in the chosen set and clears it from the
// opposite one.
func toggleReaction(r *Review, userID int64, kind Reaction) {
	target, other := &r.LikedBy, &r.DislikedBy
	if kind == ReactionDislike {
		target, other = &r.DislikedBy, &r.LikedBy
	}

	if containsID(*target, userID) {
		*target = removeID(*target, userID)
		return
	}
	*target = append(removeID(*target, userID), userID)
	*other = removeID(*other, userID)
}
