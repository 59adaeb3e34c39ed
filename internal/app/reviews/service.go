package reviews

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"barsandbios/internal/apperr"
	"barsandbios/internal/app/ratings"
	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
	"barsandbios/internal/store"
	"barsandbios/internal/validation"
)

// Store captures the persistence needs for review workflows.
type Store interface {
	CreateReview(ctx context.Context, r store.Review) (store.Review, error)
	ReviewByID(ctx context.Context, id int64) (store.Review, error)
	UpdateReview(ctx context.Context, r store.Review) (store.Review, error)
	SoftDeleteReview(ctx context.Context, id int64) error
	DeleteReview(ctx context.Context, id int64) error
	ListReviews(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Review], error)
	ActiveReviewExists(ctx context.Context, albumID, authorID int64) (bool, error)
	ToggleReaction(ctx context.Context, reviewID, userID int64, kind store.Reaction) (store.Review, error)

	AlbumByID(ctx context.Context, id int64) (store.Album, error)
	AlbumsByIDs(ctx context.Context, ids []int64) (map[int64]store.Album, error)
	UsersByIDs(ctx context.Context, ids []int64) (map[int64]store.User, error)
}

// Input is the payload for a new review. Updates are checked against the
// same rules once the patch is merged.
type Input struct {
	AlbumID    int64    `json:"albumId" validate:"required,gt=0"`
	Rating     int      `json:"rating" validate:"min=1,max=5"`
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" validate:"min=100,max=5000"`
	Pros       []string `json:"pros" validate:"max=10,dive,max=200"`
	Cons       []string `json:"cons" validate:"max=10,dive,max=200"`
	Highlights []string `json:"highlights" validate:"max=10,dive,max=200"`
	Lowlights  []string `json:"lowlights" validate:"max=10,dive,max=200"`
	Tags       []string `json:"tags" validate:"max=20,dive,max=50"`
}

func (in *Input) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
}

func inputOf(r store.Review) Input {
	return Input{
		AlbumID:    r.AlbumID,
		Rating:     r.Rating,
		Title:      r.Title,
		Content:    r.Content,
		Pros:       r.Pros,
		Cons:       r.Cons,
		Highlights: r.Highlights,
		Lowlights:  r.Lowlights,
		Tags:       r.Tags,
	}
}

// Patch holds the fields of an update; nil fields are left unchanged.
// Featured and Verified are editorial flags reserved for moderators.
type Patch struct {
	Rating     *int      `json:"rating"`
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Pros       *[]string `json:"pros"`
	Cons       *[]string `json:"cons"`
	Highlights *[]string `json:"highlights"`
	Lowlights  *[]string `json:"lowlights"`
	Tags       *[]string `json:"tags"`
	Featured   *bool     `json:"featured"`
	Verified   *bool     `json:"verified"`
}

// Service coordinates review operations and keeps album aggregates current.
type Service interface {
	Create(ctx context.Context, caller auth.Identity, in Input) (View, error)
	Get(ctx context.Context, id int64, caller auth.Identity) (View, error)
	Update(ctx context.Context, caller auth.Identity, id int64, p Patch) (View, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	Purge(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request, caller auth.Identity) (pagination.Page[View], error)
	ToggleLike(ctx context.Context, caller auth.Identity, id int64) (View, error)
	ToggleDislike(ctx context.Context, caller auth.Identity, id int64) (View, error)
}

type service struct {
	store   Store
	ratings ratings.Aggregator
	logger  zerolog.Logger
}

// New constructs a Service backed by the provided Store and Aggregator.
func New(store Store, agg ratings.Aggregator, logger zerolog.Logger) Service {
	return &service{
		store:   store,
		ratings: agg,
		logger:  logger.With().Str("component", "reviews").Logger(),
	}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, in Input) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	if caller.UserID == 0 {
		return View{}, apperr.ErrUnauthorized
	}
	in.normalize()
	if err := validation.Struct(&in); err != nil {
		return View{}, err
	}

	review := store.Review{
		AlbumID:    in.AlbumID,
		AuthorID:   caller.UserID,
		Rating:     in.Rating,
		Title:      in.Title,
		Content:    in.Content,
		Pros:       in.Pros,
		Cons:       in.Cons,
		Highlights: in.Highlights,
		Lowlights:  in.Lowlights,
		Tags:       in.Tags,
	}

	if _, err := s.store.AlbumByID(ctx, in.AlbumID); err != nil {
		return View{}, err
	}
	exists, err := s.store.ActiveReviewExists(ctx, in.AlbumID, caller.UserID)
	if err != nil {
		return View{}, err
	}
	if exists {
		return View{}, store.ErrDuplicateReview
	}

	review.ReadTime = store.ReadTime(review.Content)
	created, err := s.store.CreateReview(ctx, review)
	if err != nil {
		return View{}, err
	}

	if err := s.recompute(ctx, created.AlbumID); err != nil {
		return View{}, err
	}
	return s.view(ctx, created, caller)
}

func (s *service) Get(ctx context.Context, id int64, caller auth.Identity) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	r, err := s.activeReview(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, r, caller)
}

func (s *service) Update(ctx context.Context, caller auth.Identity, id int64, p Patch) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	if caller.UserID == 0 {
		return View{}, apperr.ErrUnauthorized
	}

	r, err := s.activeReview(ctx, id)
	if err != nil {
		return View{}, err
	}
	if !canModify(caller, r) {
		return View{}, apperr.ErrForbidden
	}
	if (p.Featured != nil || p.Verified != nil) && !caller.Can(auth.ModerateReviews) {
		return View{}, apperr.ErrForbidden
	}

	ratingSet := p.Rating != nil
	p.apply(&r)
	merged := inputOf(r)
	merged.normalize()
	if err := validation.Struct(&merged); err != nil {
		return View{}, err
	}
	r.Title, r.Content = merged.Title, merged.Content
	r.ReadTime = store.ReadTime(r.Content)

	updated, err := s.store.UpdateReview(ctx, r)
	if err != nil {
		return View{}, err
	}

	if ratingSet {
		if err := s.recompute(ctx, updated.AlbumID); err != nil {
			return View{}, err
		}
	}
	return s.view(ctx, updated, caller)
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if caller.UserID == 0 {
		return apperr.ErrUnauthorized
	}

	r, err := s.activeReview(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(caller, r) {
		return apperr.ErrForbidden
	}

	if err := s.store.SoftDeleteReview(ctx, id); err != nil {
		return err
	}
	return s.recompute(ctx, r.AlbumID)
}

func (s *service) Purge(ctx context.Context, caller auth.Identity, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if caller.UserID == 0 {
		return apperr.ErrUnauthorized
	}
	if !caller.Can(auth.HardDelete) {
		return apperr.ErrForbidden
	}

	r, err := s.store.ReviewByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		return err
	}
	return s.recompute(ctx, r.AlbumID)
}

func (s *service) List(ctx context.Context, f pagination.Filter, req pagination.Request, caller auth.Identity) (pagination.Page[View], error) {
	if err := ctx.Err(); err != nil {
		return pagination.Page[View]{}, err
	}

	page, err := s.store.ListReviews(ctx, f.Where(store.ReviewActiveField, true), req)
	if err != nil {
		return pagination.Page[View]{}, err
	}
	views, err := s.views(ctx, page.Items, caller)
	if err != nil {
		return pagination.Page[View]{}, err
	}
	return pagination.Page[View]{Items: views, Meta: page.Meta}, nil
}

func (s *service) ToggleLike(ctx context.Context, caller auth.Identity, id int64) (View, error) {
	return s.toggle(ctx, caller, id, store.ReactionLike)
}

func (s *service) ToggleDislike(ctx context.Context, caller auth.Identity, id int64) (View, error) {
	return s.toggle(ctx, caller, id, store.ReactionDislike)
}

func (s *service) toggle(ctx context.Context, caller auth.Identity, id int64, kind store.Reaction) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	if caller.UserID == 0 {
		return View{}, apperr.ErrUnauthorized
	}

	r, err := s.store.ToggleReaction(ctx, id, caller.UserID, kind)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, r, caller)
}

func (s *service) activeReview(ctx context.Context, id int64) (store.Review, error) {
	r, err := s.store.ReviewByID(ctx, id)
	if err != nil {
		return store.Review{}, err
	}
	if !r.IsActive {
		return store.Review{}, store.ErrReviewNotFound
	}
	return r, nil
}

// recompute refreshes the album aggregate after a review write. A vanished
// album is logged and ignored since the review write itself succeeded.
func (s *service) recompute(ctx context.Context, albumID int64) error {
	_, err := s.ratings.Recompute(ctx, albumID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ratings.ErrAlbumMissing):
		s.logger.Warn().Err(err).Int64("album_id", albumID).Msg("skipping rating recompute for missing album")
		return nil
	default:
		s.logger.Error().Err(err).Int64("album_id", albumID).Msg("rating recompute failed")
		return fmt.Errorf("recompute album %d: %w", albumID, err)
	}
}

func canModify(caller auth.Identity, r store.Review) bool {
	return caller.Owns(r.AuthorID) || caller.Can(auth.ModerateReviews)
}

func (p Patch) apply(r *store.Review) {
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	for _, field := range []struct {
		src *[]string
		dst *[]string
	}{
		{p.Pros, &r.Pros},
		{p.Cons, &r.Cons},
		{p.Highlights, &r.Highlights},
		{p.Lowlights, &r.Lowlights},
		{p.Tags, &r.Tags},
	} {
		if field.src != nil {
			*field.dst = slices.Clone(*field.src)
		}
	}
	if p.Featured != nil {
		r.Featured = *p.Featured
	}
	if p.Verified != nil {
		r.Verified = *p.Verified
	}
}
