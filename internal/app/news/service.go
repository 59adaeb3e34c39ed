package news

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"barsandbios/internal/apperr"
	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
	"barsandbios/internal/store"
	"barsandbios/internal/validation"
)

// PublishedField restricts listings to published articles.
var PublishedField = pagination.Field{Param: "published", Column: "published", Kind: pagination.Exact, Type: pagination.Bool}

// Store captures the persistence needs for news workflows.
type Store interface {
	CreateNews(ctx context.Context, n store.News) (store.News, error)
	NewsByID(ctx context.Context, id int64) (store.News, error)
	NewsBySlug(ctx context.Context, slug string) (store.News, error)
	UpdateNews(ctx context.Context, n store.News) (store.News, error)
	IncrementNewsViews(ctx context.Context, id int64) error
	DeleteNews(ctx context.Context, id int64) error
	ListNews(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.News], error)
}

// Input is the writable shape of an article. An empty Slug is derived from
// the title.
type Input struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Slug          string     `json:"slug" validate:"omitempty,max=220,slug"`
	Excerpt       string     `json:"excerpt" validate:"max=300"`
	Content       string     `json:"content" validate:"required"`
	Category      string     `json:"category" validate:"required,oneof=breaking releases tours interviews industry collaborations controversy achievements"`
	Tags          []string   `json:"tags" validate:"max=20,dive,max=50"`
	FeaturedImage string     `json:"featuredImage" validate:"omitempty,url"`
	Featured      bool       `json:"featured"`
	Published     bool       `json:"published"`
	PublishDate   *time.Time `json:"publishDate"`
}

// Service coordinates editorial news operations.
type Service interface {
	Create(ctx context.Context, caller auth.Identity, in Input) (store.News, error)
	Get(ctx context.Context, id int64, caller auth.Identity) (store.News, error)
	GetBySlug(ctx context.Context, slug string, caller auth.Identity) (store.News, error)
	Update(ctx context.Context, caller auth.Identity, id int64, in Input) (store.News, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request, caller auth.Identity) (pagination.Page[store.News], error)
}

type service struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a news Service backed by the given Store.
func New(store Store, logger zerolog.Logger) Service {
	return &service{
		store:  store,
		logger: logger.With().Str("component", "news").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, in Input) (store.News, error) {
	if err := ctx.Err(); err != nil {
		return store.News{}, err
	}
	n, err := s.prepare(caller, in)
	if err != nil {
		return store.News{}, err
	}
	n.AuthorID = caller.UserID
	return s.store.CreateNews(ctx, n)
}

// Get returns an article. Drafts are visible only to editors.
func (s *service) Get(ctx context.Context, id int64, caller auth.Identity) (store.News, error) {
	if err := ctx.Err(); err != nil {
		return store.News{}, err
	}
	n, err := s.store.NewsByID(ctx, id)
	if err != nil {
		return store.News{}, err
	}
	return visible(n, caller)
}

// GetBySlug returns an article and counts the read.
func (s *service) GetBySlug(ctx context.Context, slug string, caller auth.Identity) (store.News, error) {
	if err := ctx.Err(); err != nil {
		return store.News{}, err
	}
	n, err := s.store.NewsBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return store.News{}, err
	}
	if n, err = visible(n, caller); err != nil {
		return store.News{}, err
	}
	if n.Published {
		if err := s.store.IncrementNewsViews(ctx, n.ID); err != nil {
			s.logger.Warn().Err(err).Int64("news_id", n.ID).Msg("failed to count article view")
		} else {
			n.Views++
		}
	}
	return n, nil
}

func (s *service) Update(ctx context.Context, caller auth.Identity, id int64, in Input) (store.News, error) {
	if err := ctx.Err(); err != nil {
		return store.News{}, err
	}
	n, err := s.prepare(caller, in)
	if err != nil {
		return store.News{}, err
	}
	n.ID = id
	return s.store.UpdateNews(ctx, n)
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := authorize(caller); err != nil {
		return err
	}
	return s.store.DeleteNews(ctx, id)
}

// List pages through articles. Callers who cannot publish only see
// published ones.
func (s *service) List(ctx context.Context, f pagination.Filter, req pagination.Request, caller auth.Identity) (pagination.Page[store.News], error) {
	if err := ctx.Err(); err != nil {
		return pagination.Page[store.News]{}, err
	}
	if !caller.Can(auth.PublishNews) {
		f = f.Where(PublishedField, true)
	}
	return s.store.ListNews(ctx, f, req)
}

func (s *service) prepare(caller auth.Identity, in Input) (store.News, error) {
	if err := authorize(caller); err != nil {
		return store.News{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(&in); err != nil {
		return store.News{}, err
	}

	n := store.News{
		Title:         in.Title,
		Slug:          in.Slug,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		Category:      store.NewsCategory(in.Category),
		Tags:          in.Tags,
		FeaturedImage: in.FeaturedImage,
		Featured:      in.Featured,
		Published:     in.Published,
		PublishDate:   in.PublishDate,
		ReadTime:      store.ReadTime(in.Content),
	}
	if n.Slug == "" {
		n.Slug = Slugify(n.Title)
	}
	if n.Published && n.PublishDate == nil {
		now := s.now()
		n.PublishDate = &now
	}
	return n, nil
}

func authorize(caller auth.Identity) error {
	if caller.UserID == 0 {
		return apperr.ErrUnauthorized
	}
	if !caller.Can(auth.PublishNews) {
		return apperr.ErrForbidden
	}
	return nil
}

func visible(n store.News, caller auth.Identity) (store.News, error) {
	if !n.Published && !caller.Can(auth.PublishNews) {
		return store.News{}, store.ErrNewsNotFound
	}
	return n, nil
}

// Slugify transliterates title to ASCII and joins its words with dashes,
// so "Sigur Rós" becomes "sigur-ros". Titles with nothing to transliterate
// fall back to "article".
func Slugify(title string) string {
	if out := slug.Make(title); out != "" {
		return out
	}
	return "article"
}
