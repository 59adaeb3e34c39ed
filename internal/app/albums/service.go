package albums

import (
	"context"
	"strings"
	"time"

	"barsandbios/internal/apperr"
	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
	"barsandbios/internal/store"
	"barsandbios/internal/validation"
)

// Store captures the persistence needs for album workflows.
type Store interface {
	CreateAlbum(ctx context.Context, a store.Album) (store.Album, error)
	AlbumByID(ctx context.Context, id int64) (store.Album, error)
	UpdateAlbum(ctx context.Context, a store.Album) (store.Album, error)
	DeleteAlbum(ctx context.Context, id int64) error
	ListAlbums(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Album], error)
}

// Input is the writable shape of an album. The rating aggregate is owned by
// the review workflow and cannot be set here.
type Input struct {
	Title         string        `json:"title" validate:"required,max=200"`
	ArtistID      int64         `json:"artistId" validate:"required,gt=0"`
	Type          string        `json:"type" validate:"required,oneof=album mixtape EP single"`
	ReleaseDate   time.Time     `json:"releaseDate" validate:"required"`
	Genres        []string      `json:"genres" validate:"max=10,dive,max=50"`
	CoverArt      string        `json:"coverArt" validate:"omitempty,url"`
	Description   string        `json:"description" validate:"max=2000"`
	Tracklist     []store.Track `json:"tracklist" validate:"max=100,dive"`
	TotalDuration string        `json:"totalDuration" validate:"max=20"`
	Label         string        `json:"label" validate:"max=100"`
	Producers     []string      `json:"producers" validate:"max=30,dive,max=100"`
	Featured      bool          `json:"featured"`
	Verified      bool          `json:"verified"`
}

// Service coordinates album-related operations.
type Service interface {
	Create(ctx context.Context, caller auth.Identity, in Input) (store.Album, error)
	Get(ctx context.Context, id int64) (store.Album, error)
	Update(ctx context.Context, caller auth.Identity, id int64, in Input) (store.Album, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Album], error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, in Input) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	a, err := prepare(caller, in)
	if err != nil {
		return store.Album{}, err
	}
	return s.store.CreateAlbum(ctx, a)
}

func (s *service) Get(ctx context.Context, id int64) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.AlbumByID(ctx, id)
}

func (s *service) Update(ctx context.Context, caller auth.Identity, id int64, in Input) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	a, err := prepare(caller, in)
	if err != nil {
		return store.Album{}, err
	}
	a.ID = id
	return s.store.UpdateAlbum(ctx, a)
}

// Delete removes an album along with all of its reviews.
func (s *service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := authorize(caller); err != nil {
		return err
	}
	return s.store.DeleteAlbum(ctx, id)
}

func (s *service) List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Album], error) {
	if err := ctx.Err(); err != nil {
		return pagination.Page[store.Album]{}, err
	}
	return s.store.ListAlbums(ctx, f, req)
}

func authorize(caller auth.Identity) error {
	if caller.UserID == 0 {
		return apperr.ErrUnauthorized
	}
	if !caller.Can(auth.ManageCatalog) {
		return apperr.ErrForbidden
	}
	return nil
}

func prepare(caller auth.Identity, in Input) (store.Album, error) {
	if err := authorize(caller); err != nil {
		return store.Album{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	for i := range in.Tracklist {
		in.Tracklist[i].Title = strings.TrimSpace(in.Tracklist[i].Title)
	}
	if err := validation.Struct(&in); err != nil {
		return store.Album{}, err
	}

	a := store.Album{
		Title:         in.Title,
		ArtistID:      in.ArtistID,
		Type:          store.AlbumType(in.Type),
		ReleaseDate:   in.ReleaseDate.UTC(),
		Genres:        in.Genres,
		CoverArt:      in.CoverArt,
		Description:   in.Description,
		Tracklist:     in.Tracklist,
		TotalDuration: in.TotalDuration,
		Label:         in.Label,
		Producers:     in.Producers,
		Featured:      in.Featured,
		Verified:      in.Verified,
	}
	return a, nil
}
