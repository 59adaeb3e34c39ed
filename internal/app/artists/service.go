package artists

import (
	"context"
	"strings"

	"barsandbios/internal/apperr"
	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
	"barsandbios/internal/store"
	"barsandbios/internal/validation"
)

// Store captures the persistence needs for artist workflows.
type Store interface {
	CreateArtist(ctx context.Context, a store.Artist) (store.Artist, error)
	ArtistByID(ctx context.Context, id int64) (store.Artist, error)
	UpdateArtist(ctx context.Context, a store.Artist) (store.Artist, error)
	DeleteArtist(ctx context.Context, id int64) error
	ListArtists(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Artist], error)
}

// Input is the writable shape of an artist.
type Input struct {
	Name             string   `json:"name" validate:"required,max=100"`
	StageName        string   `json:"stageName" validate:"max=100"`
	RealName         string   `json:"realName" validate:"max=100"`
	Bio              string   `json:"bio" validate:"max=2000"`
	Image            string   `json:"image" validate:"omitempty,url"`
	Genres           []string `json:"genres" validate:"max=10,dive,max=50"`
	Hometown         string   `json:"hometown" validate:"max=100"`
	ActiveStart      *int     `json:"activeStart" validate:"omitempty,gte=1900,lte=2100"`
	ActiveEnd        *int     `json:"activeEnd" validate:"omitempty,gte=1900,lte=2100"`
	Labels           []string `json:"labels" validate:"max=20,dive,max=100"`
	Featured         bool     `json:"featured"`
	Verified         bool     `json:"verified"`
	Followers        int64    `json:"followers" validate:"gte=0"`
	MonthlyListeners int64    `json:"monthlyListeners" validate:"gte=0"`
}

// Service provides artist-centric operations.
type Service interface {
	Create(ctx context.Context, caller auth.Identity, in Input) (store.Artist, error)
	Get(ctx context.Context, id int64) (store.Artist, error)
	Update(ctx context.Context, caller auth.Identity, id int64, in Input) (store.Artist, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Artist], error)
}

type service struct {
	store Store
}

// New constructs an artist Service backed by the supplied Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, in Input) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}
	a, err := prepare(caller, in)
	if err != nil {
		return store.Artist{}, err
	}
	return s.store.CreateArtist(ctx, a)
}

func (s *service) Get(ctx context.Context, id int64) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}
	return s.store.ArtistByID(ctx, id)
}

func (s *service) Update(ctx context.Context, caller auth.Identity, id int64, in Input) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}
	a, err := prepare(caller, in)
	if err != nil {
		return store.Artist{}, err
	}
	a.ID = id
	return s.store.UpdateArtist(ctx, a)
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := authorize(caller); err != nil {
		return err
	}
	return s.store.DeleteArtist(ctx, id)
}

func (s *service) List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.Artist], error) {
	if err := ctx.Err(); err != nil {
		return pagination.Page[store.Artist]{}, err
	}
	return s.store.ListArtists(ctx, f, req)
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

func prepare(caller auth.Identity, in Input) (store.Artist, error) {
	if err := authorize(caller); err != nil {
		return store.Artist{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(&in); err != nil {
		return store.Artist{}, err
	}
	if in.ActiveStart != nil && in.ActiveEnd != nil && *in.ActiveEnd < *in.ActiveStart {
		return store.Artist{}, apperr.Invalid("activeEnd must not precede activeStart")
	}

	a := store.Artist{
		Name:             in.Name,
		StageName:        strings.TrimSpace(in.StageName),
		RealName:         strings.TrimSpace(in.RealName),
		Bio:              in.Bio,
		Image:            in.Image,
		Genres:           in.Genres,
		Hometown:         strings.TrimSpace(in.Hometown),
		ActiveStart:      in.ActiveStart,
		ActiveEnd:        in.ActiveEnd,
		Labels:           in.Labels,
		Featured:         in.Featured,
		Verified:         in.Verified,
		Followers:        in.Followers,
		MonthlyListeners: in.MonthlyListeners,
	}
	return a, nil
}
