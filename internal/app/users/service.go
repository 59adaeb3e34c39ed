package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"barsandbios/internal/apperr"
	"barsandbios/internal/app/ratings"
	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
	"barsandbios/internal/store"
	"barsandbios/internal/validation"
)

// ErrInvalidCredentials indicates a login failure. It does not say which
// half of the credentials was wrong.
var ErrInvalidCredentials = apperr.Unauthorized("INVALID_CREDENTIALS", "invalid credentials")

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, u store.User) (store.User, error)
	UserByID(ctx context.Context, id int64) (store.User, error)
	UserByLogin(ctx context.Context, login string) (store.User, error)
	UpdateUser(ctx context.Context, u store.User) (store.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.User], error)
	ReviewedAlbumIDs(ctx context.Context, authorID int64) ([]int64, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Generate(id auth.Identity) (string, error)
}

// RegisterInput is the payload for a new account. New accounts always get
// the user role.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Avatar    string `json:"avatar" validate:"omitempty,url"`
	Bio       string `json:"bio" validate:"max=500"`
}

// LoginInput accepts a username or an email as Login.
type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfilePatch holds the fields of a profile update; nil fields are left
// unchanged. Passwords change through ChangePassword only.
type ProfilePatch struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
}

// PasswordChange replaces the caller's password once the current one is
// confirmed.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// ErrWrongPassword is returned by ChangePassword when the current password
// does not match.
var ErrWrongPassword = apperr.Validation("INVALID_PASSWORD", "current password is incorrect")

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

// Service exposes account workflows.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, in LoginInput) (AuthResult, error)
	Get(ctx context.Context, id int64) (store.User, error)
	UpdateProfile(ctx context.Context, caller auth.Identity, id int64, p ProfilePatch) (store.User, error)
	ChangePassword(ctx context.Context, caller auth.Identity, in PasswordChange) error
	UpdateRole(ctx context.Context, caller auth.Identity, id int64, role string) (store.User, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.User], error)
	Resolve(ctx context.Context, claimed auth.Identity) (auth.Identity, error)
}

type service struct {
	store   Store
	tokens  TokenIssuer
	ratings ratings.Aggregator
	logger  zerolog.Logger
}

// New wires a Service backed by the provided Store.
func New(store Store, tokens TokenIssuer, agg ratings.Aggregator, logger zerolog.Logger) Service {
	return &service{
		store:   store,
		tokens:  tokens,
		ratings: agg,
		logger:  logger.With().Str("component", "users").Logger(),
	}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return AuthResult{}, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(&in); err != nil {
		return AuthResult{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.store.CreateUser(ctx, store.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         auth.RoleUser,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Avatar:       in.Avatar,
		Bio:          in.Bio,
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

func (s *service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return AuthResult{}, err
	}
	if err := validation.Struct(&in); err != nil {
		return AuthResult{}, err
	}

	user, err := s.store.UserByLogin(ctx, in.Login)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			auth.CheckPassword("", in.Password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *service) issue(user store.User) (AuthResult, error) {
	token, err := s.tokens.Generate(auth.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{Token: token, User: user}, nil
}

func (s *service) Get(ctx context.Context, id int64) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UserByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, caller auth.Identity, id int64, p ProfilePatch) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	if err := selfOrAdmin(caller, id); err != nil {
		return store.User{}, err
	}
	if err := validation.Struct(&p); err != nil {
		return store.User{}, err
	}

	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return store.User{}, err
	}

	if p.Username != nil {
		user.Username = strings.TrimSpace(*p.Username)
	}
	if p.Email != nil {
		user.Email = strings.TrimSpace(*p.Email)
	}
	if p.FirstName != nil {
		user.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		user.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Avatar != nil {
		user.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		user.Bio = *p.Bio
	}

	return s.store.UpdateUser(ctx, user)
}

func (s *service) ChangePassword(ctx context.Context, caller auth.Identity, in PasswordChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if caller.UserID == 0 {
		return apperr.ErrUnauthorized
	}
	if err := validation.Struct(&in); err != nil {
		return err
	}

	user, err := s.store.UserByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if _, err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password changed")
	return nil
}

func (s *service) UpdateRole(ctx context.Context, caller auth.Identity, id int64, role string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	if caller.UserID == 0 {
		return store.User{}, apperr.ErrUnauthorized
	}
	if !caller.Can(auth.ManageUsers) {
		return store.User{}, apperr.ErrForbidden
	}
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return store.User{}, apperr.Invalid("role must be one of: user, reviewer, admin")
	}

	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return store.User{}, err
	}
	user.Role = parsed
	updated, err := s.store.UpdateUser(ctx, user)
	if err != nil {
		return store.User{}, err
	}

	s.logger.Info().Int64("user_id", id).Str("role", string(parsed)).Int64("changed_by", caller.UserID).Msg("user role changed")
	return updated, nil
}

// Delete removes an account together with its reviews and reactions, then
// refreshes the aggregates of every album the user had reviewed.
func (s *service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := selfOrAdmin(caller, id); err != nil {
		return err
	}

	albumIDs, err := s.store.ReviewedAlbumIDs(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	for _, albumID := range albumIDs {
		if _, err := s.ratings.Recompute(ctx, albumID); err != nil {
			if errors.Is(err, ratings.ErrAlbumMissing) {
				s.logger.Warn().Err(err).Int64("album_id", albumID).Msg("skipping rating recompute for missing album")
				continue
			}
			return fmt.Errorf("recompute album %d: %w", albumID, err)
		}
	}
	return nil
}

func (s *service) List(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[store.User], error) {
	if err := ctx.Err(); err != nil {
		return pagination.Page[store.User]{}, err
	}
	return s.store.ListUsers(ctx, f, req)
}

// Resolve returns the identity of the account behind a verified token with
// its role as currently stored. A deleted account resolves to
// ErrUnauthorized.
func (s *service) Resolve(ctx context.Context, claimed auth.Identity) (auth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return auth.Identity{}, err
	}
	user, err := s.store.UserByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return auth.Identity{}, apperr.ErrUnauthorized
		}
		return auth.Identity{}, err
	}
	return auth.Identity{UserID: user.ID, Role: user.Role}, nil
}

func selfOrAdmin(caller auth.Identity, id int64) error {
	switch {
	case caller.UserID == 0:
		return apperr.ErrUnauthorized
	case caller.Owns(id), caller.Can(auth.ManageUsers):
		return nil
	}
	return apperr.ErrForbidden
}
