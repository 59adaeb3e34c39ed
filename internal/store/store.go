package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"barsandbios/internal/apperr"
	"barsandbios/internal/pagination"
)

var (
	// ErrUserNotFound signals a missing user record.
	ErrUserNotFound = apperr.NotFound("USER_NOT_FOUND", "user not found")
	// ErrUserExists signals the username or email is already taken.
	ErrUserExists = apperr.Conflict("USER_EXISTS", "a user with that username or email already exists")
	// ErrArtistNotFound signals a missing artist record.
	ErrArtistNotFound = apperr.NotFound("ARTIST_NOT_FOUND", "artist not found")
	// ErrAlbumNotFound signals a missing album record.
	ErrAlbumNotFound = apperr.NotFound("ALBUM_NOT_FOUND", "album not found")
	// ErrReviewNotFound signals a missing or inactive review.
	ErrReviewNotFound = apperr.NotFound("REVIEW_NOT_FOUND", "review not found")
	// ErrDuplicateReview signals the author already has an active review of the album.
	ErrDuplicateReview = apperr.Conflict("DUPLICATE_REVIEW", "you have already reviewed this album")
	// ErrNewsNotFound signals a missing news article.
	ErrNewsNotFound = apperr.NotFound("NEWS_NOT_FOUND", "news article not found")
	// ErrSlugExists signals a news slug collision.
	ErrSlugExists = apperr.Conflict("SLUG_EXISTS", "a news article with that slug already exists")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	_, ok := foreignKeyConstraint(err)
	return ok
}

// foreignKeyConstraint returns the name of the constraint behind a foreign
// key violation.
func foreignKeyConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func jsonArg(name string, v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("prepare %s payload: %w", name, err)
	}
	return string(payload), nil
}

func decodeJSON(name string, raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// countAndSelect runs the COUNT and paged SELECT for a list query and hands
// each row to scan.
func (s *Store) countAndSelect(ctx context.Context, from, base string, q pagination.Query, scan func(rowScanner) error) (int, error) {
	countSQL, countArgs := q.Count(from)
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", from, err)
	}

	selectSQL, selectArgs := q.Select(base)
	rows, err := s.db.QueryContext(ctx, selectSQL, selectArgs...)
	if err != nil {
		return 0, fmt.Errorf("select %s: %w", from, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return 0, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate %s: %w", from, err)
	}

	return total, nil
}
