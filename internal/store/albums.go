package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"barsandbios/internal/pagination"
)

const albumColumns = `id, title, artist_id, type, release_date, genres, cover_art, description, tracklist, total_duration, label, producers, featured, verified, average_rating, total_reviews, created_at, updated_at`

// CreateAlbum inserts a catalogue album. The rating aggregate starts at zero.
func (s *Store) CreateAlbum(ctx context.Context, a Album) (Album, error) {
	args, err := albumArgs(a)
	if err != nil {
		return Album{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO albums (title, artist_id, type, release_date, genres, cover_art, description, tracklist, total_duration, label, producers, featured, verified)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8::jsonb, $9, $10, $11::jsonb, $12, $13)
		RETURNING `+albumColumns, args...)

	created, err := scanAlbumRow(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Album{}, ErrArtistNotFound
		}
		return Album{}, fmt.Errorf("insert album: %w", err)
	}
	return created, nil
}

// AlbumByID returns a single album by its identifier.
func (s *Store) AlbumByID(ctx context.Context, id int64) (Album, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1`, id)
	album, err := scanAlbumRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, ErrAlbumNotFound
		}
		return Album{}, err
	}
	return album, nil
}

// AlbumsByIDs returns the albums among ids that exist, keyed by id.
func (s *Store) AlbumsByIDs(ctx context.Context, ids []int64) (map[int64]Album, error) {
	out := make(map[int64]Album, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	payload, err := jsonArg("ids", ids)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE id IN (SELECT jsonb_array_elements_text($1::jsonb)::bigint)
	`, payload)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAlbumRow(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return out, nil
}

// UpdateAlbum overwrites the editable fields of an album. The rating
// aggregate is left untouched.
func (s *Store) UpdateAlbum(ctx context.Context, a Album) (Album, error) {
	args, err := albumArgs(a)
	if err != nil {
		return Album{}, err
	}
	args = append([]any{a.ID}, args...)

	row := s.db.QueryRowContext(ctx, `
		UPDATE albums
		SET title = $2, artist_id = $3, type = $4, release_date = $5, genres = $6::jsonb, cover_art = $7,
			description = $8, tracklist = $9::jsonb, total_duration = $10, label = $11, producers = $12::jsonb,
			featured = $13, verified = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING `+albumColumns, args...)

	updated, err := scanAlbumRow(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Album{}, ErrAlbumNotFound
		case isForeignKeyViolation(err):
			return Album{}, ErrArtistNotFound
		}
		return Album{}, fmt.Errorf("update album: %w", err)
	}
	return updated, nil
}

// SetAlbumRating writes the cached rating aggregate.
func (s *Store) SetAlbumRating(ctx context.Context, albumID int64, average float64, total int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE albums
		SET average_rating = $2, total_reviews = $3
		WHERE id = $1
	`, albumID, average, total)
	if err != nil {
		return fmt.Errorf("update album rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update album rating: %w", err)
	}
	if n == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// DeleteAlbum removes an album and its reviews.
func (s *Store) DeleteAlbum(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete album: %w", err)
	} else if n == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// ListAlbums returns one page of albums.
func (s *Store) ListAlbums(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[Album], error) {
	req = AlbumSpec.Normalize(req)
	q, err := AlbumSpec.Build(f, req)
	if err != nil {
		return pagination.Page[Album]{}, err
	}

	var albums []Album
	total, err := s.countAndSelect(ctx, "albums", `SELECT `+albumColumns+` FROM albums`, q, func(row rowScanner) error {
		a, err := scanAlbumRow(row)
		if err != nil {
			return err
		}
		albums = append(albums, a)
		return nil
	})
	if err != nil {
		return pagination.Page[Album]{}, err
	}
	return pagination.NewPage(albums, total, req), nil
}

func albumArgs(a Album) ([]any, error) {
	genres, err := jsonArg("genres", nonNil(a.Genres))
	if err != nil {
		return nil, err
	}
	tracklist, err := jsonArg("tracklist", nonNil(a.Tracklist))
	if err != nil {
		return nil, err
	}
	producers, err := jsonArg("producers", nonNil(a.Producers))
	if err != nil {
		return nil, err
	}
	return []any{
		strings.TrimSpace(a.Title), a.ArtistID, string(a.Type), a.ReleaseDate, genres, a.CoverArt,
		a.Description, tracklist, a.TotalDuration, a.Label, producers, a.Featured, a.Verified,
	}, nil
}

func scanAlbumRow(row rowScanner) (Album, error) {
	var (
		a             Album
		albumType     string
		genresJSON    []byte
		tracklistJSON []byte
		producersJSON []byte
	)

	if err := row.Scan(
		&a.ID, &a.Title, &a.ArtistID, &albumType, &a.ReleaseDate, &genresJSON, &a.CoverArt,
		&a.Description, &tracklistJSON, &a.TotalDuration, &a.Label, &producersJSON, &a.Featured,
		&a.Verified, &a.AverageRating, &a.TotalReviews, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, err
		}
		return Album{}, fmt.Errorf("scan album: %w", err)
	}

	if err := decodeJSON("genres", genresJSON, &a.Genres); err != nil {
		return Album{}, err
	}
	if err := decodeJSON("tracklist", tracklistJSON, &a.Tracklist); err != nil {
		return Album{}, err
	}
	if err := decodeJSON("producers", producersJSON, &a.Producers); err != nil {
		return Album{}, err
	}
	a.Type = AlbumType(albumType)
	a.Genres = nonNil(a.Genres)
	a.Tracklist = nonNil(a.Tracklist)
	a.Producers = nonNil(a.Producers)
	return a, nil
}
