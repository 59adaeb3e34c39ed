package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"barsandbios/internal/pagination"
)

const artistColumns = `id, name, stage_name, real_name, bio, image, genres, hometown, active_start, active_end, labels, featured, verified, followers, monthly_listeners, created_at, updated_at`

// CreateArtist inserts a catalogue artist.
func (s *Store) CreateArtist(ctx context.Context, a Artist) (Artist, error) {
	genres, err := jsonArg("genres", nonNil(a.Genres))
	if err != nil {
		return Artist{}, err
	}
	labels, err := jsonArg("labels", nonNil(a.Labels))
	if err != nil {
		return Artist{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name, stage_name, real_name, bio, image, genres, hometown, active_start, active_end, labels, featured, verified, followers, monthly_listeners)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10::jsonb, $11, $12, $13, $14)
		RETURNING `+artistColumns,
		strings.TrimSpace(a.Name), a.StageName, a.RealName, a.Bio, a.Image, genres, a.Hometown,
		a.ActiveStart, a.ActiveEnd, labels, a.Featured, a.Verified, a.Followers, a.MonthlyListeners)

	created, err := scanArtistRow(row)
	if err != nil {
		return Artist{}, fmt.Errorf("insert artist: %w", err)
	}
	return created, nil
}

// ArtistByID returns a single artist.
func (s *Store) ArtistByID(ctx context.Context, id int64) (Artist, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = $1`, id)
	a, err := scanArtistRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artist{}, ErrArtistNotFound
		}
		return Artist{}, err
	}
	return a, nil
}

// UpdateArtist overwrites the mutable fields of an artist.
func (s *Store) UpdateArtist(ctx context.Context, a Artist) (Artist, error) {
	genres, err := jsonArg("genres", nonNil(a.Genres))
	if err != nil {
		return Artist{}, err
	}
	labels, err := jsonArg("labels", nonNil(a.Labels))
	if err != nil {
		return Artist{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE artists
		SET name = $2, stage_name = $3, real_name = $4, bio = $5, image = $6, genres = $7::jsonb,
			hometown = $8, active_start = $9, active_end = $10, labels = $11::jsonb, featured = $12,
			verified = $13, followers = $14, monthly_listeners = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING `+artistColumns,
		a.ID, strings.TrimSpace(a.Name), a.StageName, a.RealName, a.Bio, a.Image, genres, a.Hometown,
		a.ActiveStart, a.ActiveEnd, labels, a.Featured, a.Verified, a.Followers, a.MonthlyListeners)

	updated, err := scanArtistRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artist{}, ErrArtistNotFound
		}
		return Artist{}, fmt.Errorf("update artist: %w", err)
	}
	return updated, nil
}

// DeleteArtist removes an artist together with its albums.
func (s *Store) DeleteArtist(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete artist: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete artist: %w", err)
	} else if n == 0 {
		return ErrArtistNotFound
	}
	return nil
}

// ListArtists returns one page of artists.
func (s *Store) ListArtists(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[Artist], error) {
	req = ArtistSpec.Normalize(req)
	q, err := ArtistSpec.Build(f, req)
	if err != nil {
		return pagination.Page[Artist]{}, err
	}

	var artists []Artist
	total, err := s.countAndSelect(ctx, "artists", `SELECT `+artistColumns+` FROM artists`, q, func(row rowScanner) error {
		a, err := scanArtistRow(row)
		if err != nil {
			return err
		}
		artists = append(artists, a)
		return nil
	})
	if err != nil {
		return pagination.Page[Artist]{}, err
	}
	return pagination.NewPage(artists, total, req), nil
}

func scanArtistRow(row rowScanner) (Artist, error) {
	var (
		a           Artist
		genresJSON  []byte
		labelsJSON  []byte
		activeStart sql.NullInt64
		activeEnd   sql.NullInt64
	)
	if err := row.Scan(
		&a.ID, &a.Name, &a.StageName, &a.RealName, &a.Bio, &a.Image, &genresJSON, &a.Hometown,
		&activeStart, &activeEnd, &labelsJSON, &a.Featured, &a.Verified, &a.Followers,
		&a.MonthlyListeners, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artist{}, err
		}
		return Artist{}, fmt.Errorf("scan artist: %w", err)
	}

	if err := decodeJSON("genres", genresJSON, &a.Genres); err != nil {
		return Artist{}, err
	}
	if err := decodeJSON("labels", labelsJSON, &a.Labels); err != nil {
		return Artist{}, err
	}
	if activeStart.Valid {
		v := int(activeStart.Int64)
		a.ActiveStart = &v
	}
	if activeEnd.Valid {
		v := int(activeEnd.Int64)
		a.ActiveEnd = &v
	}
	a.Genres = nonNil(a.Genres)
	a.Labels = nonNil(a.Labels)
	return a, nil
}
