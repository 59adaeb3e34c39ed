package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"barsandbios/internal/pagination"
)

// reviewAuthorFK names the reviews.author_id foreign key in the schema.
const reviewAuthorFK = "reviews_author_id_fkey"

const reviewColumns = `id, album_id, author_id, rating, title, content, pros, cons, highlights, lowlights, tags, featured, verified, liked_by, disliked_by, read_time, is_active, created_at, updated_at`

// CreateReview inserts an active review. A second active review by the same
// author for the same album is rejected with ErrDuplicateReview.
func (s *Store) CreateReview(ctx context.Context, r Review) (Review, error) {
	lists, err := reviewListArgs(r)
	if err != nil {
		return Review{}, err
	}

	args := append([]any{r.AlbumID, r.AuthorID, r.Rating, strings.TrimSpace(r.Title), strings.TrimSpace(r.Content)}, lists...)
	args = append(args, r.Featured, r.Verified, r.ReadTime)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO reviews (album_id, author_id, rating, title, content, pros, cons, highlights, lowlights, tags, featured, verified, read_time)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb, $9::jsonb, $10::jsonb, $11, $12, $13)
		RETURNING `+reviewColumns, args...)

	created, err := scanReviewRow(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Review{}, ErrDuplicateReview
		}
		if constraint, ok := foreignKeyConstraint(err); ok {
			if constraint == reviewAuthorFK {
				return Review{}, ErrUserNotFound
			}
			return Review{}, ErrAlbumNotFound
		}
		return Review{}, fmt.Errorf("insert review: %w", err)
	}
	return created, nil
}

// ReviewByID returns a review whether or not it is active.
func (s *Store) ReviewByID(ctx context.Context, id int64) (Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	r, err := scanReviewRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, err
	}
	return r, nil
}

// UpdateReview overwrites the editable fields of an active review.
func (s *Store) UpdateReview(ctx context.Context, r Review) (Review, error) {
	lists, err := reviewListArgs(r)
	if err != nil {
		return Review{}, err
	}

	args := append([]any{r.ID, r.Rating, strings.TrimSpace(r.Title), strings.TrimSpace(r.Content)}, lists...)
	args = append(args, r.Featured, r.Verified, r.ReadTime)

	row := s.db.QueryRowContext(ctx, `
		UPDATE reviews
		SET rating = $2, title = $3, content = $4, pros = $5::jsonb, cons = $6::jsonb, highlights = $7::jsonb,
			lowlights = $8::jsonb, tags = $9::jsonb, featured = $10, verified = $11, read_time = $12, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING `+reviewColumns, args...)

	updated, err := scanReviewRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, fmt.Errorf("update review: %w", err)
	}
	return updated, nil
}

// SoftDeleteReview marks an active review inactive.
func (s *Store) SoftDeleteReview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete review: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("soft delete review: %w", err)
	} else if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// DeleteReview permanently removes a review.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete review: %w", err)
	} else if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// ListReviews returns one page of reviews. Callers add the isActive
// condition themselves.
func (s *Store) ListReviews(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[Review], error) {
	req = ReviewSpec.Normalize(req)
	q, err := ReviewSpec.Build(f, req)
	if err != nil {
		return pagination.Page[Review]{}, err
	}

	var reviews []Review
	total, err := s.countAndSelect(ctx, "reviews", `SELECT `+reviewColumns+` FROM reviews`, q, func(row rowScanner) error {
		r, err := scanReviewRow(row)
		if err != nil {
			return err
		}
		reviews = append(reviews, r)
		return nil
	})
	if err != nil {
		return pagination.Page[Review]{}, err
	}
	return pagination.NewPage(reviews, total, req), nil
}

// ActiveReviewRatings returns the ratings of every active review of albumID.
func (s *Store) ActiveReviewRatings(ctx context.Context, albumID int64) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rating
		FROM reviews
		WHERE album_id = $1 AND is_active
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// ActiveReviewExists reports whether authorID has an active review of albumID.
func (s *Store) ActiveReviewExists(ctx context.Context, albumID, authorID int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM reviews
			WHERE album_id = $1 AND author_id = $2 AND is_active
		)
	`, albumID, authorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return exists, nil
}

// ReviewedAlbumIDs returns the albums authorID has active reviews for.
func (s *Store) ReviewedAlbumIDs(ctx context.Context, authorID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT album_id
		FROM reviews
		WHERE author_id = $1 AND is_active
		ORDER BY album_id ASC
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("select reviewed albums: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan album id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviewed albums: %w", err)
	}
	return ids, nil
}

// ToggleReaction flips userID's like or dislike on an active review and
// returns the updated review.
func (s *Store) ToggleReaction(ctx context.Context, reviewID, userID int64, kind Reaction) (Review, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Review{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		r            Review
		likedJSON    []byte
		dislikedJSON []byte
	)
	err = tx.QueryRowContext(ctx, `
		SELECT liked_by, disliked_by
		FROM reviews
		WHERE id = $1 AND is_active
		FOR UPDATE
	`, reviewID).Scan(&likedJSON, &dislikedJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, fmt.Errorf("lock review: %w", err)
	}
	if err := decodeJSON("liked_by", likedJSON, &r.LikedBy); err != nil {
		return Review{}, err
	}
	if err := decodeJSON("disliked_by", dislikedJSON, &r.DislikedBy); err != nil {
		return Review{}, err
	}

	toggleReaction(&r, userID, kind)

	liked, err := jsonArg("liked_by", nonNil(r.LikedBy))
	if err != nil {
		return Review{}, err
	}
	disliked, err := jsonArg("disliked_by", nonNil(r.DislikedBy))
	if err != nil {
		return Review{}, err
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE reviews
		SET liked_by = $2::jsonb, disliked_by = $3::jsonb, likes_count = $4, dislikes_count = $5
		WHERE id = $1
		RETURNING `+reviewColumns,
		reviewID, liked, disliked, r.Likes(), r.Dislikes())
	updated, err := scanReviewRow(row)
	if err != nil {
		return Review{}, fmt.Errorf("update reactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Review{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return updated, nil
}

func reviewListArgs(r Review) ([]any, error) {
	out := make([]any, 0, 5)
	for _, list := range []struct {
		name    string
		entries []string
	}{
		{"pros", r.Pros},
		{"cons", r.Cons},
		{"highlights", r.Highlights},
		{"lowlights", r.Lowlights},
		{"tags", r.Tags},
	} {
		payload, err := jsonArg(list.name, nonNil(list.entries))
		if err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, nil
}

func scanReviewRow(row rowScanner) (Review, error) {
	var (
		r              Review
		prosJSON       []byte
		consJSON       []byte
		highlightsJSON []byte
		lowlightsJSON  []byte
		tagsJSON       []byte
		likedJSON      []byte
		dislikedJSON   []byte
	)

	if err := row.Scan(
		&r.ID, &r.AlbumID, &r.AuthorID, &r.Rating, &r.Title, &r.Content, &prosJSON, &consJSON,
		&highlightsJSON, &lowlightsJSON, &tagsJSON, &r.Featured, &r.Verified, &likedJSON,
		&dislikedJSON, &r.ReadTime, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, err
		}
		return Review{}, fmt.Errorf("scan review: %w", err)
	}

	for _, field := range []struct {
		name string
		raw  []byte
		dest any
	}{
		{"pros", prosJSON, &r.Pros},
		{"cons", consJSON, &r.Cons},
		{"highlights", highlightsJSON, &r.Highlights},
		{"lowlights", lowlightsJSON, &r.Lowlights},
		{"tags", tagsJSON, &r.Tags},
		{"liked_by", likedJSON, &r.LikedBy},
		{"disliked_by", dislikedJSON, &r.DislikedBy},
	} {
		if err := decodeJSON(field.name, field.raw, field.dest); err != nil {
			return Review{}, err
		}
	}

	r.Pros = nonNil(r.Pros)
	r.Cons = nonNil(r.Cons)
	r.Highlights = nonNil(r.Highlights)
	r.Lowlights = nonNil(r.Lowlights)
	r.Tags = nonNil(r.Tags)
	return r, nil
}
