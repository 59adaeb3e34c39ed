package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"barsandbios/internal/pagination"
)

const newsColumns = `id, title, slug, excerpt, content, author_id, category, tags, featured_image, featured, published, publish_date, read_time, views, created_at, updated_at`

// CreateNews inserts an article. Slugs are unique.
func (s *Store) CreateNews(ctx context.Context, n News) (News, error) {
	tags, err := jsonArg("tags", nonNil(n.Tags))
	if err != nil {
		return News{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO news (title, slug, excerpt, content, author_id, category, tags, featured_image, featured, published, publish_date, read_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12)
		RETURNING `+newsColumns,
		strings.TrimSpace(n.Title), n.Slug, n.Excerpt, n.Content, n.AuthorID, string(n.Category), tags,
		n.FeaturedImage, n.Featured, n.Published, n.PublishDate, n.ReadTime)

	created, err := scanNewsRow(row)
	if err != nil {
		if isUniqueViolation(err) {
			return News{}, ErrSlugExists
		}
		return News{}, fmt.Errorf("insert news: %w", err)
	}
	return created, nil
}

// NewsByID returns a single article.
func (s *Store) NewsByID(ctx context.Context, id int64) (News, error) {
	return s.newsWhere(ctx, "id = $1", id)
}

// NewsBySlug returns a single article by slug.
func (s *Store) NewsBySlug(ctx context.Context, slug string) (News, error) {
	return s.newsWhere(ctx, "slug = $1", slug)
}

func (s *Store) newsWhere(ctx context.Context, cond string, arg any) (News, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE `+cond, arg)
	n, err := scanNewsRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return News{}, ErrNewsNotFound
		}
		return News{}, err
	}
	return n, nil
}

// UpdateNews overwrites the editable fields of an article.
func (s *Store) UpdateNews(ctx context.Context, n News) (News, error) {
	tags, err := jsonArg("tags", nonNil(n.Tags))
	if err != nil {
		return News{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE news
		SET title = $2, slug = $3, excerpt = $4, content = $5, category = $6, tags = $7::jsonb,
			featured_image = $8, featured = $9, published = $10, publish_date = $11, read_time = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING `+newsColumns,
		n.ID, strings.TrimSpace(n.Title), n.Slug, n.Excerpt, n.Content, string(n.Category), tags,
		n.FeaturedImage, n.Featured, n.Published, n.PublishDate, n.ReadTime)

	updated, err := scanNewsRow(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return News{}, ErrNewsNotFound
		case isUniqueViolation(err):
			return News{}, ErrSlugExists
		}
		return News{}, fmt.Errorf("update news: %w", err)
	}
	return updated, nil
}

// IncrementNewsViews bumps the view counter.
func (s *Store) IncrementNewsViews(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE news SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// DeleteNews removes an article.
func (s *Store) DeleteNews(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete news: %w", err)
	} else if n == 0 {
		return ErrNewsNotFound
	}
	return nil
}

// ListNews returns one page of articles.
func (s *Store) ListNews(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[News], error) {
	req = NewsSpec.Normalize(req)
	q, err := NewsSpec.Build(f, req)
	if err != nil {
		return pagination.Page[News]{}, err
	}

	var articles []News
	total, err := s.countAndSelect(ctx, "news", `SELECT `+newsColumns+` FROM news`, q, func(row rowScanner) error {
		n, err := scanNewsRow(row)
		if err != nil {
			return err
		}
		articles = append(articles, n)
		return nil
	})
	if err != nil {
		return pagination.Page[News]{}, err
	}
	return pagination.NewPage(articles, total, req), nil
}

func scanNewsRow(row rowScanner) (News, error) {
	var (
		n           News
		category    string
		tagsJSON    []byte
		authorID    sql.NullInt64
		publishDate sql.NullTime
	)
	if err := row.Scan(
		&n.ID, &n.Title, &n.Slug, &n.Excerpt, &n.Content, &authorID, &category, &tagsJSON,
		&n.FeaturedImage, &n.Featured, &n.Published, &publishDate, &n.ReadTime, &n.Views,
		&n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return News{}, err
		}
		return News{}, fmt.Errorf("scan news: %w", err)
	}

	if err := decodeJSON("tags", tagsJSON, &n.Tags); err != nil {
		return News{}, err
	}
	n.Category = NewsCategory(category)
	n.AuthorID = authorID.Int64
	if publishDate.Valid {
		t := publishDate.Time
		n.PublishDate = &t
	}
	n.Tags = nonNil(n.Tags)
	return n, nil
}
