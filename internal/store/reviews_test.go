package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"barsandbios/internal/pagination"
)

var reviewRowColumns = []string{
	"id", "album_id", "author_id", "rating", "title", "content", "pros", "cons", "highlights", "lowlights",
	"tags", "featured", "verified", "liked_by", "disliked_by", "read_time", "is_active", "created_at", "updated_at",
}

func reviewRow(id, albumID, authorID int64, rating int, liked string) []driver.Value {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, albumID, authorID, rating, "Title", "Content", []byte(`["beats"]`), []byte(`[]`), []byte(`[]`), []byte(`[]`),
		[]byte(`["classic"]`), false, false, []byte(liked), []byte(`[]`), 1, true, ts, ts,
	}
}

func TestCreateReviewSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews (album_id, author_id, rating, title, content, pros, cons, highlights, lowlights, tags, featured, verified, read_time)`)).
		WithArgs(int64(10), int64(7), 4, "Title", "Content", `["beats"]`, `[]`, `[]`, `[]`, `["classic"]`, false, false, 1).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns).AddRow(reviewRow(1, 10, 7, 4, `[]`)...))

	got, err := s.CreateReview(context.Background(), Review{
		AlbumID:  10,
		AuthorID: 7,
		Rating:   4,
		Title:    "  Title ",
		Content:  "Content",
		Pros:     []string{"beats"},
		Tags:     []string{"classic"},
		ReadTime: 1,
	})
	if err != nil {
		t.Fatalf("CreateReview error: %v", err)
	}
	if got.ID != 1 || !got.IsActive {
		t.Fatalf("unexpected review %+v", got)
	}
	if len(got.Cons) != 0 || got.Cons == nil {
		t.Fatalf("expected empty non-nil cons, got %#v", got.Cons)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateReviewDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_one_active_per_author"})

	_, err = s.CreateReview(context.Background(), Review{AlbumID: 1, AuthorID: 2, Rating: 5})
	if !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateReviewForeignKeyViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraint: "reviews_album_id_fkey", want: ErrAlbumNotFound},
		{constraint: "reviews_author_id_fkey", want: ErrUserNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.constraint, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
				WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: tc.constraint})

			_, err = New(db).CreateReview(context.Background(), Review{AlbumID: 1, AuthorID: 2, Rating: 5})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestActiveReviewRatings(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT rating
		FROM reviews
		WHERE album_id = $1 AND is_active
	`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(5).AddRow(3).AddRow(4))

	ratings, err := s.ActiveReviewRatings(context.Background(), 3)
	if err != nil {
		t.Fatalf("ActiveReviewRatings error: %v", err)
	}
	if len(ratings) != 3 || ratings[0] != 5 || ratings[2] != 4 {
		t.Fatalf("unexpected ratings %v", ratings)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSoftDeleteReviewNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`SET is_active = FALSE, updated_at = NOW()`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.SoftDeleteReview(context.Background(), 99); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleReactionLikeRemovesDislike(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT liked_by, disliked_by
		FROM reviews
		WHERE id = $1 AND is_active
		FOR UPDATE
	`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"liked_by", "disliked_by"}).AddRow([]byte(`[2]`), []byte(`[9]`)))
	mock.ExpectQuery(regexp.QuoteMeta(`SET liked_by = $2::jsonb, disliked_by = $3::jsonb, likes_count = $4, dislikes_count = $5`)).
		WithArgs(int64(5), `[2,9]`, `[]`, 2, 0).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns).AddRow(reviewRow(5, 1, 3, 4, `[2,9]`)...))
	mock.ExpectCommit()

	got, err := s.ToggleReaction(context.Background(), 5, 9, ReactionLike)
	if err != nil {
		t.Fatalf("ToggleReaction error: %v", err)
	}
	if got.Likes() != 2 || !got.LikedByUser(9) {
		t.Fatalf("expected user 9 to like review, got %+v", got.LikedBy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleReactionMissingReviewRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT liked_by, disliked_by`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"liked_by", "disliked_by"}))
	mock.ExpectRollback()

	if _, err := s.ToggleReaction(context.Background(), 5, 9, ReactionDislike); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListReviewsBuildsPagedQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	f := pagination.Filter{Search: "dilla"}.Where(ReviewActiveField, true).Where(ReviewAlbumField, int64(4))
	req := pagination.Request{Page: 2, Limit: 1, SortBy: "likes", SortOrder: pagination.Asc}

	where := ` WHERE is_active = $1 AND album_id = $2 AND (title ILIKE $3 OR content ILIKE $3)`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reviews` + where)).
		WithArgs(true, int64(4), "%dilla%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(where + ` ORDER BY likes_count ASC, id ASC LIMIT $4 OFFSET $5`)).
		WithArgs(true, int64(4), "%dilla%", 1, 1).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns).AddRow(reviewRow(8, 4, 2, 5, `[]`)...))

	page, err := s.ListReviews(context.Background(), f, req)
	if err != nil {
		t.Fatalf("ListReviews error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != 8 {
		t.Fatalf("unexpected items %+v", page.Items)
	}
	if page.Meta.Total != 3 || page.Meta.TotalPages != 3 || !page.Meta.HasNextPage || !page.Meta.HasPrevPage {
		t.Fatalf("unexpected meta %+v", page.Meta)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
