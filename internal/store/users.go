package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
)

const userColumns = `id, username, email, password_hash, role, first_name, last_name, avatar, bio, is_verified, created_at, updated_at`

// CreateUser inserts a new account. Username and email must be unique.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = auth.RoleUser
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, first_name, last_name, avatar, bio, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns,
		u.Username, u.Email, u.PasswordHash, string(u.Role), u.FirstName, u.LastName, u.Avatar, u.Bio, u.IsVerified)

	created, err := scanUserRow(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// UserByID returns a single user.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UserByLogin looks a user up by username or email, case-insensitively.
func (s *Store) UserByLogin(ctx context.Context, login string) (User, error) {
	login = strings.TrimSpace(login)
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(username) = LOWER($1) OR email = LOWER($1)
		ORDER BY id ASC
		LIMIT 1
	`, login)
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UsersByIDs returns the users among ids that exist, keyed by id.
func (s *Store) UsersByIDs(ctx context.Context, ids []int64) (map[int64]User, error) {
	out := make(map[int64]User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	payload, err := jsonArg("ids", ids)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id IN (SELECT jsonb_array_elements_text($1::jsonb)::bigint)
	`, payload)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// UpdateUser overwrites the mutable fields of an existing user.
func (s *Store) UpdateUser(ctx context.Context, u User) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, role = $5, first_name = $6,
			last_name = $7, avatar = $8, bio = $9, is_verified = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, strings.TrimSpace(u.Username), strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash,
		string(u.Role), u.FirstName, u.LastName, u.Avatar, u.Bio, u.IsVerified)

	updated, err := scanUserRow(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return User{}, ErrUserNotFound
		case isUniqueViolation(err):
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// DeleteUser removes a user. Their reviews go with them, and their id is
// stripped from the reactions on everyone else's reviews with the counters
// recomputed, in the same transaction.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		UPDATE reviews
		SET liked_by = COALESCE((SELECT jsonb_agg(e) FROM jsonb_array_elements(liked_by) e WHERE e <> to_jsonb($1::bigint)), '[]'::jsonb),
			disliked_by = COALESCE((SELECT jsonb_agg(e) FROM jsonb_array_elements(disliked_by) e WHERE e <> to_jsonb($1::bigint)), '[]'::jsonb),
			likes_count = (SELECT COUNT(*) FROM jsonb_array_elements(liked_by) e WHERE e <> to_jsonb($1::bigint)),
			dislikes_count = (SELECT COUNT(*) FROM jsonb_array_elements(disliked_by) e WHERE e <> to_jsonb($1::bigint))
		WHERE author_id <> $1
			AND (liked_by @> jsonb_build_array($1::bigint) OR disliked_by @> jsonb_build_array($1::bigint))
	`, id); err != nil {
		return fmt.Errorf("strip reactions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return nil
}

// ListUsers returns one page of users.
func (s *Store) ListUsers(ctx context.Context, f pagination.Filter, req pagination.Request) (pagination.Page[User], error) {
	req = UserSpec.Normalize(req)
	q, err := UserSpec.Build(f, req)
	if err != nil {
		return pagination.Page[User]{}, err
	}

	var users []User
	total, err := s.countAndSelect(ctx, "users", `SELECT `+userColumns+` FROM users`, q, func(row rowScanner) error {
		u, err := scanUserRow(row)
		if err != nil {
			return err
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return pagination.Page[User]{}, err
	}
	return pagination.NewPage(users, total, req), nil
}

func scanUserRow(row rowScanner) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.FirstName, &u.LastName,
		&u.Avatar, &u.Bio, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = auth.Role(role)
	return u, nil
}
