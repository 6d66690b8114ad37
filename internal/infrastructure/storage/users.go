package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"PBNPublisher/internal/domain"
)

// CreateUser inserts an account; duplicate emails yield domain.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.CreatedAt = fromUnix(unixTime(s.now()))
	id, err := insertReturningID(ctx, s.db, s.sb.Insert("users").
		Columns("email", "password", "name", "created_at").
		Values(user.Email, user.PasswordHash, nullIfEmpty(user.Name), unixTime(user.CreatedAt)))
	if isUniqueViolation(err) {
		return domain.User{}, fmt.Errorf("user %s: %w", user.Email, domain.ErrConflict)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return user, nil
}

// GetUserByEmail looks up an account by its stored email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, sq.Eq{"email": email})
}

// GetUser looks up an account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, sq.Eq{"id": id})
}

func (s *Store) getUser(ctx context.Context, where sq.Eq) (*domain.User, error) {
	query, args, err := s.sb.Select("id", "email", "password", "name", "created_at").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var (
		user      domain.User
		name      sql.NullString
		createdAt int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Email, &user.PasswordHash, &name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Name = name.String
	user.CreatedAt = fromUnix(createdAt)
	return &user, nil
}

// CreateSession stores a login session.
func (s *Store) CreateSession(ctx context.Context, session domain.Session) error {
	query, args, err := s.sb.Insert("sessions").
		Columns("token", "user_id", "expires_at", "created_at").
		Values(session.Token, session.UserID, unixTime(session.ExpiresAt), unixTime(s.now())).
		ToSql()
	if err != nil {
		return fmt.Errorf("build session insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession fetches a session by token.
func (s *Store) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	query, args, err := s.sb.Select("token", "user_id", "expires_at", "created_at").
		From("sessions").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	var (
		session            domain.Session
		expires, createdAt int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&session.Token, &session.UserID, &expires, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	session.ExpiresAt = fromUnix(expires)
	session.CreatedAt = fromUnix(createdAt)
	return &session, nil
}

// DeleteSession removes a session; deleting a missing token is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := execAffected(ctx, s.db, s.sb.Delete("sessions").Where(sq.Eq{"token": token})); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
