package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/logging"
	"PBNPublisher/internal/ports"
)

const bcryptCost = 10

// Accounts registers users and manages their sessions.
type Accounts struct {
	users      ports.UserRepository
	sessions   ports.SessionRepository
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAccounts wires the account use case.
func NewAccounts(users ports.UserRepository, sessions ports.SessionRepository, sessionTTL time.Duration, logger *slog.Logger) *Accounts {
	if logger == nil {
		logger = logging.Discard()
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	return &Accounts{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account with a bcrypt password hash.
func (a *Accounts) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: missing email or password", domain.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := a.users.CreateUser(ctx, domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	})
	if err != nil {
		return domain.User{}, err
	}
	a.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the password and opens a session.
func (a *Accounts) Login(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := a.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	now := a.now()
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(a.sessionTTL),
		CreatedAt: now,
	}
	if err := a.sessions.CreateSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Resolve maps a session token to its user id. Expired sessions are removed.
func (a *Accounts) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrUnauthorized
	}
	session, err := a.sessions.GetSession(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, domain.ErrUnauthorized
	}
	if err != nil {
		return 0, err
	}
	if !a.now().Before(session.ExpiresAt) {
		if err := a.sessions.DeleteSession(ctx, token); err != nil {
			a.logger.Warn("delete expired session", "error", err)
		}
		return 0, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	return session.UserID, nil
}

// Lookup finds an account by email for operator tooling.
func (a *Accounts) Lookup(ctx context.Context, email string) (domain.User, error) {
	user, err := a.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.User{}, fmt.Errorf("user %q: %w", email, err)
	}
	return *user, nil
}

// Logout ends a session.
func (a *Accounts) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.DeleteSession(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
