package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
)

// PasswordHasher hashes and checks passwords. *auth.PasswordService satisfies it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) error
}

// TokenIssuer signs access tokens. *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
}

// Session is the result of a successful login.
type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users     repo.UserRepo
	passwords PasswordHasher
	tokens    TokenIssuer
	log       *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, passwords PasswordHasher, tokens TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{users: users, passwords: passwords, tokens: tokens, log: log}
}

// Register creates a new account.
// Returns domain.ErrValidation for bad input and domain.ErrConflict when the
// email is already registered.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	const op = "service.AuthService.Register"

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateRegistration(username, email, password); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.Create(ctx, domain.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues a token.
// Unknown email and wrong password both yield domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "service.AuthService.Login"

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.log.DebugContext(ctx, "login rejected", "user_id", user.ID, "error", err)
		return Session{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}

	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, id domain.Identity) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Me: %w", err)
	}
	return user, nil
}

func validateRegistration(username, email, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsername || n > maxUsername {
		return fmt.Errorf("%w: username must be between %d and %d characters", domain.ErrValidation, minUsername, maxUsername)
	}
	if err := required("email", email, maxEmail); err != nil {
		return err
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not a valid address", domain.ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPassword {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPassword)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	return nil
}
