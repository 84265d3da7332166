package service

import (
	"context"
	"errors"
	"time"

	dom "Tasker/internal/domain"
	"Tasker/internal/repo"
	"Tasker/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound collapses "doesn't exist" and "not owned by caller" into
	// one outcome so callers can't probe for other users' resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is deliberately the same for an unknown email
	// and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
)

const bcryptCost = 10

// AuthService handles account creation and login.
type AuthService struct {
	users  repo.UserRepo
	events repo.EventStore
}

// NewAuthService returns a new AuthService.
func NewAuthService(users repo.UserRepo, events repo.EventStore) *AuthService {
	return &AuthService{users: users, events: events}
}

// SignUp creates an account. The email is normalized before the uniqueness
// check; an existing soft-deleted account does not block reuse.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (dom.UserState, error) {
	normalized, err := dom.NormalizeEmail(email)
	if err != nil {
		return dom.UserState{}, err
	}
	if password == "" {
		return dom.UserState{}, &dom.ValidationError{Field: "password", Reason: "password is required"}
	}

	existing, err := s.users.FindByEmail(ctx, normalized)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return dom.UserState{}, err
	}
	if existing != nil && !existing.IsDeleted() {
		return dom.UserState{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return dom.UserState{}, err
	}

	user, err := dom.CreateUser(uuid.New(), name, normalized, string(hash), time.Now().UTC())
	if err != nil {
		return dom.UserState{}, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		// Concurrent signups race past the FindByEmail check; the partial
		// unique index on live emails is the backstop.
		if utils.IsPGUniqueViolation(err) {
			return dom.UserState{}, ErrEmailTaken
		}
		return dom.UserState{}, err
	}
	if events := user.PullEvents(); len(events) > 0 {
		if err := s.events.AppendEvents(ctx, user.ID(), events); err != nil {
			return dom.UserState{}, err
		}
	}
	return user.State(), nil
}

// Login validates credentials against the active account for the email.
func (s *AuthService) Login(ctx context.Context, email, password string) (dom.UserState, error) {
	normalized, err := dom.NormalizeEmail(email)
	if err != nil {
		return dom.UserState{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.UserState{}, ErrInvalidCredentials
		}
		return dom.UserState{}, err
	}
	if user.IsDeleted() {
		return dom.UserState{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return dom.UserState{}, ErrInvalidCredentials
	}
	return user.State(), nil
}
