// Package services orchestrates domain operations across storage, messaging
// and the report engine.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

var (
	// ErrInvalidCredentials is deliberately generic: login failures never
	// reveal whether the email exists.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

// defaultCategoryNames seed every new account so reports have something to
// group by from day one.
var defaultCategoryNames = []string{
	"Groceries",
	"Rent",
	"Transport",
	"Entertainment",
	"Health",
	"Salary",
	"Other",
}

// UserStore is the storage surface the auth and profile flows need.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (core.User, error)
	UpdateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	UpdateUserProfile(ctx context.Context, userID, firstName, lastName, preferredCurrency string) error
	CreateCategory(ctx context.Context, c core.Category) error
}

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type AuthService struct {
	store      UserStore
	tokens     *auth.TokenManager
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(store UserStore, tokens *auth.TokenManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type RegisterParams struct {
	Email             string
	Password          string
	FirstName         string
	LastName          string
	PreferredCurrency string
}

// Register creates the user and seeds the default category set.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (core.User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, errors.New("invalid email address")
	}
	if len(p.Password) < 8 {
		return core.User{}, errors.New("password must be at least 8 characters")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return core.User{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return core.User{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(p.PreferredCurrency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return core.User{}, core.ErrInvalidCurrency
	}

	user := core.User{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(p.FirstName),
		LastName:          strings.TrimSpace(p.LastName),
		PreferredCurrency: currency,
		CreatedAt:         s.now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	for _, name := range defaultCategoryNames {
		category := core.Category{
			ID:        uuid.NewString(),
			Name:      name,
			IsDefault: true,
			OwnerID:   user.ID,
			CreatedAt: user.CreatedAt,
		}
		if err := s.store.CreateCategory(ctx, category); err != nil {
			// The account is usable without its seed categories.
			slog.ErrorContext(ctx, "Failed to seed default category",
				"user_id", user.ID, "category", name, "error", err)
		}
	}

	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, TokenPair, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, TokenPair{}, fmt.Errorf("get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return core.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return core.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh rotates the refresh token and issues a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (core.User, TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return core.User{}, TokenPair{}, ErrInvalidRefresh
	}

	user, err := s.store.GetUserByRefreshToken(ctx, refreshToken)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, TokenPair{}, ErrInvalidRefresh
	}
	if err != nil {
		return core.User{}, TokenPair{}, fmt.Errorf("get user by refresh token: %w", err)
	}

	if s.now().After(user.RefreshTokenExpiresAt) {
		return core.User{}, TokenPair{}, ErrInvalidRefresh
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return core.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Profile returns the authenticated user's account details.
func (s *AuthService) Profile(ctx context.Context, userID string) (core.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

type ProfileParams struct {
	FirstName         string
	LastName          string
	PreferredCurrency string
}

// UpdateProfile replaces the user's editable account fields. Email and
// password are not part of the profile surface.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, p ProfileParams) (core.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return core.User{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(p.PreferredCurrency))
	if currency == "" {
		currency = user.PreferredCurrency
	}
	if len(currency) != 3 {
		return core.User{}, core.ErrInvalidCurrency
	}

	user.FirstName = strings.TrimSpace(p.FirstName)
	user.LastName = strings.TrimSpace(p.LastName)
	user.PreferredCurrency = currency

	if err := s.store.UpdateUserProfile(ctx, user.ID, user.FirstName, user.LastName, user.PreferredCurrency); err != nil {
		return core.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user core.User) (TokenPair, error) {
	now := s.now().UTC()

	access, err := s.tokens.Generate(user.ID, user.Email, now)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	expiresAt := now.Add(s.refreshTTL)
	if err := s.store.UpdateRefreshToken(ctx, user.ID, refresh, expiresAt); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
