// Package auth registers accounts and checks credentials for the web
// application.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhle/callsheet/internal/model"
	"github.com/nhle/callsheet/internal/store"
)

// ErrUsernameTaken is returned by Register when the username exists. It
// wraps model.ErrInvalidInput.
var ErrUsernameTaken = fmt.Errorf("username already taken: %w", model.ErrInvalidInput)

// ErrPasswordTooLong is returned by Register for passwords over bcrypt's
// input limit. It wraps model.ErrInvalidInput.
var ErrPasswordTooLong = fmt.Errorf("password longer than %d bytes: %w", maxPasswordBytes, model.ErrInvalidInput)

// Service handles account registration and login.
type Service struct {
	users  store.UserStore
	hasher *PasswordHasher
	logger *slog.Logger
}

// NewService creates a Service. A nil logger discards log output.
func NewService(users store.UserStore, hasher *PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{users: users, hasher: hasher, logger: logger}
}

// Register creates an account. Username and password are trimmed and must
// both be non-empty.
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", model.ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("checking username %q: %w", username, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with another registration of the same name.
		if errors.Is(err, model.ErrInvalidInput) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials. Unknown usernames and wrong passwords both
// yield model.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding user %q: %w", username, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

// User returns the account with the given ID.
func (s *Service) User(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}
