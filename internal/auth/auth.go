// Package auth manages local accounts and the active session. Accounts
// live in the "users" blob with bcrypt password hashes; the signed-in user
// id is kept in the OS keyring so a restart resumes the session.
package auth

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kmaguire/cadence/internal/constants"
	"github.com/kmaguire/cadence/internal/errors"
	"github.com/kmaguire/cadence/internal/keyring"
	"github.com/kmaguire/cadence/internal/logger"
	"github.com/kmaguire/cadence/internal/models"
	"github.com/kmaguire/cadence/internal/storage"
	"github.com/kmaguire/cadence/internal/validation"
)

// Service is the account registry and session holder.
type Service struct {
	store   storage.Provider
	users   []models.User
	current *models.User
}

func NewService(store storage.Provider) *Service {
	return &Service{store: store}
}

// Load reads the user registry and resumes a stored session if one exists.
// A stale session (user no longer in the registry) is discarded.
func (s *Service) Load() error {
	data, err := s.store.Get(constants.UsersKey)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			s.users = nil
		} else {
			return err
		}
	} else if err := json.Unmarshal(data, &s.users); err != nil {
		return errors.ValidationWrap(err, "corrupt user registry")
	}

	userID, err := keyring.GetSession()
	if err != nil {
		if err != keyring.ErrNotFound {
			logger.Warn("keyring unavailable, starting signed out", "error", err)
		}
		return nil
	}

	for i := range s.users {
		if s.users[i].ID == userID {
			s.current = &s.users[i]
			return nil
		}
	}

	logger.Warn("stored session references unknown user, clearing", "user_id", userID)
	if err := keyring.ClearSession(); err != nil && err != keyring.ErrNotFound {
		logger.Warn("failed to clear stale session", "error", err)
	}
	return nil
}

// Register creates an account and signs it in.
func (s *Service) Register(name, email, password string) (*models.User, error) {
	if err := validation.ValidateCredentials(validation.Credentials{
		Name:     name,
		Email:    email,
		Password: password,
	}); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	for _, u := range s.users {
		if normalizeEmail(u.Email) == email {
			return nil, errors.AlreadyExists("an account already exists for %s", email)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	s.users = append(s.users, user)

	if err := s.saveUsers(); err != nil {
		return nil, err
	}

	return s.startSession(user.ID)
}

// SignIn verifies credentials and makes the user the active session.
func (s *Service) SignIn(email, password string) (*models.User, error) {
	if err := validation.ValidateCredentials(validation.Credentials{
		Email:    email,
		Password: password,
	}); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	for _, u := range s.users {
		if normalizeEmail(u.Email) != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
			return nil, errors.InvalidCredentials("invalid email or password")
		}
		return s.startSession(u.ID)
	}
	return nil, errors.InvalidCredentials("invalid email or password")
}

// SignOut ends the active session.
func (s *Service) SignOut() error {
	if s.current == nil {
		return errors.Unauthenticated("not signed in")
	}
	s.current = nil
	if err := keyring.ClearSession(); err != nil && err != keyring.ErrNotFound {
		// The in-memory session is gone either way; the stale keyring
		// entry is cleaned up on next Load.
		logger.Warn("failed to clear session from keyring", "error", err)
	}
	return nil
}

// Current returns the signed-in user, or nil when signed out.
func (s *Service) Current() *models.User {
	return s.current
}

func (s *Service) startSession(userID string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == userID {
			s.current = &s.users[i]
			if err := keyring.SetSession(userID); err != nil {
				logger.Warn("failed to persist session to keyring", "error", err)
			}
			return s.current, nil
		}
	}
	return nil, errors.NotFound("user %s not found", userID)
}

func (s *Service) saveUsers() error {
	data, err := json.Marshal(s.users)
	if err != nil {
		return err
	}
	return s.store.Put(constants.UsersKey, data)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
