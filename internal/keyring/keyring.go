// Package keyring stores the signed-in session (the active user id) in the
// OS keyring so it survives restarts without touching the data file.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/kmaguire/cadence/internal/constants"
)

var (
	// ErrNotFound is returned when no session is stored in the keyring
	ErrNotFound = errors.New("session not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetSession retrieves the active user id from the OS keyring.
// Returns ErrNotFound if no session is stored.
func GetSession() (string, error) {
	userID, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return userID, nil
}

// SetSession stores the active user id in the OS keyring.
func SetSession(userID string) error {
	if userID == "" {
		return errors.New("user id cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, userID); err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

// ClearSession removes the stored session from the OS keyring.
func ClearSession() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to clear session from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring is reachable but empty
	return err == nil || err == keyring.ErrNotFound
}
