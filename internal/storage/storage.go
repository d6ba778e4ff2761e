// Package storage defines the persistence port for cadence and its
// backends. The port is a keyed blob store: callers hand it opaque
// JSON-serialized collections under keys like "habits_<userID>" and read
// them back wholesale. The backends never interpret the blobs.
package storage

import (
	"errors"
	"net/url"
	"strings"
)

// ErrKeyNotFound is returned by Load when no blob exists under the key.
var ErrKeyNotFound = errors.New("key not found")

// ErrNotInitialized is returned when the backing store has not been set up.
var ErrNotInitialized = errors.New("storage not initialized, run 'cadence init' first")

// Provider is the blob persistence port.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Blobs
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error

	// Utils
	GetConfigPath() string
}

// HasEmbeddedCredentials reports whether a connection string carries a
// password inline. Credentials belong in the keyring, the environment, or
// .pgpass, never on the command line.
func HasEmbeddedCredentials(connStr string) bool {
	if !strings.HasPrefix(connStr, "postgres://") && !strings.HasPrefix(connStr, "postgresql://") {
		return false
	}
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}
