package auth

import (
	"path/filepath"
	"testing"

	zkeyring "github.com/zalando/go-keyring"

	"github.com/kmaguire/cadence/internal/errors"
	"github.com/kmaguire/cadence/internal/storage"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	zkeyring.MockInit()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	svc := NewService(store)
	if err := svc.Load(); err != nil {
		t.Fatalf("failed to load auth service: %v", err)
	}
	return svc
}

func TestRegisterAndSignIn(t *testing.T) {
	svc := setupTestService(t)

	user, err := svc.Register("Ada", "Ada@Example.com", "correcthorse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if svc.Current() == nil || svc.Current().ID != user.ID {
		t.Error("expected register to sign the user in")
	}

	if err := svc.SignOut(); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if svc.Current() != nil {
		t.Error("expected no current user after sign out")
	}

	signedIn, err := svc.SignIn("ada@example.com", "correcthorse")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if signedIn.ID != user.ID {
		t.Errorf("SignIn() returned user %q, want %q", signedIn.ID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := setupTestService(t)

	if _, err := svc.Register("Ada", "ada@example.com", "correcthorse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := svc.Register("Imposter", "ADA@example.com", "batterystaple")
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc := setupTestService(t)

	if _, err := svc.Register("Ada", "ada@example.com", "correcthorse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.SignIn("ada@example.com", "wrongpassword"); !errors.Is(err, errors.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn("nobody@example.com", "correcthorse"); !errors.Is(err, errors.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := setupTestService(t)

	if _, err := svc.Register("Ada", "not-an-email", "correcthorse"); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("bad email: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Register("Ada", "ada@example.com", "short"); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("short password: expected ErrValidation, got %v", err)
	}
}

func TestSignOutWhenSignedOut(t *testing.T) {
	svc := setupTestService(t)

	if err := svc.SignOut(); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSessionResumesAcrossLoad(t *testing.T) {
	zkeyring.MockInit()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	svc := NewService(store)
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	user, err := svc.Register("Ada", "ada@example.com", "correcthorse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// A fresh service over the same store and keyring resumes the session.
	resumed := NewService(store)
	if err := resumed.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resumed.Current() == nil || resumed.Current().ID != user.ID {
		t.Error("expected session to resume for the registered user")
	}
}
