package notifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kmaguire/cadence/internal/constants"
)

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := t.TempDir()

	oldUserConfigDirFunc := userConfigDirFunc
	defer func() { userConfigDirFunc = oldUserConfigDirFunc }()
	userConfigDirFunc = func() (string, error) {
		return tempDir, nil
	}

	// Default: under the tray app identifier
	want := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}

	// Custom lockfile dir from settings.json wins
	custom := filepath.Join(tempDir, "custom-lockfiles")
	if err := os.MkdirAll(want, 0755); err != nil {
		t.Fatal(err)
	}
	settings := `{"settings":{"lockfile_dir":"` + custom + `"}}`
	if err := os.WriteFile(filepath.Join(want, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != custom {
		t.Errorf("expected custom dir %s, got %s", custom, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "missing lockfile", content: "", wantErr: ErrTrayUnavailable.Error()},
		{name: "malformed lockfile", content: "8080|1234", wantErr: "lockfile is malformed"},
		{name: "empty port", content: " |1234|secret", wantErr: "port in lockfile is empty"},
		{name: "non-numeric port", content: "abc|1234|secret", wantErr: "invalid port number in lockfile"},
		{name: "port out of range", content: "70000|1234|secret", wantErr: "port number 70000 is outside valid range (1-65535)"},
		{name: "non-numeric pid", content: "8080|abc|secret", wantErr: "invalid process ID in lockfile"},
		{name: "empty secret", content: "8080|1234| ", wantErr: "secret in lockfile is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lockfile := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
			if tt.content != "" {
				if err := os.WriteFile(lockfile, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			_, _, err := findAndValidateTrayProcess(lockfile)
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCancelWithEmptyToken(t *testing.T) {
	// An empty token means nothing was scheduled; Cancel is a no-op.
	if err := New().Cancel(""); err != nil {
		t.Errorf("Cancel(\"\") error = %v", err)
	}
}
