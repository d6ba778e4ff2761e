// Package notifier schedules habit reminders through the cadence tray
// application. The tray app exposes a localhost webhook whose port and
// shared secret are published in a lockfile; scheduling returns an opaque
// token that callers store on the habit and hand back to cancel.
package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/kmaguire/cadence/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayUnavailable is returned when the tray app is not running or its
// lockfile cannot be validated.
var ErrTrayUnavailable = errors.New("cadence-tray is not running")

type Notifier struct{}

type schedulePayload struct {
	HabitID string `json:"habit_id"`
	Title   string `json:"title"`
	Time    string `json:"time"` // HH:MM
}

type scheduleResponse struct {
	Token string `json:"token"`
}

type cancelPayload struct {
	Token string `json:"token"`
}

func New() *Notifier {
	return &Notifier{}
}

// Schedule registers a daily reminder for a habit at the given HH:MM time
// and returns the tray app's schedule token. The token is opaque: cadence
// only stores it and forwards it to Cancel.
func (n *Notifier) Schedule(habitID, title, timeOfDay string) (string, error) {
	port, secret, err := trayEndpoint()
	if err != nil {
		return "", err
	}

	payload := schedulePayload{
		HabitID: habitID,
		Title:   title,
		Time:    timeOfDay,
	}

	body, err := postJSON(port, secret, "/schedule", payload)
	if err != nil {
		return "", err
	}

	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("malformed response from tray app: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("tray app returned no schedule token")
	}
	return resp.Token, nil
}

// Cancel revokes a previously scheduled reminder.
func (n *Notifier) Cancel(token string) error {
	if token == "" {
		return nil
	}

	port, secret, err := trayEndpoint()
	if err != nil {
		return err
	}

	_, err = postJSON(port, secret, "/cancel", cancelPayload{Token: token})
	return err
}

func trayEndpoint() (string, string, error) {
	configDir, err := GetTrayAppConfigDir()
	if err != nil {
		return "", "", err
	}
	return findAndValidateTrayProcess(filepath.Join(configDir, constants.NotifierLockfileName))
}

// GetTrayAppConfigDir returns the configuration directory used by the tray
// application, honoring a custom lockfile dir from its settings.json.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if _, err := os.Stat(settingsPath); err == nil {
		data, err := os.ReadFile(settingsPath)
		if err == nil {
			var store struct {
				Settings struct {
					LockfileDir *string `json:"lockfile_dir"`
				} `json:"settings"`
			}
			if err := json.Unmarshal(data, &store); err == nil {
				if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
					return *store.Settings.LockfileDir, nil
				}
			}
		}
	}

	return trayConfigDir, nil
}

// findAndValidateTrayProcess reads the lockfile ("port|pid|secret") and
// confirms the recorded process is actually the tray app before trusting
// the endpoint.
func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrTrayUnavailable
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", ErrTrayUnavailable
	}

	if !strings.HasPrefix(process.Executable(), "cadence-tray") {
		return "", "", fmt.Errorf("process with PID %d is not cadence-tray (is %s)", pid, process.Executable())
	}

	return port, secret, nil
}

func postJSON(port, secret, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("http://127.0.0.1:%s%s", port, path)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cadence-Secret", secret)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tray app request failed with status %d: %s", res.StatusCode, string(body))
	}
	return body, nil
}
