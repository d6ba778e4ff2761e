package constants

// Frequency represents how often a habit is meant to be performed
type Frequency string

const (
	AppName            = "cadence"
	DefaultKeyringUser = "session"
	DefaultConfigPath  = "~/.config/cadence/cadence.db"
	Version            = "v0.2.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Storage keys. Habit and log blobs are namespaced per user so that
	// switching accounts swaps both collections wholesale.
	UsersKey     = "users"
	HabitsKeyFmt = "habits_%s"
	LogsKeyFmt   = "logs_%s"

	// Frequency constants
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"

	// Notify constants
	NotifierLockfileName = "cadence-notifier.lock"
	TrayAppIdentifier    = "com.kmaguire.cadence"

	// DefaultLogDays is the default window for the habit history grid
	DefaultLogDays = 14
)
