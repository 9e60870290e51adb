package constants

import "time"

const (
	AppName           = "nightshift"
	Version           = "v0.3.0"
	DefaultConfigDir  = "~/.config/nightshift"
	DefaultConfigFile = "config.yaml"
	DefaultStoreFile  = "prefs.db"
	LockfileName      = "nightshift.lock"

	// TimeFormat is the clock format accepted for sunrise/sunset input (HH:MM)
	TimeFormat = "15:04"

	// SchedulerPeriod is the cadence of automatic theme re-evaluation
	SchedulerPeriod = 60 * time.Second

	// SecondsPerDay bounds the seconds-of-day domain [0, SecondsPerDay)
	SecondsPerDay = 86400

	// Watcher debounce for bursts of store writes
	WatchDebounce = 250 * time.Millisecond

	// Dictionary lookup
	DictionariesEnvVar   = "NIGHTSHIFT_DICTIONARIES_PATH"
	DictionariesDirName  = "dictionaries"
	DictionaryFileSuffix = ".bdic"

	// Environment overrides for the config file
	EnvBackend = "NIGHTSHIFT_BACKEND"
	EnvStore   = "NIGHTSHIFT_STORE"
	EnvDebug   = "NIGHTSHIFT_DEBUG"

	// Keyring service used by the keyring preference backend
	KeyringService  = "nightshift-prefs"
	KeyringIndexKey = "__index__"
)

const (
	// Preference keys
	PrefAutomaticTheme = "automaticTheme"
	PrefSunrise        = "sunrise"
	PrefSunset         = "sunset"
	PrefWindowTheme    = "windowTheme"

	// Default preference values
	DefaultAutomaticTheme = false
	DefaultWindowTheme    = ThemeLight

	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Backend names accepted by the configuration
const (
	BackendSQLite  = "sqlite"
	BackendJSON    = "json"
	BackendKeyring = "keyring"
)
