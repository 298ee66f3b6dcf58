package constants

const (
	AppName            = "smallwins"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/smallwins/config.toml"
	DefaultDataDir     = "~/.config/smallwins"
	Version            = "v0.3.0"

	// EnvDBConnection overrides the PostgreSQL connection string from the keyring
	EnvDBConnection = "SMALLWINS_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ISOTimeFormat is the wire format for habit timestamps (UTC, millisecond precision)
	ISOTimeFormat = "2006-01-02T15:04:05.000Z07:00"

	// Storage backends
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	DefaultStorage     = StorageJSON
	DefaultTimezone    = "Local"
	JSONStoreFileName  = "habits.json"
	SQLiteDBFileName   = "smallwins.db"
	PostgresSearchPath = AppName

	// Export constants
	ExportFilePrefix = "habitsbuilderdata-"
	ExportFileSuffix = ".json"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "smallwins-"
	BackupFileSuffix = ".json"

	// Log constants
	LogDirName  = "logs"
	LogFileName = "smallwins.log"
)
