package config

const (
	// DefaultDatabasePath is the default path for the journal database
	DefaultDatabasePath = "./bookworm.db"

	// DefaultExportDir is where scheduled markdown exports are written
	DefaultExportDir = "./export"
)
