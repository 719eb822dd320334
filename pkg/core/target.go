package core

// TargetConfig holds warehouse target configuration for the active
// environment. It is owned by configuration loading and read-only to the
// validation core.
type TargetConfig struct {
	Type string `koanf:"type"` // redshift, postgres, duckdb

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`

	// Schema is the schema validated tables live in.
	Schema string `koanf:"schema"`

	// Path for file-based databases (DuckDB).
	Path string `koanf:"path"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// AdapterConfig holds the connection parameters handed to a database
// adapter. It mirrors TargetConfig but is decoupled from config-file tags.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
}

// AdapterConfigFromTarget converts a loaded target into adapter parameters.
func AdapterConfigFromTarget(t *TargetConfig) AdapterConfig {
	if t == nil {
		return AdapterConfig{}
	}
	return AdapterConfig{
		Type:     t.Type,
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
	}
}
