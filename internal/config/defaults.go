package config

const (
	defaultIdentityDir = "~/.config/bs/identities"
	defaultLogDir      = "~/.local/share/bs/logs"
	defaultHistoryDB   = "~/.local/share/bs/history.db"
	defaultProgress    = "auto"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IdentityDir: defaultIdentityDir,
			LogDir:      defaultLogDir,
			HistoryDB:   defaultHistoryDB,
		},
		Engine: Engine{
			Workers: 0,
		},
		Output: Output{
			Progress: defaultProgress,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
