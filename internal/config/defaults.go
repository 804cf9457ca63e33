package config

const (
	defaultDestination = "~/Pictures/PhoneBackup"
	defaultStagingDir  = "~/.local/share/mediasort/staging"
	defaultLogDir      = "~/.local/share/mediasort/logs"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	lockFileName       = ".mediasort.lock"
)

// Default returns a Config populated with repository defaults.
// The collection label and source have no default and must be supplied.
func Default() Config {
	return Config{
		Paths: Paths{
			Destination: defaultDestination,
			StagingDir:  defaultStagingDir,
			LogDir:      defaultLogDir,
		},
		Run: Run{
			Lock: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
